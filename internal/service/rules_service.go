package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type rulesCourseReader interface {
	GetGroup(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Group, error)
	GetModule(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Module, error)
}

type rulesTeacherReader interface {
	IsLinked(ctx context.Context, exec sqlx.ExtContext, teacherID, moduleID int64) (bool, error)
	ListWorkingHours(ctx context.Context, exec sqlx.ExtContext, teacherIDs []int64) ([]models.TeacherWorkingHour, error)
}

type scheduleItemLister interface {
	List(ctx context.Context, exec sqlx.ExtContext, filter models.PlacementFilter) ([]models.ScheduleItem, error)
}

type draftLister interface {
	List(ctx context.Context, exec sqlx.ExtContext, filter models.PlacementFilter) ([]models.TeacherDraftItem, error)
}

type referenceProvider interface {
	Load(ctx context.Context) (*ReferenceData, error)
	TimeGrid(ctx context.Context, exec sqlx.ExtContext, from, to models.Date) (*TimeGrid, error)
}

// ValidateOptions tune a single conflict check.
type ValidateOptions struct {
	// ExcludeItemID skips the committed item being updated.
	ExcludeItemID *int64
	// ExcludeDraftID skips the draft being updated.
	ExcludeDraftID *int64
	// AllowNonWorkingDay suppresses the non-working-day warning.
	AllowNonWorkingDay bool
}

// RulesService is the conflict checker for proposed placements.
type RulesService struct {
	courses   rulesCourseReader
	teachers  rulesTeacherReader
	items     scheduleItemLister
	drafts    draftLister
	reference referenceProvider
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// NewRulesService wires the conflict checker.
func NewRulesService(courses rulesCourseReader, teachers rulesTeacherReader, items scheduleItemLister, drafts draftLister, reference referenceProvider, metrics *MetricsService, logger *zap.Logger) *RulesService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RulesService{
		courses:   courses,
		teachers:  teachers,
		items:     items,
		drafts:    drafts,
		reference: reference,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// Validate checks candidate against committed items only.
func (s *RulesService) Validate(ctx context.Context, exec sqlx.ExtContext, candidate models.Placement, opts ValidateOptions) (*models.ValidationResult, error) {
	report, err := s.check(ctx, exec, candidate, opts, false)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveValidation("commit", report.ok())
	return report.result(false), nil
}

// ValidateDraft checks candidate against committed items and other drafts and
// returns the structured issue list stored on drafts.
func (s *RulesService) ValidateDraft(ctx context.Context, exec sqlx.ExtContext, candidate models.Placement, opts ValidateOptions) (*models.ValidationResult, error) {
	report, err := s.check(ctx, exec, candidate, opts, true)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveValidation("draft", report.ok())
	return report.result(true), nil
}

func (s *RulesService) check(ctx context.Context, exec sqlx.ExtContext, candidate models.Placement, opts ValidateOptions, draftMode bool) (*checkReport, error) {
	candidate.Normalize()
	report := &checkReport{generatedAt: s.now().UTC()}

	ref, err := s.reference.Load(ctx)
	if err != nil {
		return nil, err
	}

	group, err := s.courses.GetGroup(ctx, exec, candidate.GroupID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group")
		}
		report.fail(models.IssueMissingReference, "Group not found", fmt.Sprintf("group %d does not exist", candidate.GroupID))
	}

	lessonType, hasLessonType := ref.LessonTypes[candidate.LessonTypeID]
	if !hasLessonType {
		report.fail(models.IssueMissingReference, "Lesson type not found", fmt.Sprintf("lesson type %d does not exist", candidate.LessonTypeID))
	}

	var module *models.Module
	switch {
	case candidate.ModuleID != nil:
		module, err = s.courses.GetModule(ctx, exec, *candidate.ModuleID)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load module")
			}
			report.fail(models.IssueMissingReference, "Module not found", fmt.Sprintf("module %d does not exist", *candidate.ModuleID))
		}
	case !hasLessonType || !lessonType.IsBreak():
		report.fail(models.IssueMissingReference, "Module required", "a module is required for this lesson type")
	}

	var room *models.Room
	if candidate.RoomID != nil {
		if r, ok := ref.Rooms[*candidate.RoomID]; ok {
			room = &r
		} else {
			report.fail(models.IssueMissingReference, "Room not found", fmt.Sprintf("room %d does not exist", *candidate.RoomID))
		}
	} else if hasLessonType && lessonType.RequiresRoom {
		report.fail(models.IssueRoomRequired, "Room required", fmt.Sprintf("lesson type %s requires a room", lessonType.Code))
	}

	if !report.ok() {
		return report, nil
	}

	window := candidate.Window()
	if !window.Valid() {
		report.fail(models.IssueInvalidTimeRange, "Invalid time range", fmt.Sprintf("end %s must be after start %s", candidate.EndTime, candidate.StartTime))
		return report, nil
	}

	grid, err := s.reference.TimeGrid(ctx, exec, candidate.Date, candidate.Date)
	if err != nil {
		return nil, err
	}
	if !grid.MatchesSlot(group.CourseID, window) {
		report.fail(models.IssueSlotMismatch, "Outside time grid", fmt.Sprintf("%s does not match any configured slot", window))
	}

	if !opts.AllowNonWorkingDay && !grid.IsWorkingDay(candidate.Date) {
		reason := "weekend"
		if exc, ok := grid.Exception(candidate.Date); ok && exc.Reason != "" {
			reason = exc.Reason
		}
		report.warn(models.IssueNonWorkingDay, "Non-working day", fmt.Sprintf("%s is a non-working day (%s)", candidate.Date, reason))
	}

	if lessonType.RequiresRoom && room != nil {
		if room.Capacity < group.StudentCount {
			report.fail(models.IssueRoomCapacity, "Room too small",
				fmt.Sprintf("room %s holds %d, group %s has %d students", room.Name, room.Capacity, group.Name, group.StudentCount))
		}
		if module != nil {
			if len(module.AllowedRoomIDs) > 0 && !containsInt64(module.AllowedRoomIDs, room.ID) {
				report.fail(models.IssueRoomNotAllowed, "Room not allowed", fmt.Sprintf("module %s cannot use room %s", module.Name, room.Name))
			}
			if len(module.AllowedBuildingIDs) > 0 && !containsInt64(module.AllowedBuildingIDs, room.BuildingID) {
				report.fail(models.IssueBuildingNotAllowed, "Building not allowed", fmt.Sprintf("module %s cannot use building %d", module.Name, room.BuildingID))
			}
		}
	}

	busy := newOccupancy(ref)
	sameDay := models.PlacementFilter{From: candidate.Date, To: candidate.Date}
	items, err := s.items.List(ctx, exec, sameDay)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule items")
	}
	busy.addItems(items, opts.ExcludeItemID)
	if draftMode {
		sameDay.Status = models.DraftStatusDraft
		drafts, err := s.drafts.List(ctx, exec, sameDay)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load drafts")
		}
		busy.addDrafts(drafts, opts.ExcludeDraftID)
	}

	self := busy.annotate(0, draftMode, candidate)
	for _, c := range busy.clashes(self) {
		code, title := models.IssueConflictPublished, "Conflicts with published session"
		if c.Other.Draft {
			code, title = models.IssueConflictDraft, "Conflicts with another draft"
		}
		report.fail(code, title, fmt.Sprintf("%s is already booked by %s", c.Kind, describeSession(c.Other)))
	}

	for _, issue := range busy.travelIssues(self, ref.Travel) {
		report.fail(models.IssueTravelTime, "Insufficient travel time",
			fmt.Sprintf("%s needs %d minutes to reach building %d, only %d available after %s",
				issue.Via, issue.Violation.Required, self.BuildingID, issue.Violation.Actual, describeSession(issue.Other)))
	}

	if candidate.TeacherID != nil {
		hours, err := s.teachers.ListWorkingHours(ctx, exec, []int64{*candidate.TeacherID})
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load working hours")
		}
		if !fitsWorkingHours(hours, candidate.Date.IsoWeekday(), window) {
			report.warn(models.IssueOutsideWorkHours, "Outside working hours",
				fmt.Sprintf("teacher %d is not available %s on %s", *candidate.TeacherID, window, candidate.Date))
		}
	}

	if draftMode {
		if err := s.checkTeacherAssignment(ctx, exec, candidate, lessonType, report); err != nil {
			return nil, err
		}
	}
	return report, nil
}

func (s *RulesService) checkTeacherAssignment(ctx context.Context, exec sqlx.ExtContext, candidate models.Placement, lessonType models.LessonType, report *checkReport) error {
	if candidate.TeacherID == nil {
		if lessonType.RequiresTeacher {
			report.warn(models.IssueTeacherMissing, "Teacher missing", fmt.Sprintf("lesson type %s requires a teacher", lessonType.Code))
		}
		return nil
	}
	if candidate.ModuleID == nil {
		return nil
	}
	linked, err := s.teachers.IsLinked(ctx, exec, *candidate.TeacherID, *candidate.ModuleID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher module link")
	}
	if !linked {
		report.warn(models.IssueTeacherNotLinked, "Teacher not linked", fmt.Sprintf("teacher %d is not linked to module %d", *candidate.TeacherID, *candidate.ModuleID))
	}
	return nil
}

// fitsWorkingHours is true when the teacher has no windows on weekday or one contains w.
func fitsWorkingHours(hours []models.TeacherWorkingHour, weekday int, w models.TimeWindow) bool {
	defined := false
	for _, h := range hours {
		if h.Weekday != weekday {
			continue
		}
		defined = true
		if h.Window().Contains(w) {
			return true
		}
	}
	return !defined
}

func containsInt64(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

type checkReport struct {
	generatedAt time.Time
	errors      []string
	warnings    []string
	issues      []models.ValidationIssue
}

func (r *checkReport) fail(code, title, description string) {
	r.errors = append(r.errors, description)
	r.issues = append(r.issues, models.ValidationIssue{Severity: models.SeverityError, Code: code, Title: title, Description: description})
}

func (r *checkReport) warn(code, title, description string) {
	r.warnings = append(r.warnings, description)
	r.issues = append(r.issues, models.ValidationIssue{Severity: models.SeverityWarning, Code: code, Title: title, Description: description})
}

func (r *checkReport) ok() bool { return len(r.errors) == 0 }

func (r *checkReport) result(withReport bool) *models.ValidationResult {
	res := &models.ValidationResult{Errors: r.errors, Warnings: r.warnings}
	if res.Errors == nil {
		res.Errors = []string{}
	}
	if res.Warnings == nil {
		res.Warnings = []string{}
	}
	if withReport {
		issues := r.issues
		if issues == nil {
			issues = []models.ValidationIssue{}
		}
		res.Report = &models.ValidationReport{GeneratedAt: r.generatedAt, Issues: issues}
	}
	return res
}

// validationError turns a blocking result into a VALIDATION_ERROR carrying the lists.
func validationError(res *models.ValidationResult) error {
	failure := &models.ValidationFailure{Errors: res.Errors, Warnings: res.Warnings}
	appErr := appErrors.WithDetails(appErrors.ErrValidation, failure.Error(), failure)
	appErr.Err = failure
	return appErr
}
