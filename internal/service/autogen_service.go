package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/pkg/database"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type autogenCourseReader interface {
	GetCourse(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Course, error)
	GetGroup(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Group, error)
	ListGroups(ctx context.Context, exec sqlx.ExtContext, courseID *int64) ([]models.Group, error)
	ListModulesByCourse(ctx context.Context, exec sqlx.ExtContext, courseID int64) ([]models.Module, error)
	ListTopicsByModules(ctx context.Context, exec sqlx.ExtContext, moduleIDs []int64) ([]models.Topic, error)
	ListModulePlans(ctx context.Context, exec sqlx.ExtContext, courseID *int64) ([]models.ModulePlan, error)
	ListModuleSequence(ctx context.Context, exec sqlx.ExtContext, courseID int64) ([]models.ModuleSequenceItem, error)
	ListModuleFillers(ctx context.Context, exec sqlx.ExtContext, courseID int64) ([]models.ModuleFiller, error)
}

type autogenTeacherReader interface {
	ListTeacherModules(ctx context.Context, exec sqlx.ExtContext, moduleIDs []int64) ([]models.TeacherModule, error)
	ListWorkingHours(ctx context.Context, exec sqlx.ExtContext, teacherIDs []int64) ([]models.TeacherWorkingHour, error)
}

type autogenItemReader interface {
	List(ctx context.Context, exec sqlx.ExtContext, filter models.PlacementFilter) ([]models.ScheduleItem, error)
	CountByGroupModule(ctx context.Context, exec sqlx.ExtContext, groupIDs []int64) ([]models.PlacementCount, error)
	CountTopicUsage(ctx context.Context, exec sqlx.ExtContext, groupIDs []int64) ([]models.TopicUsage, error)
}

type autogenDraftStore interface {
	List(ctx context.Context, exec sqlx.ExtContext, filter models.PlacementFilter) ([]models.TeacherDraftItem, error)
	Create(ctx context.Context, exec sqlx.ExtContext, draft *models.TeacherDraftItem) error
	DeleteByFilter(ctx context.Context, exec sqlx.ExtContext, filter models.PlacementFilter) (int64, error)
	CountByGroupModule(ctx context.Context, exec sqlx.ExtContext, groupIDs []int64) ([]models.PlacementCount, error)
	CountTopicUsage(ctx context.Context, exec sqlx.ExtContext, groupIDs []int64) ([]models.TopicUsage, error)
}

type autogenReference interface {
	referenceProvider
	LunchWindow(ctx context.Context, exec sqlx.ExtContext) (func(courseID int64) (models.TimeWindow, bool), error)
}

// AutogenConfig tunes the generator.
type AutogenConfig struct {
	TxMaxRetries int
}

// AutogenService fills weeks with draft placements.
type AutogenService struct {
	courses   autogenCourseReader
	teachers  autogenTeacherReader
	items     autogenItemReader
	drafts    autogenDraftStore
	reference autogenReference
	tx        database.TxBeginner
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	cfg       AutogenConfig
	newBatch  func() string
	now       func() time.Time
}

// NewAutogenService wires the week auto-generator.
func NewAutogenService(
	courses autogenCourseReader,
	teachers autogenTeacherReader,
	items autogenItemReader,
	drafts autogenDraftStore,
	reference autogenReference,
	tx database.TxBeginner,
	validate *validator.Validate,
	metrics *MetricsService,
	logger *zap.Logger,
	cfg AutogenConfig,
) *AutogenService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TxMaxRetries < 0 {
		cfg.TxMaxRetries = 0
	}
	return &AutogenService{
		courses:   courses,
		teachers:  teachers,
		items:     items,
		drafts:    drafts,
		reference: reference,
		tx:        tx,
		validator: validate,
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
		newBatch:  uuid.NewString,
		now:       time.Now,
	}
}

// weekPlan is one week run: the Monday and the calendar days to fill.
type weekPlan struct {
	weekStart models.Date
	days      []models.Date
	opts      dto.AutogenOptions
}

func presetDays(weekStart models.Date, preset dto.DayPreset) []models.Date {
	days := make([]models.Date, 0, 7)
	for i := 0; i < preset.LastWeekday(); i++ {
		days = append(days, weekStart.AddDays(i))
	}
	return days
}

func (s *AutogenService) validate(req interface{}, opts dto.AutogenOptions) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid autogen payload")
	}
	if opts.CourseID != nil && opts.GroupID != nil {
		return appErrors.Clone(appErrors.ErrValidation, "courseId and groupId are mutually exclusive")
	}
	return nil
}

// AutogenWeek generates drafts for one week in a single serializable transaction.
func (s *AutogenService) AutogenWeek(ctx context.Context, req dto.AutogenWeekRequest) (*dto.AutogenResponse, error) {
	if err := s.validate(req, req.AutogenOptions); err != nil {
		return nil, err
	}
	if req.WeekStart.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "weekStart is required")
	}
	weekStart := req.WeekStart.WeekStart()
	return s.runWeek(ctx, weekPlan{weekStart: weekStart, days: presetDays(weekStart, req.DayPreset), opts: req.AutogenOptions})
}

// AutogenMonth runs every week overlapping the month, restricted to days inside it.
// Each week commits on its own; a failing week stops the loop and the result
// covers the weeks already processed.
func (s *AutogenService) AutogenMonth(ctx context.Context, req dto.AutogenMonthRequest) (*dto.AutogenResponse, error) {
	if err := s.validate(req, req.AutogenOptions); err != nil {
		return nil, err
	}
	first := models.NewDate(req.Year, time.Month(req.Month), 1)
	last := models.DateOf(first.AddDate(0, 1, -1))

	var plans []weekPlan
	for weekStart := first.WeekStart(); !weekStart.After(last); weekStart = weekStart.AddDays(7) {
		var days []models.Date
		for _, day := range presetDays(weekStart, req.DayPreset) {
			if !day.Before(first) && !day.After(last) {
				days = append(days, day)
			}
		}
		if len(days) > 0 {
			plans = append(plans, weekPlan{weekStart: weekStart, days: days, opts: req.AutogenOptions})
		}
	}
	return s.runWeeks(ctx, plans), nil
}

// AutogenCourseRange runs the course's duration in weeks starting at StartDate.
func (s *AutogenService) AutogenCourseRange(ctx context.Context, req dto.AutogenCourseRangeRequest) (*dto.AutogenResponse, error) {
	if err := s.validate(req, req.AutogenOptions); err != nil {
		return nil, err
	}
	if req.CourseID == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "courseId is required")
	}
	if req.StartDate.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "startDate is required")
	}
	course, err := s.courses.GetCourse(ctx, nil, *req.CourseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if course.DurationWeeks <= 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "course has no duration configured")
	}
	start := req.StartDate.WeekStart()
	plans := make([]weekPlan, 0, course.DurationWeeks)
	for i := 0; i < course.DurationWeeks; i++ {
		weekStart := start.AddDays(7 * i)
		plans = append(plans, weekPlan{weekStart: weekStart, days: presetDays(weekStart, req.DayPreset), opts: req.AutogenOptions})
	}
	return s.runWeeks(ctx, plans), nil
}

func (s *AutogenService) runWeeks(ctx context.Context, plans []weekPlan) *dto.AutogenResponse {
	total := &dto.AutogenResponse{Warnings: []string{}, GapDetails: []dto.GapDetail{}}
	for _, plan := range plans {
		week, err := s.runWeek(ctx, plan)
		if err != nil {
			stopped := plan.weekStart
			total.StoppedAt = &stopped
			total.Warnings = append(total.Warnings, fmt.Sprintf("week %s not generated: %s", plan.weekStart, appErrors.FromError(err).Message))
			s.logger.Warn("autogen stopped", zap.String("week", plan.weekStart.String()), zap.Error(err))
			break
		}
		total.Merge(week)
	}
	return total
}

func (s *AutogenService) runWeek(ctx context.Context, plan weekPlan) (*dto.AutogenResponse, error) {
	started := s.now()
	var result *dto.AutogenResponse
	err := database.WithSerializableTx(ctx, s.tx, s.cfg.TxMaxRetries, func(tx *sqlx.Tx) error {
		run, err := s.newRun(ctx, tx, plan)
		if err != nil {
			return err
		}
		if err := run.execute(ctx); err != nil {
			return err
		}
		result = run.result
		return nil
	})
	if err != nil {
		s.metrics.ObserveRun("autogen", 0, 0, 0, time.Since(started), err)
		return nil, translateTxError(err, "failed to generate week")
	}
	s.metrics.ObserveRun("autogen", result.Created, result.Skipped, len(result.GapDetails), time.Since(started), nil)
	s.logger.Info("autogen week finished",
		zap.String("week", plan.weekStart.String()),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
		zap.Int("gaps", len(result.GapDetails)),
	)
	return result, nil
}

// translateTxError keeps typed errors and maps serialization failures to a retryable error.
func translateTxError(err error, message string) error {
	if database.IsSerializationFailure(err) {
		return appErrors.Wrap(err, appErrors.ErrSerializationFailure.Code, appErrors.ErrSerializationFailure.Status, appErrors.ErrSerializationFailure.Message)
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}
