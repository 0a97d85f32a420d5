package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/pkg/export"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type exportCourseReader interface {
	GetGroup(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Group, error)
	GetModule(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Module, error)
	ListTopicsByModules(ctx context.Context, exec sqlx.ExtContext, moduleIDs []int64) ([]models.Topic, error)
}

type exportTeacherReader interface {
	ListTeachersByIDs(ctx context.Context, exec sqlx.ExtContext, ids []int64) ([]models.Teacher, error)
}

// ExportFile is a rendered timetable.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders a week of committed items for a group or a teacher.
type ExportService struct {
	items     scheduleItemLister
	courses   exportCourseReader
	teachers  exportTeacherReader
	reference lessonTypeSource
	renderers map[string]export.Renderer
	validator *validator.Validate
	logger    *zap.Logger
}

// NewExportService constructs an ExportService with the CSV and PDF renderers.
func NewExportService(items scheduleItemLister, courses exportCourseReader, teachers exportTeacherReader, reference lessonTypeSource, validate *validator.Validate, logger *zap.Logger) *ExportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		items:     items,
		courses:   courses,
		teachers:  teachers,
		reference: reference,
		renderers: map[string]export.Renderer{
			"csv": export.NewCSVExporter(),
			"pdf": export.NewPDFExporter(),
		},
		validator: validate,
		logger:    logger,
	}
}

var exportColumns = []export.Column{
	{Title: "Date", Width: 2},
	{Title: "Time", Width: 2},
	{Title: "Group", Width: 2},
	{Title: "Module", Width: 4},
	{Title: "Topic", Width: 3},
	{Title: "Teacher", Width: 3},
	{Title: "Room", Width: 2},
	{Title: "Lesson type", Width: 2},
}

// ExportWeek renders the committed items of a week.
func (s *ExportService) ExportWeek(ctx context.Context, query dto.ExportWeekQuery) (*ExportFile, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export query")
	}
	if query.GroupID == nil && query.TeacherID == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "groupId or teacherId is required")
	}
	format := query.Format
	if format == "" {
		format = "csv"
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
	weekStart, err := ParseWeekStart(query.WeekStart)
	if err != nil {
		return nil, err
	}

	filter := weekFilter(weekStart)
	filter.TeacherID = query.TeacherID
	owner := "teacher"
	if query.GroupID != nil {
		filter.GroupIDs = []int64{*query.GroupID}
		owner = "group"
	}
	items, err := s.items.List(ctx, nil, filter)
	if err != nil {
		return nil, internalError(err, "failed to list schedule items")
	}
	table, err := s.buildTable(ctx, items)
	if err != nil {
		return nil, err
	}
	ownerID := query.TeacherID
	if query.GroupID != nil {
		ownerID = query.GroupID
	}
	table.Title = fmt.Sprintf("Timetable %s %d, week of %s", owner, *ownerID, weekStart)

	body, err := renderer.Render(table)
	if err != nil {
		return nil, internalError(err, "failed to render export")
	}
	s.logger.Info("timetable exported", zap.String("format", format), zap.String("week", weekStart.String()), zap.Int("rows", len(table.Rows)))
	return &ExportFile{
		Filename:    fmt.Sprintf("timetable-%s-%d-%s.%s", owner, *ownerID, weekStart, renderer.Extension()),
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}

func (s *ExportService) buildTable(ctx context.Context, items []models.ScheduleItem) (export.Table, error) {
	table := export.Table{Columns: exportColumns, Rows: [][]string{}}
	ref, err := s.reference.Load(ctx)
	if err != nil {
		return table, err
	}

	groups := make(map[int64]string)
	modules := make(map[int64]string)
	var teacherIDs, moduleIDs []int64
	seenTeacher := make(map[int64]bool)
	for _, item := range items {
		if _, ok := groups[item.GroupID]; !ok {
			group, err := s.courses.GetGroup(ctx, nil, item.GroupID)
			if err != nil {
				return table, internalError(err, "failed to load group")
			}
			groups[item.GroupID] = group.Name
		}
		if item.ModuleID != nil {
			if _, ok := modules[*item.ModuleID]; !ok {
				module, err := s.courses.GetModule(ctx, nil, *item.ModuleID)
				if err != nil {
					return table, internalError(err, "failed to load module")
				}
				modules[module.ID] = module.Name
				moduleIDs = append(moduleIDs, module.ID)
			}
		}
		if item.TeacherID != nil && !seenTeacher[*item.TeacherID] {
			seenTeacher[*item.TeacherID] = true
			teacherIDs = append(teacherIDs, *item.TeacherID)
		}
	}
	topics := make(map[int64]string)
	if len(moduleIDs) > 0 {
		list, err := s.courses.ListTopicsByModules(ctx, nil, moduleIDs)
		if err != nil {
			return table, internalError(err, "failed to load topics")
		}
		for _, topic := range list {
			topics[topic.ID] = topic.Code + " " + topic.Title
		}
	}
	teachers := make(map[int64]string)
	if len(teacherIDs) > 0 {
		list, err := s.teachers.ListTeachersByIDs(ctx, nil, teacherIDs)
		if err != nil {
			return table, internalError(err, "failed to load teachers")
		}
		for _, teacher := range list {
			teachers[teacher.ID] = teacher.FullName
		}
	}

	name := func(names map[int64]string, id *int64) string {
		if id == nil {
			return ""
		}
		return names[*id]
	}
	for _, item := range items {
		room := ""
		if item.RoomID != nil {
			room = ref.Rooms[*item.RoomID].Name
		}
		table.Rows = append(table.Rows, []string{
			item.Date.String(),
			item.Window().String(),
			groups[item.GroupID],
			name(modules, item.ModuleID),
			name(topics, item.TopicID),
			name(teachers, item.TeacherID),
			room,
			ref.LessonTypes[item.LessonTypeID].Name,
		})
	}
	return table, nil
}
