package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/pkg/database"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type scheduleItemStore interface {
	FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.ScheduleItem, error)
	List(ctx context.Context, exec sqlx.ExtContext, filter models.PlacementFilter) ([]models.ScheduleItem, error)
	Create(ctx context.Context, exec sqlx.ExtContext, item *models.ScheduleItem) error
	Update(ctx context.Context, exec sqlx.ExtContext, item *models.ScheduleItem) error
	Delete(ctx context.Context, exec sqlx.ExtContext, id int64) error
	DeleteByFilter(ctx context.Context, exec sqlx.ExtContext, filter models.PlacementFilter) ([]models.ScheduleItem, error)
}

// ScheduleService writes committed schedule items.
type ScheduleService struct {
	items      scheduleItemStore
	rules      placementValidator
	aggregates aggregateRecomputer
	reference  lessonTypeSource
	hook       RescheduleHook
	tx         database.TxBeginner
	maxRetries int
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewScheduleService wires committed schedule writes. hook may be nil.
func NewScheduleService(
	items scheduleItemStore,
	rules placementValidator,
	aggregates aggregateRecomputer,
	reference lessonTypeSource,
	hook RescheduleHook,
	tx database.TxBeginner,
	maxRetries int,
	validate *validator.Validate,
	logger *zap.Logger,
) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{
		items:      items,
		rules:      rules,
		aggregates: aggregates,
		reference:  reference,
		hook:       hook,
		tx:         tx,
		maxRetries: maxRetries,
		validator:  validate,
		logger:     logger,
	}
}

// ParseWeekStart parses a yyyy-MM-dd query value and snaps it to Monday.
func ParseWeekStart(raw string) (models.Date, error) {
	date, err := models.ParseDate(raw)
	if err != nil {
		return models.Date{}, appErrors.Clone(appErrors.ErrValidation, "weekStart must be yyyy-MM-dd")
	}
	return date.WeekStart(), nil
}

func weekFilter(weekStart models.Date) models.PlacementFilter {
	from := weekStart.WeekStart()
	return models.PlacementFilter{From: from, To: from.AddDays(6)}
}

// ListWeek returns committed items of a week.
func (s *ScheduleService) ListWeek(ctx context.Context, query dto.WeekQuery) ([]models.ScheduleItem, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid week query")
	}
	weekStart, err := ParseWeekStart(query.WeekStart)
	if err != nil {
		return nil, err
	}
	filter := weekFilter(weekStart)
	filter.CourseID = query.CourseID
	filter.TeacherID = query.TeacherID
	if query.GroupID != nil {
		filter.GroupIDs = []int64{*query.GroupID}
	}
	items, err := s.items.List(ctx, nil, filter)
	if err != nil {
		return nil, internalError(err, "failed to list schedule items")
	}
	if items == nil {
		items = []models.ScheduleItem{}
	}
	return items, nil
}

// Validate runs the committed-mode checker without writing.
func (s *ScheduleService) Validate(ctx context.Context, req dto.PlacementRequest) (*models.ValidationResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid placement payload")
	}
	return s.rules.Validate(ctx, nil, req.Placement(), ValidateOptions{ExcludeItemID: req.ID, AllowNonWorkingDay: req.AllowNonWorkingDay})
}

// Upsert creates or updates a committed item after a successful conflict check.
func (s *ScheduleService) Upsert(ctx context.Context, req dto.PlacementRequest) (*dto.UpsertResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid placement payload")
	}
	var (
		resp     *dto.UpsertResponse
		stored   models.ScheduleItem
		previous *models.ScheduleItem
	)
	err := database.WithSerializableTx(ctx, s.tx, s.maxRetries, func(tx *sqlx.Tx) error {
		previous = nil
		if req.ID != nil {
			existing, err := s.items.FindByID(ctx, tx, *req.ID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return appErrors.Clone(appErrors.ErrNotFound, "schedule item not found")
				}
				return internalError(err, "failed to load schedule item")
			}
			previous = existing
		}
		candidate := req.Placement()
		res, err := s.rules.Validate(ctx, tx, candidate, ValidateOptions{ExcludeItemID: req.ID, AllowNonWorkingDay: req.AllowNonWorkingDay})
		if err != nil {
			return err
		}
		if !res.OK() {
			return validationError(res)
		}
		item := &models.ScheduleItem{Placement: candidate}
		touched := []models.Placement{candidate}
		if previous != nil {
			item.ID = previous.ID
			if err := s.items.Update(ctx, tx, item); err != nil {
				return internalError(err, "failed to update schedule item")
			}
			touched = append(touched, previous.Placement)
		} else if err := s.items.Create(ctx, tx, item); err != nil {
			return internalError(err, "failed to create schedule item")
		}
		if _, err := s.aggregates.RecomputeFor(ctx, tx, touched...); err != nil {
			return err
		}
		stored = *item
		resp = &dto.UpsertResponse{ID: item.ID, Warnings: res.Warnings}
		return nil
	})
	if err != nil {
		return nil, translateTxError(err, "failed to save schedule item")
	}
	if previous != nil {
		s.afterUpdate(ctx, *previous, stored)
	}
	return resp, nil
}

// afterUpdate fires the reschedule hook when an item switched to RESCHEDULED.
func (s *ScheduleService) afterUpdate(ctx context.Context, previous, current models.ScheduleItem) {
	if s.hook == nil || previous.LessonTypeID == current.LessonTypeID {
		return
	}
	ref, err := s.reference.Load(ctx)
	if err != nil {
		s.logger.Warn("reschedule hook skipped", zap.Int64("item_id", current.ID), zap.Error(err))
		return
	}
	if ref.LessonTypes[current.LessonTypeID].Code != models.LessonTypeRescheduled {
		return
	}
	if ref.LessonTypes[previous.LessonTypeID].Code == models.LessonTypeRescheduled {
		return
	}
	s.hook.OnLessonTypeChangedToRescheduled(ctx, current, previous.LessonTypeID)
}

// Delete removes an unlocked committed item.
func (s *ScheduleService) Delete(ctx context.Context, id int64) error {
	err := database.WithSerializableTx(ctx, s.tx, s.maxRetries, func(tx *sqlx.Tx) error {
		item, err := s.items.FindByID(ctx, tx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "schedule item not found")
			}
			return internalError(err, "failed to load schedule item")
		}
		if item.IsLocked {
			return appErrors.Clone(appErrors.ErrLocked, "schedule item is locked")
		}
		if err := s.items.Delete(ctx, tx, id); err != nil {
			return internalError(err, "failed to delete schedule item")
		}
		_, err = s.aggregates.RecomputeFor(ctx, tx, item.Placement)
		return err
	})
	if err != nil {
		return translateTxError(err, "failed to delete schedule item")
	}
	return nil
}

// ClearWeek deletes the unlocked committed items of a week in scope.
func (s *ScheduleService) ClearWeek(ctx context.Context, req dto.ClearWeekRequest) (*dto.ClearWeekResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid clear payload")
	}
	if req.WeekStart.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "weekStart is required")
	}
	filter := weekFilter(req.WeekStart)
	filter.CourseID = req.CourseID
	filter.OnlyUnlocked = true
	if req.GroupID != nil {
		filter.GroupIDs = []int64{*req.GroupID}
	}
	resp := &dto.ClearWeekResponse{}
	err := database.WithSerializableTx(ctx, s.tx, s.maxRetries, func(tx *sqlx.Tx) error {
		deleted, err := s.items.DeleteByFilter(ctx, tx, filter)
		if err != nil {
			return internalError(err, "failed to clear schedule items")
		}
		resp.Deleted = int64(len(deleted))
		placements := make([]models.Placement, 0, len(deleted))
		for _, item := range deleted {
			placements = append(placements, item.Placement)
		}
		_, err = s.aggregates.RecomputeFor(ctx, tx, placements...)
		return err
	})
	if err != nil {
		return nil, translateTxError(err, "failed to clear week")
	}
	s.logger.Info("schedule week cleared", zap.String("week", filter.From.String()), zap.Int64("deleted", resp.Deleted))
	return resp, nil
}
