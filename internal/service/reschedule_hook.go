package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/pkg/database"
)

// RescheduleHook runs after a committed item's lesson type was changed to RESCHEDULED.
type RescheduleHook interface {
	OnLessonTypeChangedToRescheduled(ctx context.Context, item models.ScheduleItem, previousLessonTypeID int64)
}

type rescheduleGroupReader interface {
	GetGroup(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Group, error)
}

type rescheduleDraftWriter interface {
	Create(ctx context.Context, exec sqlx.ExtContext, draft *models.TeacherDraftItem) error
}

// rescheduleDays is how many days of the next week are searched, from Monday.
const rescheduleDays = 6

// DraftRescheduler looks for a replacement slot next week and stores it as a draft.
type DraftRescheduler struct {
	groups     rescheduleGroupReader
	drafts     rescheduleDraftWriter
	rules      placementValidator
	reference  referenceProvider
	tx         database.TxBeginner
	maxRetries int
	logger     *zap.Logger
	newBatch   func() string
}

// NewDraftRescheduler wires the default reschedule hook.
func NewDraftRescheduler(groups rescheduleGroupReader, drafts rescheduleDraftWriter, rules placementValidator, reference referenceProvider, tx database.TxBeginner, maxRetries int, logger *zap.Logger) *DraftRescheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DraftRescheduler{
		groups:     groups,
		drafts:     drafts,
		rules:      rules,
		reference:  reference,
		tx:         tx,
		maxRetries: maxRetries,
		logger:     logger,
		newBatch:   uuid.NewString,
	}
}

// OnLessonTypeChangedToRescheduled stores at most one replacement draft. Failures are logged only.
func (h *DraftRescheduler) OnLessonTypeChangedToRescheduled(ctx context.Context, item models.ScheduleItem, previousLessonTypeID int64) {
	var placed *models.TeacherDraftItem
	err := database.WithSerializableTx(ctx, h.tx, h.maxRetries, func(tx *sqlx.Tx) error {
		placed = nil
		draft, err := h.findReplacement(ctx, tx, item, previousLessonTypeID)
		if err != nil || draft == nil {
			return err
		}
		if err := h.drafts.Create(ctx, tx, draft); err != nil {
			return fmt.Errorf("store replacement draft: %w", err)
		}
		placed = draft
		return nil
	})
	switch {
	case err != nil:
		h.logger.Warn("reschedule hook failed", zap.Int64("item_id", item.ID), zap.Error(err))
	case placed == nil:
		h.logger.Warn("no replacement slot found", zap.Int64("item_id", item.ID), zap.String("from", item.Date.String()))
	default:
		h.logger.Info("replacement draft created",
			zap.Int64("item_id", item.ID),
			zap.Int64("draft_id", placed.ID),
			zap.String("date", placed.Date.String()),
			zap.String("window", placed.Window().String()),
		)
	}
}

func (h *DraftRescheduler) findReplacement(ctx context.Context, exec sqlx.ExtContext, item models.ScheduleItem, lessonTypeID int64) (*models.TeacherDraftItem, error) {
	group, err := h.groups.GetGroup(ctx, exec, item.GroupID)
	if err != nil {
		return nil, fmt.Errorf("load group: %w", err)
	}
	from := item.Date.WeekStart().AddDays(7)
	grid, err := h.reference.TimeGrid(ctx, exec, from, from.AddDays(rescheduleDays-1))
	if err != nil {
		return nil, err
	}
	for i := 0; i < rescheduleDays; i++ {
		day := from.AddDays(i)
		if !grid.IsWorkingDay(day) {
			continue
		}
		for _, slot := range grid.EffectiveSlots(group.CourseID) {
			candidate := item.Placement
			candidate.Date = day
			candidate.StartTime = slot.Start
			candidate.EndTime = slot.End
			candidate.LessonTypeID = lessonTypeID
			candidate.IsLocked = false
			candidate.Normalize()
			res, err := h.rules.ValidateDraft(ctx, exec, candidate, ValidateOptions{})
			if err != nil {
				return nil, err
			}
			if !res.OK() {
				continue
			}
			batchKey := fmt.Sprintf("reschedule:%d:%s", item.ID, h.newBatch())
			draft := &models.TeacherDraftItem{Placement: candidate, Status: models.DraftStatusDraft, BatchKey: &batchKey}
			if res.Report != nil {
				draft.ValidationWarnings = res.Report.JSON()
			}
			return draft, nil
		}
	}
	return nil, nil
}
