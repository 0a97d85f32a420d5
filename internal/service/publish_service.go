package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/pkg/database"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type publishDraftStore interface {
	List(ctx context.Context, exec sqlx.ExtContext, filter models.PlacementFilter) ([]models.TeacherDraftItem, error)
	DeleteByIDs(ctx context.Context, exec sqlx.ExtContext, ids []int64) (int64, error)
}

type publishItemStore interface {
	Create(ctx context.Context, exec sqlx.ExtContext, item *models.ScheduleItem) error
}

type placementValidator interface {
	Validate(ctx context.Context, exec sqlx.ExtContext, candidate models.Placement, opts ValidateOptions) (*models.ValidationResult, error)
	ValidateDraft(ctx context.Context, exec sqlx.ExtContext, candidate models.Placement, opts ValidateOptions) (*models.ValidationResult, error)
}

type aggregateRecomputer interface {
	RecomputeFor(ctx context.Context, exec sqlx.ExtContext, placements ...models.Placement) (AggregateResult, error)
}

// PublishService promotes a week of drafts to committed schedule items.
type PublishService struct {
	drafts     publishDraftStore
	items      publishItemStore
	rules      placementValidator
	aggregates aggregateRecomputer
	tx         database.TxBeginner
	maxRetries int
	metrics    *MetricsService
	logger     *zap.Logger
}

// NewPublishService wires the publish engine.
func NewPublishService(drafts publishDraftStore, items publishItemStore, rules placementValidator, aggregates aggregateRecomputer, tx database.TxBeginner, maxRetries int, metrics *MetricsService, logger *zap.Logger) *PublishService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PublishService{
		drafts:     drafts,
		items:      items,
		rules:      rules,
		aggregates: aggregates,
		tx:         tx,
		maxRetries: maxRetries,
		metrics:    metrics,
		logger:     logger,
	}
}

func sortPlacements(drafts []models.TeacherDraftItem) {
	sort.SliceStable(drafts, func(i, j int) bool {
		a, b := drafts[i].Placement, drafts[j].Placement
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return drafts[i].ID < drafts[j].ID
	})
}

// PublishWeek validates every draft of the week against committed items and
// publishes the ones that pass. Published drafts are deleted and the touched
// aggregates recomputed in the same transaction.
func (s *PublishService) PublishWeek(ctx context.Context, req dto.PublishWeekRequest) (*dto.PublishResponse, error) {
	if req.WeekStart.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "weekStart is required")
	}
	from := req.WeekStart.WeekStart()
	to := from.AddDays(6)
	started := time.Now()

	var result *dto.PublishResponse
	err := database.WithSerializableTx(ctx, s.tx, s.maxRetries, func(tx *sqlx.Tx) error {
		result = &dto.PublishResponse{Warnings: []string{}}
		drafts, err := s.drafts.List(ctx, tx, models.PlacementFilter{
			From:      from,
			To:        to,
			TeacherID: req.TeacherID,
			Status:    models.DraftStatusDraft,
		})
		if err != nil {
			return internalError(err, "failed to load drafts")
		}
		sortPlacements(drafts)

		var (
			publishedIDs []int64
			published    []models.Placement
		)
		for _, draft := range drafts {
			res, err := s.rules.Validate(ctx, tx, draft.Placement, ValidateOptions{AllowNonWorkingDay: true})
			if err != nil {
				return err
			}
			if !res.OK() {
				result.Skipped++
				result.Warnings = append(result.Warnings, fmt.Sprintf("draft #%d on %s %s not published: %s",
					draft.ID, draft.Date, draft.Window(), strings.Join(res.Errors, "; ")))
				continue
			}
			item := &models.ScheduleItem{Placement: draft.Placement}
			if err := s.items.Create(ctx, tx, item); err != nil {
				return internalError(err, "failed to publish draft")
			}
			result.Created++
			publishedIDs = append(publishedIDs, draft.ID)
			published = append(published, item.Placement)
		}
		if len(publishedIDs) == 0 {
			return nil
		}
		if _, err := s.drafts.DeleteByIDs(ctx, tx, publishedIDs); err != nil {
			return internalError(err, "failed to delete published drafts")
		}
		if _, err := s.aggregates.RecomputeFor(ctx, tx, published...); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		s.metrics.ObserveRun("publish", 0, 0, 0, time.Since(started), err)
		return nil, translateTxError(err, "failed to publish week")
	}
	s.metrics.ObserveRun("publish", result.Created, result.Skipped, 0, time.Since(started), nil)
	s.logger.Info("publish week finished",
		zap.String("week", from.String()),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}
