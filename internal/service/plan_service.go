package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/pkg/database"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type planStore interface {
	GetCourse(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Course, error)
	ListModulesByCourse(ctx context.Context, exec sqlx.ExtContext, courseID int64) ([]models.Module, error)
	ListModulePlans(ctx context.Context, exec sqlx.ExtContext, courseID *int64) ([]models.ModulePlan, error)
	CreateModulePlan(ctx context.Context, exec sqlx.ExtContext, plan *models.ModulePlan) error
}

// PlanService derives module plans from module credits.
type PlanService struct {
	store          planStore
	tx             database.TxBeginner
	maxRetries     int
	hoursPerCredit int
	logger         *zap.Logger
}

// NewPlanService wires plan derivation.
func NewPlanService(store planStore, tx database.TxBeginner, maxRetries, hoursPerCredit int, logger *zap.Logger) *PlanService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if hoursPerCredit <= 0 {
		hoursPerCredit = 30
	}
	return &PlanService{store: store, tx: tx, maxRetries: maxRetries, hoursPerCredit: hoursPerCredit, logger: logger}
}

// EnsureCoursePlans creates an active plan for every course module that has none.
// Existing plans keep their target.
func (s *PlanService) EnsureCoursePlans(ctx context.Context, courseID int64) (*dto.EnsurePlansResponse, error) {
	resp := &dto.EnsurePlansResponse{}
	err := database.WithSerializableTx(ctx, s.tx, s.maxRetries, func(tx *sqlx.Tx) error {
		resp.Created = 0
		if _, err := s.store.GetCourse(ctx, tx, courseID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "course not found")
			}
			return internalError(err, "failed to load course")
		}
		modules, err := s.store.ListModulesByCourse(ctx, tx, courseID)
		if err != nil {
			return internalError(err, "failed to load modules")
		}
		plans, err := s.store.ListModulePlans(ctx, tx, &courseID)
		if err != nil {
			return internalError(err, "failed to load module plans")
		}
		planned := make(map[int64]bool, len(plans))
		nextOrder := 0
		for _, p := range plans {
			planned[p.ModuleID] = true
			if p.SortOrder >= nextOrder {
				nextOrder = p.SortOrder + 1
			}
		}
		for _, module := range modules {
			if planned[module.ID] {
				continue
			}
			plan := &models.ModulePlan{
				CourseID:    courseID,
				ModuleID:    module.ID,
				TargetHours: module.Credits * s.hoursPerCredit,
				IsActive:    true,
				SortOrder:   nextOrder,
			}
			if err := s.store.CreateModulePlan(ctx, tx, plan); err != nil {
				return internalError(err, "failed to create module plan")
			}
			planned[module.ID] = true
			nextOrder++
			resp.Created++
		}
		return nil
	})
	if err != nil {
		return nil, translateTxError(err, "failed to ensure course plans")
	}
	s.logger.Info("course plans ensured", zap.Int64("course_id", courseID), zap.Int("created", resp.Created))
	return resp, nil
}
