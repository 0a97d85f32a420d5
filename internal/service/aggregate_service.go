package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type aggregatePlanStore interface {
	GetGroup(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Group, error)
	ListModulePlans(ctx context.Context, exec sqlx.ExtContext, courseID *int64) ([]models.ModulePlan, error)
	ListModulePlansByKeys(ctx context.Context, exec sqlx.ExtContext, keys []models.CourseModuleKey) ([]models.ModulePlan, error)
	UpdatePlanScheduledHours(ctx context.Context, exec sqlx.ExtContext, planID int64, hours int) error
}

type aggregateLoadStore interface {
	ListTeacherLoads(ctx context.Context, exec sqlx.ExtContext, keys []models.TeacherCourseKey) ([]models.TeacherCourseLoad, error)
	UpdateLoadScheduledHours(ctx context.Context, exec sqlx.ExtContext, loadID int64, hours int) error
}

type aggregateCounter interface {
	CountForPlans(ctx context.Context, exec sqlx.ExtContext, keys []models.CourseModuleKey) ([]models.AggregateCount, error)
	CountForLoads(ctx context.Context, exec sqlx.ExtContext, keys []models.TeacherCourseKey) ([]models.AggregateCount, error)
}

type lessonTypeSource interface {
	Load(ctx context.Context) (*ReferenceData, error)
}

// AggregateKeys are the plan and load rows touched by a write.
type AggregateKeys struct {
	Plans []models.CourseModuleKey
	Loads []models.TeacherCourseKey
}

// AggregateResult counts rows whose cached hours changed.
type AggregateResult struct {
	PlansUpdated int `json:"plansUpdated"`
	LoadsUpdated int `json:"loadsUpdated"`
}

// AggregateService re-derives ModulePlan and TeacherCourseLoad scheduled hours
// from committed schedule items.
type AggregateService struct {
	plans     aggregatePlanStore
	loads     aggregateLoadStore
	counter   aggregateCounter
	reference lessonTypeSource
	logger    *zap.Logger
}

// NewAggregateService wires aggregate recomputation.
func NewAggregateService(plans aggregatePlanStore, loads aggregateLoadStore, counter aggregateCounter, reference lessonTypeSource, logger *zap.Logger) *AggregateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AggregateService{plans: plans, loads: loads, counter: counter, reference: reference, logger: logger}
}

// KeysFor collects the plan and load keys of placements.
func (s *AggregateService) KeysFor(ctx context.Context, exec sqlx.ExtContext, placements ...models.Placement) (AggregateKeys, error) {
	courseOf := make(map[int64]int64)
	planSet := make(map[models.CourseModuleKey]bool)
	loadSet := make(map[models.TeacherCourseKey]bool)
	var keys AggregateKeys
	for _, p := range placements {
		courseID, ok := courseOf[p.GroupID]
		if !ok {
			group, err := s.plans.GetGroup(ctx, exec, p.GroupID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					continue
				}
				return AggregateKeys{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group")
			}
			courseID = group.CourseID
			courseOf[p.GroupID] = courseID
		}
		if p.ModuleID != nil {
			key := models.CourseModuleKey{CourseID: courseID, ModuleID: *p.ModuleID}
			if !planSet[key] {
				planSet[key] = true
				keys.Plans = append(keys.Plans, key)
			}
		}
		if p.TeacherID != nil {
			key := models.TeacherCourseKey{TeacherID: *p.TeacherID, CourseID: courseID}
			if !loadSet[key] {
				loadSet[key] = true
				keys.Loads = append(keys.Loads, key)
			}
		}
	}
	if keys.Plans == nil {
		keys.Plans = []models.CourseModuleKey{}
	}
	if keys.Loads == nil {
		keys.Loads = []models.TeacherCourseKey{}
	}
	return keys, nil
}

// RecomputeFor recomputes the aggregates touched by placements inside exec.
func (s *AggregateService) RecomputeFor(ctx context.Context, exec sqlx.ExtContext, placements ...models.Placement) (AggregateResult, error) {
	keys, err := s.KeysFor(ctx, exec, placements...)
	if err != nil {
		return AggregateResult{}, err
	}
	return s.Recompute(ctx, exec, keys)
}

// Recompute re-derives the given keys. Nil slices mean every row; empty slices mean none.
func (s *AggregateService) Recompute(ctx context.Context, exec sqlx.ExtContext, keys AggregateKeys) (AggregateResult, error) {
	var result AggregateResult
	ref, err := s.reference.Load(ctx)
	if err != nil {
		return result, err
	}
	if result.PlansUpdated, err = s.recomputePlans(ctx, exec, ref, keys.Plans); err != nil {
		return result, err
	}
	if result.LoadsUpdated, err = s.recomputeLoads(ctx, exec, ref, keys.Loads); err != nil {
		return result, err
	}
	s.logger.Debug("aggregates recomputed", zap.Int("plans_updated", result.PlansUpdated), zap.Int("loads_updated", result.LoadsUpdated))
	return result, nil
}

// RecomputeAll re-derives every plan and load row.
func (s *AggregateService) RecomputeAll(ctx context.Context, exec sqlx.ExtContext) (AggregateResult, error) {
	return s.Recompute(ctx, exec, AggregateKeys{})
}

func (s *AggregateService) recomputePlans(ctx context.Context, exec sqlx.ExtContext, ref *ReferenceData, keys []models.CourseModuleKey) (int, error) {
	if keys != nil && len(keys) == 0 {
		return 0, nil
	}
	var (
		plans []models.ModulePlan
		err   error
	)
	if keys == nil {
		plans, err = s.plans.ListModulePlans(ctx, exec, nil)
	} else {
		plans, err = s.plans.ListModulePlansByKeys(ctx, exec, keys)
	}
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load module plans")
	}
	counts, err := s.counter.CountForPlans(ctx, exec, keys)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count plan hours")
	}
	hours := make(map[models.CourseModuleKey]int)
	for _, c := range counts {
		if lt, ok := ref.LessonTypes[c.LessonTypeID]; ok && lt.CountsTowardPlan() {
			hours[models.CourseModuleKey{CourseID: c.CourseID, ModuleID: c.OwnerID}] += c.Count
		}
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].ID < plans[j].ID })
	updated := 0
	for _, plan := range plans {
		want := hours[models.CourseModuleKey{CourseID: plan.CourseID, ModuleID: plan.ModuleID}]
		if plan.ScheduledHours == want {
			continue
		}
		if err := s.plans.UpdatePlanScheduledHours(ctx, exec, plan.ID, want); err != nil {
			return updated, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update module plan")
		}
		updated++
	}
	return updated, nil
}

func (s *AggregateService) recomputeLoads(ctx context.Context, exec sqlx.ExtContext, ref *ReferenceData, keys []models.TeacherCourseKey) (int, error) {
	if keys != nil && len(keys) == 0 {
		return 0, nil
	}
	loads, err := s.loads.ListTeacherLoads(ctx, exec, keys)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher loads")
	}
	counts, err := s.counter.CountForLoads(ctx, exec, keys)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count load hours")
	}
	hours := make(map[models.TeacherCourseKey]int)
	for _, c := range counts {
		if lt, ok := ref.LessonTypes[c.LessonTypeID]; ok && lt.CountInLoad {
			hours[models.TeacherCourseKey{TeacherID: c.OwnerID, CourseID: c.CourseID}] += c.Count
		}
	}
	sort.Slice(loads, func(i, j int) bool { return loads[i].ID < loads[j].ID })
	updated := 0
	for _, load := range loads {
		want := 0
		if load.IsActive {
			want = hours[models.TeacherCourseKey{TeacherID: load.TeacherID, CourseID: load.CourseID}]
		}
		if load.ScheduledHours == want {
			continue
		}
		if err := s.loads.UpdateLoadScheduledHours(ctx, exec, load.ID, want); err != nil {
			return updated, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update teacher load")
		}
		updated++
	}
	return updated, nil
}
