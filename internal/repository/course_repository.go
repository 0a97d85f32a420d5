package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/timetable-api/internal/models"
)

const (
	moduleColumns = "m.id, m.course_id, m.name, m.credits, m.allowed_room_ids, m.allowed_building_ids"
	topicColumns  = "id, module_id, code, title, lesson_type_id, total_hours, auditorium_hours, self_study_hours"
	planColumns   = "id, course_id, module_id, target_hours, scheduled_hours, is_active, sort_order"
)

// CourseRepository persists courses, groups, modules, topics and module plans.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository creates a course repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// GetCourse loads one course.
func (r *CourseRepository) GetCourse(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Course, error) {
	var course models.Course
	if err := sqlx.GetContext(ctx, pick(r.db, exec), &course, `SELECT id, name, duration_weeks, created_at FROM courses WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// GetGroup loads one group.
func (r *CourseRepository) GetGroup(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Group, error) {
	var group models.Group
	if err := sqlx.GetContext(ctx, pick(r.db, exec), &group, `SELECT id, course_id, name, student_count FROM student_groups WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &group, nil
}

// ListGroups returns groups ordered by id, optionally restricted to one course.
func (r *CourseRepository) ListGroups(ctx context.Context, exec sqlx.ExtContext, courseID *int64) ([]models.Group, error) {
	query := `SELECT id, course_id, name, student_count FROM student_groups`
	var args []interface{}
	if courseID != nil {
		query += ` WHERE course_id = $1`
		args = append(args, *courseID)
	}
	query += ` ORDER BY id ASC`
	var groups []models.Group
	if err := sqlx.SelectContext(ctx, pick(r.db, exec), &groups, query, args...); err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

// GetModule loads one module.
func (r *CourseRepository) GetModule(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Module, error) {
	var module models.Module
	query := `SELECT ` + moduleColumns + ` FROM modules m WHERE m.id = $1`
	if err := sqlx.GetContext(ctx, pick(r.db, exec), &module, query, id); err != nil {
		return nil, err
	}
	return &module, nil
}

// ListModulesByCourse returns the course's own modules and those linked to it.
func (r *CourseRepository) ListModulesByCourse(ctx context.Context, exec sqlx.ExtContext, courseID int64) ([]models.Module, error) {
	query := `SELECT ` + moduleColumns + ` FROM modules m
WHERE m.course_id = $1 OR m.id IN (SELECT module_id FROM course_modules WHERE course_id = $1)
ORDER BY m.id ASC`
	var modules []models.Module
	if err := sqlx.SelectContext(ctx, pick(r.db, exec), &modules, query, courseID); err != nil {
		return nil, fmt.Errorf("list modules by course: %w", err)
	}
	return modules, nil
}

// ListTopicsByModules returns topics of the given modules. Callers sort by code.
func (r *CourseRepository) ListTopicsByModules(ctx context.Context, exec sqlx.ExtContext, moduleIDs []int64) ([]models.Topic, error) {
	if len(moduleIDs) == 0 {
		return nil, nil
	}
	query := `SELECT ` + topicColumns + ` FROM topics WHERE module_id = ANY($1) ORDER BY module_id ASC, id ASC`
	var topics []models.Topic
	if err := sqlx.SelectContext(ctx, pick(r.db, exec), &topics, query, pq.Array(moduleIDs)); err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	return topics, nil
}

// ListModulePlans returns plans ordered by sort order, optionally for one course.
func (r *CourseRepository) ListModulePlans(ctx context.Context, exec sqlx.ExtContext, courseID *int64) ([]models.ModulePlan, error) {
	query := `SELECT ` + planColumns + ` FROM module_plans`
	var args []interface{}
	if courseID != nil {
		query += ` WHERE course_id = $1`
		args = append(args, *courseID)
	}
	query += ` ORDER BY course_id ASC, sort_order ASC, id ASC`
	var plans []models.ModulePlan
	if err := sqlx.SelectContext(ctx, pick(r.db, exec), &plans, query, args...); err != nil {
		return nil, fmt.Errorf("list module plans: %w", err)
	}
	return plans, nil
}

// ListModulePlansByKeys returns the plans for the given (course, module) pairs.
func (r *CourseRepository) ListModulePlansByKeys(ctx context.Context, exec sqlx.ExtContext, keys []models.CourseModuleKey) ([]models.ModulePlan, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	courses, modules := splitPlanKeys(keys)
	query := `SELECT ` + planColumns + ` FROM module_plans
WHERE (course_id, module_id) IN (SELECT * FROM unnest($1::bigint[], $2::bigint[]))
ORDER BY id ASC`
	var plans []models.ModulePlan
	if err := sqlx.SelectContext(ctx, pick(r.db, exec), &plans, query, courses, modules); err != nil {
		return nil, fmt.Errorf("list module plans by keys: %w", err)
	}
	return plans, nil
}

// CreateModulePlan inserts a plan and stores the generated id.
func (r *CourseRepository) CreateModulePlan(ctx context.Context, exec sqlx.ExtContext, plan *models.ModulePlan) error {
	const query = `INSERT INTO module_plans (course_id, module_id, target_hours, scheduled_hours, is_active, sort_order)
VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	row := pick(r.db, exec).QueryRowxContext(ctx, query, plan.CourseID, plan.ModuleID, plan.TargetHours, plan.ScheduledHours, plan.IsActive, plan.SortOrder)
	if err := row.Scan(&plan.ID); err != nil {
		return fmt.Errorf("create module plan: %w", err)
	}
	return nil
}

// UpdatePlanScheduledHours overwrites the cached scheduled hours of a plan.
func (r *CourseRepository) UpdatePlanScheduledHours(ctx context.Context, exec sqlx.ExtContext, planID int64, hours int) error {
	if _, err := pick(r.db, exec).ExecContext(ctx, `UPDATE module_plans SET scheduled_hours = $1 WHERE id = $2`, hours, planID); err != nil {
		return fmt.Errorf("update plan scheduled hours: %w", err)
	}
	return nil
}

// ListModuleSequence returns the main module order of a course.
func (r *CourseRepository) ListModuleSequence(ctx context.Context, exec sqlx.ExtContext, courseID int64) ([]models.ModuleSequenceItem, error) {
	var items []models.ModuleSequenceItem
	query := `SELECT id, course_id, module_id, position FROM module_sequence_items WHERE course_id = $1 ORDER BY position ASC, id ASC`
	if err := sqlx.SelectContext(ctx, pick(r.db, exec), &items, query, courseID); err != nil {
		return nil, fmt.Errorf("list module sequence: %w", err)
	}
	return items, nil
}

// ListModuleFillers returns the filler modules of a course.
func (r *CourseRepository) ListModuleFillers(ctx context.Context, exec sqlx.ExtContext, courseID int64) ([]models.ModuleFiller, error) {
	var items []models.ModuleFiller
	query := `SELECT id, course_id, module_id, position FROM module_fillers WHERE course_id = $1 ORDER BY position ASC, id ASC`
	if err := sqlx.SelectContext(ctx, pick(r.db, exec), &items, query, courseID); err != nil {
		return nil, fmt.Errorf("list module fillers: %w", err)
	}
	return items, nil
}
