package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/timetable-api/internal/models"
)

const placementColumns = "date, day_of_week, start_time, end_time, group_id, module_id, topic_id, teacher_id, room_id, lesson_type_id, is_locked"

const scheduleItemColumns = "id, " + placementColumns + ", created_at, updated_at"

// ScheduleItemRepository persists committed placements.
type ScheduleItemRepository struct {
	db *sqlx.DB
}

// NewScheduleItemRepository creates a schedule item repository.
func NewScheduleItemRepository(db *sqlx.DB) *ScheduleItemRepository {
	return &ScheduleItemRepository{db: db}
}

// FindByID loads one committed item.
func (r *ScheduleItemRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.ScheduleItem, error) {
	var item models.ScheduleItem
	query := `SELECT ` + scheduleItemColumns + ` FROM schedule_items WHERE id = $1`
	if err := sqlx.GetContext(ctx, pick(r.db, exec), &item, query, id); err != nil {
		return nil, err
	}
	return &item, nil
}

// List returns items matching the filter ordered by date, start time and id.
func (r *ScheduleItemRepository) List(ctx context.Context, exec sqlx.ExtContext, filter models.PlacementFilter) ([]models.ScheduleItem, error) {
	where := placementWhere("", filter)
	query := `SELECT ` + scheduleItemColumns + ` FROM schedule_items WHERE ` + where.clause() + ` ORDER BY date ASC, start_time ASC, id ASC`
	var items []models.ScheduleItem
	if err := sqlx.SelectContext(ctx, pick(r.db, exec), &items, query, where.args...); err != nil {
		return nil, fmt.Errorf("list schedule items: %w", err)
	}
	return items, nil
}

// Create inserts an item and stores the generated id.
func (r *ScheduleItemRepository) Create(ctx context.Context, exec sqlx.ExtContext, item *models.ScheduleItem) error {
	item.Normalize()
	const query = `INSERT INTO schedule_items (` + placementColumns + `, created_at, updated_at)
VALUES (:date, :day_of_week, :start_time, :end_time, :group_id, :module_id, :topic_id, :teacher_id, :room_id, :lesson_type_id, :is_locked, NOW(), NOW())
RETURNING id`
	rows, err := sqlx.NamedQueryContext(ctx, pick(r.db, exec), query, item)
	if err != nil {
		return fmt.Errorf("create schedule item: %w", err)
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&item.ID); err != nil {
			return fmt.Errorf("scan schedule item id: %w", err)
		}
	}
	return rows.Err()
}

// Update overwrites the placement of an existing item.
func (r *ScheduleItemRepository) Update(ctx context.Context, exec sqlx.ExtContext, item *models.ScheduleItem) error {
	item.Normalize()
	const query = `UPDATE schedule_items SET date = :date, day_of_week = :day_of_week, start_time = :start_time, end_time = :end_time,
group_id = :group_id, module_id = :module_id, topic_id = :topic_id, teacher_id = :teacher_id, room_id = :room_id,
lesson_type_id = :lesson_type_id, is_locked = :is_locked, updated_at = NOW()
WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, pick(r.db, exec), query, item); err != nil {
		return fmt.Errorf("update schedule item: %w", err)
	}
	return nil
}

// Delete removes one item.
func (r *ScheduleItemRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id int64) error {
	if _, err := pick(r.db, exec).ExecContext(ctx, `DELETE FROM schedule_items WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete schedule item: %w", err)
	}
	return nil
}

// DeleteByFilter removes matching items and returns them.
func (r *ScheduleItemRepository) DeleteByFilter(ctx context.Context, exec sqlx.ExtContext, filter models.PlacementFilter) ([]models.ScheduleItem, error) {
	where := placementWhere("", filter)
	query := `DELETE FROM schedule_items WHERE ` + where.clause() + ` RETURNING ` + scheduleItemColumns
	var items []models.ScheduleItem
	if err := sqlx.SelectContext(ctx, pick(r.db, exec), &items, query, where.args...); err != nil {
		return nil, fmt.Errorf("clear schedule items: %w", err)
	}
	return items, nil
}

// CountByGroupModule counts items per (group, module, lesson type) for the given groups.
func (r *ScheduleItemRepository) CountByGroupModule(ctx context.Context, exec sqlx.ExtContext, groupIDs []int64) ([]models.PlacementCount, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}
	const query = `SELECT group_id, module_id, lesson_type_id, COUNT(*) AS cnt FROM schedule_items
WHERE group_id = ANY($1) AND module_id IS NOT NULL
GROUP BY group_id, module_id, lesson_type_id`
	var counts []models.PlacementCount
	if err := sqlx.SelectContext(ctx, pick(r.db, exec), &counts, query, pq.Array(groupIDs)); err != nil {
		return nil, fmt.Errorf("count schedule items by group module: %w", err)
	}
	return counts, nil
}

// CountTopicUsage counts items per (group, topic) for the given groups.
func (r *ScheduleItemRepository) CountTopicUsage(ctx context.Context, exec sqlx.ExtContext, groupIDs []int64) ([]models.TopicUsage, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}
	const query = `SELECT group_id, topic_id, COUNT(*) AS cnt FROM schedule_items
WHERE group_id = ANY($1) AND topic_id IS NOT NULL
GROUP BY group_id, topic_id`
	var usage []models.TopicUsage
	if err := sqlx.SelectContext(ctx, pick(r.db, exec), &usage, query, pq.Array(groupIDs)); err != nil {
		return nil, fmt.Errorf("count schedule topic usage: %w", err)
	}
	return usage, nil
}

// CountForPlans counts items per (course, module, lesson type). A nil keys
// slice counts every pair.
func (r *ScheduleItemRepository) CountForPlans(ctx context.Context, exec sqlx.ExtContext, keys []models.CourseModuleKey) ([]models.AggregateCount, error) {
	query := `SELECT g.course_id, si.module_id AS owner_id, si.lesson_type_id, COUNT(*) AS cnt
FROM schedule_items si JOIN student_groups g ON g.id = si.group_id
WHERE si.module_id IS NOT NULL`
	var args []interface{}
	if keys != nil {
		if len(keys) == 0 {
			return nil, nil
		}
		courses, modules := splitPlanKeys(keys)
		query += ` AND (g.course_id, si.module_id) IN (SELECT * FROM unnest($1::bigint[], $2::bigint[]))`
		args = append(args, courses, modules)
	}
	query += ` GROUP BY g.course_id, si.module_id, si.lesson_type_id`
	var counts []models.AggregateCount
	if err := sqlx.SelectContext(ctx, pick(r.db, exec), &counts, query, args...); err != nil {
		return nil, fmt.Errorf("count schedule items for plans: %w", err)
	}
	return counts, nil
}

// CountForLoads counts items per (course, teacher, lesson type). A nil keys
// slice counts every pair.
func (r *ScheduleItemRepository) CountForLoads(ctx context.Context, exec sqlx.ExtContext, keys []models.TeacherCourseKey) ([]models.AggregateCount, error) {
	query := `SELECT g.course_id, si.teacher_id AS owner_id, si.lesson_type_id, COUNT(*) AS cnt
FROM schedule_items si JOIN student_groups g ON g.id = si.group_id
WHERE si.teacher_id IS NOT NULL`
	var args []interface{}
	if keys != nil {
		if len(keys) == 0 {
			return nil, nil
		}
		teachers, courses := splitLoadKeys(keys)
		query += ` AND (si.teacher_id, g.course_id) IN (SELECT * FROM unnest($1::bigint[], $2::bigint[]))`
		args = append(args, teachers, courses)
	}
	query += ` GROUP BY g.course_id, si.teacher_id, si.lesson_type_id`
	var counts []models.AggregateCount
	if err := sqlx.SelectContext(ctx, pick(r.db, exec), &counts, query, args...); err != nil {
		return nil, fmt.Errorf("count schedule items for loads: %w", err)
	}
	return counts, nil
}
