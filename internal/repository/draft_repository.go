package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"

	"github.com/noah-isme/timetable-api/internal/models"
)

const draftColumns = "id, " + placementColumns + ", status, batch_key, validation_warnings, created_at, updated_at"

// DraftRepository persists teacher draft items.
type DraftRepository struct {
	db *sqlx.DB
}

// NewDraftRepository creates a draft repository.
func NewDraftRepository(db *sqlx.DB) *DraftRepository {
	return &DraftRepository{db: db}
}

// FindByID loads one draft.
func (r *DraftRepository) FindByID(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.TeacherDraftItem, error) {
	var draft models.TeacherDraftItem
	query := `SELECT ` + draftColumns + ` FROM teacher_draft_items WHERE id = $1`
	if err := sqlx.GetContext(ctx, pick(r.db, exec), &draft, query, id); err != nil {
		return nil, err
	}
	return &draft, nil
}

func draftWhere(filter models.PlacementFilter) *whereBuilder {
	where := placementWhere("", filter)
	if filter.Status != "" {
		where.add("status = $%d", string(filter.Status))
	}
	return where
}

// List returns drafts matching the filter ordered by date, start time and id.
func (r *DraftRepository) List(ctx context.Context, exec sqlx.ExtContext, filter models.PlacementFilter) ([]models.TeacherDraftItem, error) {
	where := draftWhere(filter)
	query := `SELECT ` + draftColumns + ` FROM teacher_draft_items WHERE ` + where.clause() + ` ORDER BY date ASC, start_time ASC, id ASC`
	var drafts []models.TeacherDraftItem
	if err := sqlx.SelectContext(ctx, pick(r.db, exec), &drafts, query, where.args...); err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	return drafts, nil
}

// Create inserts a draft and stores the generated id.
func (r *DraftRepository) Create(ctx context.Context, exec sqlx.ExtContext, draft *models.TeacherDraftItem) error {
	draft.Normalize()
	if draft.Status == "" {
		draft.Status = models.DraftStatusDraft
	}
	if len(draft.ValidationWarnings) == 0 {
		draft.ValidationWarnings = types.JSONText("{}")
	}
	const query = `INSERT INTO teacher_draft_items (` + placementColumns + `, status, batch_key, validation_warnings, created_at, updated_at)
VALUES (:date, :day_of_week, :start_time, :end_time, :group_id, :module_id, :topic_id, :teacher_id, :room_id, :lesson_type_id, :is_locked,
:status, :batch_key, :validation_warnings, NOW(), NOW())
RETURNING id`
	rows, err := sqlx.NamedQueryContext(ctx, pick(r.db, exec), query, draft)
	if err != nil {
		return fmt.Errorf("create draft: %w", err)
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&draft.ID); err != nil {
			return fmt.Errorf("scan draft id: %w", err)
		}
	}
	return rows.Err()
}

// Update overwrites the placement and validation payload of a draft.
func (r *DraftRepository) Update(ctx context.Context, exec sqlx.ExtContext, draft *models.TeacherDraftItem) error {
	draft.Normalize()
	if len(draft.ValidationWarnings) == 0 {
		draft.ValidationWarnings = types.JSONText("{}")
	}
	const query = `UPDATE teacher_draft_items SET date = :date, day_of_week = :day_of_week, start_time = :start_time, end_time = :end_time,
group_id = :group_id, module_id = :module_id, topic_id = :topic_id, teacher_id = :teacher_id, room_id = :room_id,
lesson_type_id = :lesson_type_id, is_locked = :is_locked, batch_key = :batch_key, validation_warnings = :validation_warnings,
updated_at = NOW()
WHERE id = :id`
	if _, err := sqlx.NamedExecContext(ctx, pick(r.db, exec), query, draft); err != nil {
		return fmt.Errorf("update draft: %w", err)
	}
	return nil
}

// UpdateValidation stores a fresh validation report on a draft.
func (r *DraftRepository) UpdateValidation(ctx context.Context, exec sqlx.ExtContext, id int64, report types.JSONText) error {
	if _, err := pick(r.db, exec).ExecContext(ctx, `UPDATE teacher_draft_items SET validation_warnings = $1, updated_at = NOW() WHERE id = $2`, report, id); err != nil {
		return fmt.Errorf("update draft validation: %w", err)
	}
	return nil
}

// SetLocked toggles the lock flag of a draft.
func (r *DraftRepository) SetLocked(ctx context.Context, exec sqlx.ExtContext, id int64, locked bool) error {
	if _, err := pick(r.db, exec).ExecContext(ctx, `UPDATE teacher_draft_items SET is_locked = $1, updated_at = NOW() WHERE id = $2`, locked, id); err != nil {
		return fmt.Errorf("set draft lock: %w", err)
	}
	return nil
}

// Delete removes one draft.
func (r *DraftRepository) Delete(ctx context.Context, exec sqlx.ExtContext, id int64) error {
	if _, err := pick(r.db, exec).ExecContext(ctx, `DELETE FROM teacher_draft_items WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

// DeleteByIDs removes the given drafts.
func (r *DraftRepository) DeleteByIDs(ctx context.Context, exec sqlx.ExtContext, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := pick(r.db, exec).ExecContext(ctx, `DELETE FROM teacher_draft_items WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("delete drafts: %w", err)
	}
	return res.RowsAffected()
}

// DeleteByFilter removes matching drafts and returns how many were deleted.
func (r *DraftRepository) DeleteByFilter(ctx context.Context, exec sqlx.ExtContext, filter models.PlacementFilter) (int64, error) {
	where := draftWhere(filter)
	res, err := pick(r.db, exec).ExecContext(ctx, `DELETE FROM teacher_draft_items WHERE `+where.clause(), where.args...)
	if err != nil {
		return 0, fmt.Errorf("clear drafts: %w", err)
	}
	return res.RowsAffected()
}

// CountByGroupModule counts unpublished drafts per (group, module, lesson type).
func (r *DraftRepository) CountByGroupModule(ctx context.Context, exec sqlx.ExtContext, groupIDs []int64) ([]models.PlacementCount, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}
	const query = `SELECT group_id, module_id, lesson_type_id, COUNT(*) AS cnt FROM teacher_draft_items
WHERE group_id = ANY($1) AND module_id IS NOT NULL AND status = $2
GROUP BY group_id, module_id, lesson_type_id`
	var counts []models.PlacementCount
	if err := sqlx.SelectContext(ctx, pick(r.db, exec), &counts, query, pq.Array(groupIDs), string(models.DraftStatusDraft)); err != nil {
		return nil, fmt.Errorf("count drafts by group module: %w", err)
	}
	return counts, nil
}

// CountTopicUsage counts unpublished drafts per (group, topic).
func (r *DraftRepository) CountTopicUsage(ctx context.Context, exec sqlx.ExtContext, groupIDs []int64) ([]models.TopicUsage, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}
	const query = `SELECT group_id, topic_id, COUNT(*) AS cnt FROM teacher_draft_items
WHERE group_id = ANY($1) AND topic_id IS NOT NULL AND status = $2
GROUP BY group_id, topic_id`
	var usage []models.TopicUsage
	if err := sqlx.SelectContext(ctx, pick(r.db, exec), &usage, query, pq.Array(groupIDs), string(models.DraftStatusDraft)); err != nil {
		return nil, fmt.Errorf("count draft topic usage: %w", err)
	}
	return usage, nil
}
