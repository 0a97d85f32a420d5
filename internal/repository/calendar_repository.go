package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-api/internal/models"
)

// CalendarRepository reads the reference data of the time grid.
type CalendarRepository struct {
	db *sqlx.DB
}

// NewCalendarRepository creates a calendar repository.
func NewCalendarRepository(db *sqlx.DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

// ListLessonTypes returns every lesson type ordered by id.
func (r *CalendarRepository) ListLessonTypes(ctx context.Context, exec sqlx.ExtContext) ([]models.LessonType, error) {
	const query = `SELECT id, code, name, is_active, requires_room, requires_teacher, blocks_room, blocks_teacher,
count_in_plan, count_in_load, preferred_first_in_week FROM lesson_types ORDER BY id ASC`
	var lessonTypes []models.LessonType
	if err := sqlx.SelectContext(ctx, pick(r.db, exec), &lessonTypes, query); err != nil {
		return nil, fmt.Errorf("list lesson types: %w", err)
	}
	return lessonTypes, nil
}

// ListTimeSlots returns active slots, global and course scoped.
func (r *CalendarRepository) ListTimeSlots(ctx context.Context, exec sqlx.ExtContext) ([]models.TimeSlot, error) {
	const query = `SELECT id, course_id, start_time, end_time, sort_order, is_active FROM time_slots
WHERE is_active = TRUE ORDER BY sort_order ASC, start_time ASC, id ASC`
	var slots []models.TimeSlot
	if err := sqlx.SelectContext(ctx, pick(r.db, exec), &slots, query); err != nil {
		return nil, fmt.Errorf("list time slots: %w", err)
	}
	return slots, nil
}

// ListCalendarExceptions returns the overrides between from and to inclusive.
func (r *CalendarRepository) ListCalendarExceptions(ctx context.Context, exec sqlx.ExtContext, from, to models.Date) ([]models.CalendarException, error) {
	const query = `SELECT id, date, is_working, reason FROM calendar_exceptions WHERE date BETWEEN $1 AND $2 ORDER BY date ASC`
	var exceptions []models.CalendarException
	if err := sqlx.SelectContext(ctx, pick(r.db, exec), &exceptions, query, from, to); err != nil {
		return nil, fmt.Errorf("list calendar exceptions: %w", err)
	}
	return exceptions, nil
}

// ListLunchConfigs returns every lunch window.
func (r *CalendarRepository) ListLunchConfigs(ctx context.Context, exec sqlx.ExtContext) ([]models.LunchConfig, error) {
	const query = `SELECT id, course_id, start_time, end_time FROM lunch_configs ORDER BY id ASC`
	var configs []models.LunchConfig
	if err := sqlx.SelectContext(ctx, pick(r.db, exec), &configs, query); err != nil {
		return nil, fmt.Errorf("list lunch configs: %w", err)
	}
	return configs, nil
}
