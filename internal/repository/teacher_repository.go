package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/timetable-api/internal/models"
)

// TeacherRepository reads teachers with their module links, working hours and loads.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository creates a teacher repository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// GetTeacher loads one teacher.
func (r *TeacherRepository) GetTeacher(ctx context.Context, exec sqlx.ExtContext, id int64) (*models.Teacher, error) {
	var teacher models.Teacher
	if err := sqlx.GetContext(ctx, pick(r.db, exec), &teacher, `SELECT id, full_name, qualifications FROM teachers WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// ListTeachersByIDs returns the teachers with the given ids.
func (r *TeacherRepository) ListTeachersByIDs(ctx context.Context, exec sqlx.ExtContext, ids []int64) ([]models.Teacher, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var teachers []models.Teacher
	query := `SELECT id, full_name, qualifications FROM teachers WHERE id = ANY($1) ORDER BY id ASC`
	if err := sqlx.SelectContext(ctx, pick(r.db, exec), &teachers, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	return teachers, nil
}

// ListTeacherModules returns teacher links of the given modules ordered by teacher id.
func (r *TeacherRepository) ListTeacherModules(ctx context.Context, exec sqlx.ExtContext, moduleIDs []int64) ([]models.TeacherModule, error) {
	if len(moduleIDs) == 0 {
		return nil, nil
	}
	var links []models.TeacherModule
	query := `SELECT teacher_id, module_id FROM teacher_modules WHERE module_id = ANY($1) ORDER BY module_id ASC, teacher_id ASC`
	if err := sqlx.SelectContext(ctx, pick(r.db, exec), &links, query, pq.Array(moduleIDs)); err != nil {
		return nil, fmt.Errorf("list teacher modules: %w", err)
	}
	return links, nil
}

// IsLinked reports whether the teacher may teach the module.
func (r *TeacherRepository) IsLinked(ctx context.Context, exec sqlx.ExtContext, teacherID, moduleID int64) (bool, error) {
	var linked bool
	query := `SELECT EXISTS (SELECT 1 FROM teacher_modules WHERE teacher_id = $1 AND module_id = $2)`
	if err := sqlx.GetContext(ctx, pick(r.db, exec), &linked, query, teacherID, moduleID); err != nil {
		return false, fmt.Errorf("check teacher module link: %w", err)
	}
	return linked, nil
}

// ListWorkingHours returns availability windows of the given teachers.
func (r *TeacherRepository) ListWorkingHours(ctx context.Context, exec sqlx.ExtContext, teacherIDs []int64) ([]models.TeacherWorkingHour, error) {
	if len(teacherIDs) == 0 {
		return nil, nil
	}
	var hours []models.TeacherWorkingHour
	query := `SELECT id, teacher_id, weekday, start_time, end_time FROM teacher_working_hours
WHERE teacher_id = ANY($1) ORDER BY teacher_id ASC, weekday ASC, start_time ASC`
	if err := sqlx.SelectContext(ctx, pick(r.db, exec), &hours, query, pq.Array(teacherIDs)); err != nil {
		return nil, fmt.Errorf("list teacher working hours: %w", err)
	}
	return hours, nil
}

// ListTeacherLoads returns the load rows for the given keys, or every row when keys is nil.
func (r *TeacherRepository) ListTeacherLoads(ctx context.Context, exec sqlx.ExtContext, keys []models.TeacherCourseKey) ([]models.TeacherCourseLoad, error) {
	query := `SELECT id, teacher_id, course_id, target_hours, scheduled_hours, is_active FROM teacher_course_loads`
	var args []interface{}
	if keys != nil {
		if len(keys) == 0 {
			return nil, nil
		}
		teachers, courses := splitLoadKeys(keys)
		query += ` WHERE (teacher_id, course_id) IN (SELECT * FROM unnest($1::bigint[], $2::bigint[]))`
		args = append(args, teachers, courses)
	}
	query += ` ORDER BY id ASC`
	var loads []models.TeacherCourseLoad
	if err := sqlx.SelectContext(ctx, pick(r.db, exec), &loads, query, args...); err != nil {
		return nil, fmt.Errorf("list teacher loads: %w", err)
	}
	return loads, nil
}

// UpdateLoadScheduledHours overwrites the cached scheduled hours of a load row.
func (r *TeacherRepository) UpdateLoadScheduledHours(ctx context.Context, exec sqlx.ExtContext, loadID int64, hours int) error {
	if _, err := pick(r.db, exec).ExecContext(ctx, `UPDATE teacher_course_loads SET scheduled_hours = $1 WHERE id = $2`, hours, loadID); err != nil {
		return fmt.Errorf("update load scheduled hours: %w", err)
	}
	return nil
}
