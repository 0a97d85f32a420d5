package repository

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/timetable-api/internal/models"
)

// pick returns exec when the caller runs inside a transaction and the pool otherwise.
func pick(db *sqlx.DB, exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return db
}

// whereBuilder accumulates positional conditions.
type whereBuilder struct {
	conditions []string
	args       []interface{}
}

func (w *whereBuilder) add(format string, value interface{}) {
	w.args = append(w.args, value)
	w.conditions = append(w.conditions, fmt.Sprintf(format, len(w.args)))
}

func (w *whereBuilder) raw(condition string) {
	w.conditions = append(w.conditions, condition)
}

func (w *whereBuilder) clause() string {
	if len(w.conditions) == 0 {
		return "1=1"
	}
	return strings.Join(w.conditions, " AND ")
}

// placementWhere renders the shared filter of schedule_items and teacher_draft_items.
func placementWhere(alias string, filter models.PlacementFilter) *whereBuilder {
	w := &whereBuilder{}
	col := func(name string) string {
		if alias == "" {
			return name
		}
		return alias + "." + name
	}
	if !filter.From.IsZero() {
		w.add(col("date")+" >= $%d", filter.From)
	}
	if !filter.To.IsZero() {
		w.add(col("date")+" <= $%d", filter.To)
	}
	if filter.CourseID != nil {
		w.add(col("group_id")+" IN (SELECT id FROM student_groups WHERE course_id = $%d)", *filter.CourseID)
	}
	if len(filter.GroupIDs) > 0 {
		w.add(col("group_id")+" = ANY($%d)", pq.Array(filter.GroupIDs))
	}
	if filter.TeacherID != nil {
		w.add(col("teacher_id")+" = $%d", *filter.TeacherID)
	}
	if filter.OnlyUnlocked {
		w.raw(col("is_locked") + " = FALSE")
	}
	return w
}

func splitPlanKeys(keys []models.CourseModuleKey) (pq.Int64Array, pq.Int64Array) {
	courses := make(pq.Int64Array, len(keys))
	modules := make(pq.Int64Array, len(keys))
	for i, k := range keys {
		courses[i] = k.CourseID
		modules[i] = k.ModuleID
	}
	return courses, modules
}

func splitLoadKeys(keys []models.TeacherCourseKey) (pq.Int64Array, pq.Int64Array) {
	teachers := make(pq.Int64Array, len(keys))
	courses := make(pq.Int64Array, len(keys))
	for i, k := range keys {
		teachers[i] = k.TeacherID
		courses[i] = k.CourseID
	}
	return teachers, courses
}
