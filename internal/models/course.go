package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
)

// Course is a study programme running for a number of weeks.
type Course struct {
	ID            int64     `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	DurationWeeks int       `db:"duration_weeks" json:"durationWeeks"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}

// Group is a cohort of students inside one course.
type Group struct {
	ID           int64  `db:"id" json:"id"`
	CourseID     int64  `db:"course_id" json:"courseId"`
	Name         string `db:"name" json:"name"`
	StudentCount int    `db:"student_count" json:"studentCount"`
}

// Module is a teachable subject. It belongs to a primary course and can be
// linked to further courses through course_modules.
type Module struct {
	ID                 int64         `db:"id" json:"id"`
	CourseID           int64         `db:"course_id" json:"courseId"`
	Name               string        `db:"name" json:"name"`
	Credits            int           `db:"credits" json:"credits"`
	AllowedRoomIDs     pq.Int64Array `db:"allowed_room_ids" json:"allowedRoomIds"`
	AllowedBuildingIDs pq.Int64Array `db:"allowed_building_ids" json:"allowedBuildingIds"`
}

// AllowsRoom reports whether the module may use room, given its building.
func (m Module) AllowsRoom(room Room) bool {
	if len(m.AllowedRoomIDs) > 0 && !containsID(m.AllowedRoomIDs, room.ID) {
		return false
	}
	if len(m.AllowedBuildingIDs) > 0 && !containsID(m.AllowedBuildingIDs, room.BuildingID) {
		return false
	}
	return true
}

// Topic is one row of a module's syllabus.
type Topic struct {
	ID              int64  `db:"id" json:"id"`
	ModuleID        int64  `db:"module_id" json:"moduleId"`
	Code            string `db:"code" json:"code"`
	Title           string `db:"title" json:"title"`
	LessonTypeID    *int64 `db:"lesson_type_id" json:"lessonTypeId,omitempty"`
	TotalHours      int    `db:"total_hours" json:"totalHours"`
	AuditoriumHours int    `db:"auditorium_hours" json:"auditoriumHours"`
	SelfStudyHours  int    `db:"self_study_hours" json:"selfStudyHours"`
}

// UsageLimit is how many sessions of the topic may be scheduled.
func (t Topic) UsageLimit() int { return t.AuditoriumHours }

// CompareTopicCodes orders dotted codes segment by segment ("2.10" after "2.9").
// Non-numeric segments compare lexically after numeric ones.
func CompareTopicCodes(a, b string) int {
	as := strings.Split(strings.TrimSpace(a), ".")
	bs := strings.Split(strings.TrimSpace(b), ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		an, aerr := strconv.Atoi(as[i])
		bn, berr := strconv.Atoi(bs[i])
		switch {
		case aerr == nil && berr == nil:
			if an != bn {
				if an < bn {
					return -1
				}
				return 1
			}
		case aerr == nil:
			return -1
		case berr == nil:
			return 1
		default:
			if c := strings.Compare(as[i], bs[i]); c != 0 {
				return c
			}
		}
	}
	switch {
	case len(as) < len(bs):
		return -1
	case len(as) > len(bs):
		return 1
	}
	return 0
}

// ModulePlan tracks target and cached scheduled hours for a (course, module).
type ModulePlan struct {
	ID             int64 `db:"id" json:"id"`
	CourseID       int64 `db:"course_id" json:"courseId"`
	ModuleID       int64 `db:"module_id" json:"moduleId"`
	TargetHours    int   `db:"target_hours" json:"targetHours"`
	ScheduledHours int   `db:"scheduled_hours" json:"scheduledHours"`
	IsActive       bool  `db:"is_active" json:"isActive"`
	SortOrder      int   `db:"sort_order" json:"sortOrder"`
}

// ModuleSequenceItem places a module in a course's main sequence.
type ModuleSequenceItem struct {
	ID       int64 `db:"id" json:"id"`
	CourseID int64 `db:"course_id" json:"courseId"`
	ModuleID int64 `db:"module_id" json:"moduleId"`
	Position int   `db:"position" json:"position"`
}

// ModuleFiller marks a module used to pad free slots of a course.
type ModuleFiller struct {
	ID       int64 `db:"id" json:"id"`
	CourseID int64 `db:"course_id" json:"courseId"`
	ModuleID int64 `db:"module_id" json:"moduleId"`
	Position int   `db:"position" json:"position"`
}

// CourseModuleKey identifies a module plan.
type CourseModuleKey struct {
	CourseID int64 `json:"courseId"`
	ModuleID int64 `json:"moduleId"`
}

// TeacherCourseKey identifies a teacher load row.
type TeacherCourseKey struct {
	TeacherID int64 `json:"teacherId"`
	CourseID  int64 `json:"courseId"`
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
