package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Placement is the shape shared by committed schedule items and drafts.
type Placement struct {
	Date         Date      `db:"date" json:"date"`
	DayOfWeek    int       `db:"day_of_week" json:"dayOfWeek"`
	StartTime    ClockTime `db:"start_time" json:"startTime"`
	EndTime      ClockTime `db:"end_time" json:"endTime"`
	GroupID      int64     `db:"group_id" json:"groupId"`
	ModuleID     *int64    `db:"module_id" json:"moduleId,omitempty"`
	TopicID      *int64    `db:"topic_id" json:"topicId,omitempty"`
	TeacherID    *int64    `db:"teacher_id" json:"teacherId,omitempty"`
	RoomID       *int64    `db:"room_id" json:"roomId,omitempty"`
	LessonTypeID int64     `db:"lesson_type_id" json:"lessonTypeId"`
	IsLocked     bool      `db:"is_locked" json:"isLocked"`
}

// Window returns the placement's time window.
func (p Placement) Window() TimeWindow {
	return TimeWindow{Start: p.StartTime, End: p.EndTime}
}

// Normalize fills derived columns.
func (p *Placement) Normalize() {
	p.DayOfWeek = p.Date.IsoWeekday()
}

// ScheduleItem is a committed placement.
type ScheduleItem struct {
	ID int64 `db:"id" json:"id"`
	Placement
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// DraftStatus is the lifecycle state of a draft row.
type DraftStatus string

const (
	DraftStatusDraft     DraftStatus = "DRAFT"
	DraftStatusPublished DraftStatus = "PUBLISHED"
)

// TeacherDraftItem is an editable, unpublished placement.
type TeacherDraftItem struct {
	ID int64 `db:"id" json:"id"`
	Placement
	Status             DraftStatus    `db:"status" json:"status"`
	BatchKey           *string        `db:"batch_key" json:"batchKey,omitempty"`
	ValidationWarnings types.JSONText `db:"validation_warnings" json:"validationWarnings,omitempty"`
	CreatedAt          time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time      `db:"updated_at" json:"updatedAt"`
}

// PlacementFilter scopes range queries over schedule items and drafts.
type PlacementFilter struct {
	From      Date
	To        Date
	CourseID  *int64
	GroupIDs  []int64
	TeacherID *int64
	// OnlyUnlocked restricts results to rows that may be deleted.
	OnlyUnlocked bool
	// Status applies to drafts only.
	Status DraftStatus
}

// PlacementCount aggregates placements by (group, module, lesson type).
type PlacementCount struct {
	GroupID      int64 `db:"group_id"`
	ModuleID     int64 `db:"module_id"`
	LessonTypeID int64 `db:"lesson_type_id"`
	Count        int   `db:"cnt"`
}

// TopicUsage aggregates placements by (group, topic).
type TopicUsage struct {
	GroupID int64 `db:"group_id"`
	TopicID int64 `db:"topic_id"`
	Count   int   `db:"cnt"`
}

// AggregateCount aggregates committed items by an owner key and lesson type.
// OwnerID is the module for plan counts and the teacher for load counts.
type AggregateCount struct {
	CourseID     int64 `db:"course_id"`
	OwnerID      int64 `db:"owner_id"`
	LessonTypeID int64 `db:"lesson_type_id"`
	Count        int   `db:"cnt"`
}
