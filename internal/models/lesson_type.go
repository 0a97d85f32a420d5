package models

// Well-known lesson type codes with behaviour attached to them.
const (
	LessonTypeBreak       = "BREAK"
	LessonTypeCanceled    = "CANCELED"
	LessonTypeRescheduled = "RESCHEDULED"
)

// LessonType is a session kind. Its flags drive the conflict and counting rules.
type LessonType struct {
	ID                   int64  `db:"id" json:"id"`
	Code                 string `db:"code" json:"code"`
	Name                 string `db:"name" json:"name"`
	IsActive             bool   `db:"is_active" json:"isActive"`
	RequiresRoom         bool   `db:"requires_room" json:"requiresRoom"`
	RequiresTeacher      bool   `db:"requires_teacher" json:"requiresTeacher"`
	BlocksRoom           bool   `db:"blocks_room" json:"blocksRoom"`
	BlocksTeacher        bool   `db:"blocks_teacher" json:"blocksTeacher"`
	CountInPlan          bool   `db:"count_in_plan" json:"countInPlan"`
	CountInLoad          bool   `db:"count_in_load" json:"countInLoad"`
	PreferredFirstInWeek bool   `db:"preferred_first_in_week" json:"preferredFirstInWeek"`
}

// CountsTowardPlan reports whether a session of this type consumes module
// plan hours. Canceled sessions always count.
func (lt LessonType) CountsTowardPlan() bool {
	return lt.CountInPlan || lt.Code == LessonTypeCanceled
}

// IsBreak reports the lunch-break lesson type.
func (lt LessonType) IsBreak() bool { return lt.Code == LessonTypeBreak }
