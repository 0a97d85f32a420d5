package dto

import "github.com/noah-isme/timetable-api/internal/models"

// PlacementRequest creates or updates a schedule item or draft. A nil ID creates.
type PlacementRequest struct {
	ID                 *int64           `json:"id,omitempty"`
	Date               models.Date      `json:"date"`
	StartTime          models.ClockTime `json:"startTime"`
	EndTime            models.ClockTime `json:"endTime"`
	GroupID            int64            `json:"groupId" validate:"required,gt=0"`
	ModuleID           *int64           `json:"moduleId,omitempty" validate:"omitempty,gt=0"`
	TopicID            *int64           `json:"topicId,omitempty" validate:"omitempty,gt=0"`
	TeacherID          *int64           `json:"teacherId,omitempty" validate:"omitempty,gt=0"`
	RoomID             *int64           `json:"roomId,omitempty" validate:"omitempty,gt=0"`
	LessonTypeID       int64            `json:"lessonTypeId" validate:"required,gt=0"`
	IsLocked           bool             `json:"isLocked"`
	AllowNonWorkingDay bool             `json:"allowNonWorkingDay"`
}

// Placement converts the request into the shared placement shape.
func (r PlacementRequest) Placement() models.Placement {
	p := models.Placement{
		Date:         r.Date,
		StartTime:    r.StartTime,
		EndTime:      r.EndTime,
		GroupID:      r.GroupID,
		ModuleID:     r.ModuleID,
		TopicID:      r.TopicID,
		TeacherID:    r.TeacherID,
		RoomID:       r.RoomID,
		LessonTypeID: r.LessonTypeID,
		IsLocked:     r.IsLocked,
	}
	p.Normalize()
	return p
}

// UpsertResponse returns the stored id with any non-blocking warnings.
type UpsertResponse struct {
	ID       int64    `json:"id"`
	Warnings []string `json:"warnings"`
}

// ClearWeekRequest scopes a week clear.
type ClearWeekRequest struct {
	WeekStart models.Date `json:"weekStart"`
	CourseID  *int64      `json:"courseId,omitempty" validate:"omitempty,gt=0"`
	GroupID   *int64      `json:"groupId,omitempty" validate:"omitempty,gt=0"`
}

// ClearWeekResponse reports deleted rows.
type ClearWeekResponse struct {
	Deleted int64 `json:"deleted"`
}

// WeekQuery lists placements of one week.
type WeekQuery struct {
	WeekStart string `form:"weekStart" validate:"required"`
	CourseID  *int64 `form:"courseId" validate:"omitempty,gt=0"`
	GroupID   *int64 `form:"groupId" validate:"omitempty,gt=0"`
	TeacherID *int64 `form:"teacherId" validate:"omitempty,gt=0"`
}

// DraftLockRequest toggles a draft lock.
type DraftLockRequest struct {
	Locked bool `json:"locked"`
}

// RevalidateRequest re-runs the draft checker for a week.
type RevalidateRequest struct {
	WeekStart models.Date `json:"weekStart"`
	TeacherID *int64      `json:"teacherId,omitempty" validate:"omitempty,gt=0"`
}

// RevalidateResponse summarises a revalidation pass.
type RevalidateResponse struct {
	Checked    int `json:"checked"`
	WithErrors int `json:"withErrors"`
}
