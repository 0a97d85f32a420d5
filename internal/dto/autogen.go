package dto

import "github.com/noah-isme/timetable-api/internal/models"

// DayPreset selects which weekdays autogen fills.
type DayPreset string

const (
	DayPresetMonFri DayPreset = "MON_FRI"
	DayPresetMonSat DayPreset = "MON_SAT"
	DayPresetMonSun DayPreset = "MON_SUN"
)

// LastWeekday returns the ISO weekday the preset ends on. Unknown presets mean Monday-Friday.
func (p DayPreset) LastWeekday() int {
	switch p {
	case DayPresetMonSat:
		return 6
	case DayPresetMonSun:
		return 7
	default:
		return 5
	}
}

// AutogenOptions are shared by the week, month and course-range runs.
type AutogenOptions struct {
	ClearExisting  bool      `json:"clearExisting"`
	CourseID       *int64    `json:"courseId,omitempty" validate:"omitempty,gt=0"`
	GroupID        *int64    `json:"groupId,omitempty" validate:"omitempty,gt=0"`
	TeacherID      *int64    `json:"teacherId,omitempty" validate:"omitempty,gt=0"`
	AllowOnDaysOff bool      `json:"allowOnDaysOff"`
	DayPreset      DayPreset `json:"dayPreset" validate:"omitempty,oneof=MON_FRI MON_SAT MON_SUN"`
}

// AutogenWeekRequest generates drafts for the week starting at WeekStart.
type AutogenWeekRequest struct {
	WeekStart models.Date `json:"weekStart"`
	AutogenOptions
}

// AutogenMonthRequest generates drafts for every week overlapping a month.
type AutogenMonthRequest struct {
	Year  int `json:"year" validate:"required,min=2000,max=2100"`
	Month int `json:"month" validate:"required,min=1,max=12"`
	AutogenOptions
}

// AutogenCourseRangeRequest generates drafts for a course's whole duration.
type AutogenCourseRangeRequest struct {
	StartDate models.Date `json:"startDate"`
	AutogenOptions
}

// GapDetail explains a slot autogen left empty.
type GapDetail struct {
	Date      models.Date      `json:"date"`
	GroupID   int64            `json:"groupId"`
	StartTime models.ClockTime `json:"startTime"`
	EndTime   models.ClockTime `json:"endTime"`
	Reason    string           `json:"reason"`
}

// AutogenResponse totals one or more week runs.
type AutogenResponse struct {
	Created        int          `json:"created"`
	Skipped        int          `json:"skipped"`
	Warnings       []string     `json:"warnings"`
	GapDetails     []GapDetail  `json:"gapDetails"`
	WeeksProcessed int          `json:"weeksProcessed"`
	StoppedAt      *models.Date `json:"stoppedAt,omitempty"`
}

// Merge adds a week's totals.
func (r *AutogenResponse) Merge(week *AutogenResponse) {
	r.Created += week.Created
	r.Skipped += week.Skipped
	r.Warnings = append(r.Warnings, week.Warnings...)
	r.GapDetails = append(r.GapDetails, week.GapDetails...)
	r.WeeksProcessed += week.WeeksProcessed
}

// PublishWeekRequest publishes the drafts of a week.
type PublishWeekRequest struct {
	WeekStart models.Date `json:"weekStart"`
	TeacherID *int64      `json:"teacherId,omitempty" validate:"omitempty,gt=0"`
}

// PublishResponse reports a publish run.
type PublishResponse struct {
	Created  int      `json:"created"`
	Skipped  int      `json:"skipped"`
	Warnings []string `json:"warnings"`
}
