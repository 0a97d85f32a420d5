package models

// TimeSlot is a daily window sessions align to. A nil CourseID makes it global.
type TimeSlot struct {
	ID        int64     `db:"id" json:"id"`
	CourseID  *int64    `db:"course_id" json:"courseId,omitempty"`
	StartTime ClockTime `db:"start_time" json:"startTime"`
	EndTime   ClockTime `db:"end_time" json:"endTime"`
	SortOrder int       `db:"sort_order" json:"sortOrder"`
	IsActive  bool      `db:"is_active" json:"isActive"`
}

// Window returns the slot as a TimeWindow.
func (s TimeSlot) Window() TimeWindow {
	return TimeWindow{Start: s.StartTime, End: s.EndTime}
}

// CalendarException overrides the default working status of one date.
type CalendarException struct {
	ID        int64  `db:"id" json:"id"`
	Date      Date   `db:"date" json:"date"`
	IsWorking bool   `db:"is_working" json:"isWorking"`
	Reason    string `db:"reason" json:"reason"`
}

// LunchConfig reserves a break window for a course, or globally when CourseID is nil.
type LunchConfig struct {
	ID        int64     `db:"id" json:"id"`
	CourseID  *int64    `db:"course_id" json:"courseId,omitempty"`
	StartTime ClockTime `db:"start_time" json:"startTime"`
	EndTime   ClockTime `db:"end_time" json:"endTime"`
}

// Window returns the lunch break as a TimeWindow.
func (l LunchConfig) Window() TimeWindow {
	return TimeWindow{Start: l.StartTime, End: l.EndTime}
}
