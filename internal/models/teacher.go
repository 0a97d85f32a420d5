package models

import "github.com/lib/pq"

// Teacher can be linked to the modules they teach.
type Teacher struct {
	ID             int64          `db:"id" json:"id"`
	FullName       string         `db:"full_name" json:"fullName"`
	Qualifications pq.StringArray `db:"qualifications" json:"qualifications"`
}

// TeacherModule links a teacher to a module they may teach.
type TeacherModule struct {
	TeacherID int64 `db:"teacher_id" json:"teacherId"`
	ModuleID  int64 `db:"module_id" json:"moduleId"`
}

// TeacherWorkingHour is an availability window on an ISO weekday (1=Monday).
type TeacherWorkingHour struct {
	ID        int64     `db:"id" json:"id"`
	TeacherID int64     `db:"teacher_id" json:"teacherId"`
	Weekday   int       `db:"weekday" json:"weekday"`
	StartTime ClockTime `db:"start_time" json:"startTime"`
	EndTime   ClockTime `db:"end_time" json:"endTime"`
}

// Window returns the availability as a TimeWindow.
func (w TeacherWorkingHour) Window() TimeWindow {
	return TimeWindow{Start: w.StartTime, End: w.EndTime}
}

// TeacherCourseLoad tracks a teacher's target and scheduled hours in a course.
type TeacherCourseLoad struct {
	ID             int64 `db:"id" json:"id"`
	TeacherID      int64 `db:"teacher_id" json:"teacherId"`
	CourseID       int64 `db:"course_id" json:"courseId"`
	TargetHours    int   `db:"target_hours" json:"targetHours"`
	ScheduledHours int   `db:"scheduled_hours" json:"scheduledHours"`
	IsActive       bool  `db:"is_active" json:"isActive"`
}
