package service

import (
	"sort"

	"github.com/noah-isme/timetable-api/internal/models"
)

// TimeGrid resolves effective slots and working days from one load of
// time_slots and calendar_exceptions.
type TimeGrid struct {
	global     []models.TimeSlot
	byCourse   map[int64][]models.TimeSlot
	exceptions map[string]models.CalendarException
}

// NewTimeGrid indexes active slots by scope and exceptions by date.
func NewTimeGrid(slots []models.TimeSlot, exceptions []models.CalendarException) *TimeGrid {
	grid := &TimeGrid{
		byCourse:   make(map[int64][]models.TimeSlot),
		exceptions: make(map[string]models.CalendarException, len(exceptions)),
	}
	for _, slot := range slots {
		if !slot.IsActive {
			continue
		}
		if slot.CourseID == nil {
			grid.global = append(grid.global, slot)
			continue
		}
		grid.byCourse[*slot.CourseID] = append(grid.byCourse[*slot.CourseID], slot)
	}
	sortSlots(grid.global)
	for id := range grid.byCourse {
		sortSlots(grid.byCourse[id])
	}
	for _, exc := range exceptions {
		grid.exceptions[exc.Date.String()] = exc
	}
	return grid
}

func sortSlots(slots []models.TimeSlot) {
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].SortOrder != slots[j].SortOrder {
			return slots[i].SortOrder < slots[j].SortOrder
		}
		return slots[i].StartTime < slots[j].StartTime
	})
}

// EffectiveSlots returns the course's own slots when it has any, the global ones otherwise.
func (g *TimeGrid) EffectiveSlots(courseID int64) []models.TimeWindow {
	source := g.byCourse[courseID]
	if len(source) == 0 {
		source = g.global
	}
	windows := make([]models.TimeWindow, 0, len(source))
	for _, slot := range source {
		windows = append(windows, slot.Window())
	}
	return windows
}

// MatchesSlot reports whether w equals one of the course's effective slots.
// It returns true when no slot is configured at all.
func (g *TimeGrid) MatchesSlot(courseID int64, w models.TimeWindow) bool {
	slots := g.EffectiveSlots(courseID)
	if len(slots) == 0 {
		return true
	}
	for _, slot := range slots {
		if slot == w {
			return true
		}
	}
	return false
}

// IsWorkingDay applies the exception for date, falling back to Monday-Friday.
// Calendar exceptions are institution wide.
func (g *TimeGrid) IsWorkingDay(date models.Date) bool {
	if exc, ok := g.exceptions[date.String()]; ok {
		return exc.IsWorking
	}
	return !date.IsWeekend()
}

// Exception returns the override registered for date.
func (g *TimeGrid) Exception(date models.Date) (models.CalendarException, bool) {
	exc, ok := g.exceptions[date.String()]
	return exc, ok
}
