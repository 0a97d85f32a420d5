package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/timetable-api/internal/models"
)

func window(start, end string) models.TimeWindow {
	return models.TimeWindow{Start: models.MustParseClock(start), End: models.MustParseClock(end)}
}

func TestTimeGridEffectiveSlots(t *testing.T) {
	slots := []models.TimeSlot{
		{ID: 1, StartTime: models.Clock(10, 10), EndTime: models.Clock(11, 40), SortOrder: 2, IsActive: true},
		{ID: 2, StartTime: models.Clock(8, 30), EndTime: models.Clock(10, 0), SortOrder: 1, IsActive: true},
		{ID: 3, StartTime: models.Clock(12, 0), EndTime: models.Clock(13, 30), SortOrder: 3, IsActive: false},
		{ID: 4, CourseID: int64Ptr(5), StartTime: models.Clock(9, 0), EndTime: models.Clock(10, 30), SortOrder: 1, IsActive: true},
	}
	grid := NewTimeGrid(slots, nil)

	assert.Equal(t, []models.TimeWindow{window("08:30", "10:00"), window("10:10", "11:40")}, grid.EffectiveSlots(1))
	assert.Equal(t, []models.TimeWindow{window("09:00", "10:30")}, grid.EffectiveSlots(5))

	assert.True(t, grid.MatchesSlot(1, window("10:10", "11:40")))
	assert.False(t, grid.MatchesSlot(1, window("10:10", "11:30")))
	assert.False(t, grid.MatchesSlot(5, window("08:30", "10:00")))
	assert.True(t, NewTimeGrid(nil, nil).MatchesSlot(1, window("07:00", "07:05")))
}

func TestTimeGridWorkingDays(t *testing.T) {
	grid := NewTimeGrid(nil, []models.CalendarException{
		{Date: models.MustParseDate("2025-03-12"), IsWorking: false, Reason: "Holiday"},
		{Date: models.MustParseDate("2025-03-15"), IsWorking: true, Reason: "Make-up day"},
	})

	assert.True(t, grid.IsWorkingDay(models.MustParseDate("2025-03-10")))
	assert.False(t, grid.IsWorkingDay(models.MustParseDate("2025-03-12")))
	assert.True(t, grid.IsWorkingDay(models.MustParseDate("2025-03-15")))
	assert.False(t, grid.IsWorkingDay(models.MustParseDate("2025-03-16")))

	exc, ok := grid.Exception(models.MustParseDate("2025-03-12"))
	assert.True(t, ok)
	assert.Equal(t, "Holiday", exc.Reason)
	_, ok = grid.Exception(models.MustParseDate("2025-03-13"))
	assert.False(t, ok)
}
