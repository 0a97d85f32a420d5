package service

import (
	"github.com/noah-isme/timetable-api/internal/models"
)

// DefaultTravelMinutes applies to building pairs missing from the matrix.
const DefaultTravelMinutes = 10

// TravelMatrix answers minimum transition times between buildings.
type TravelMatrix struct {
	minutes        map[[2]int64]int
	defaultMinutes int
}

// NewTravelMatrix indexes canonical travel rows.
func NewTravelMatrix(rows []models.BuildingTravel, defaultMinutes int) *TravelMatrix {
	if defaultMinutes <= 0 {
		defaultMinutes = DefaultTravelMinutes
	}
	m := &TravelMatrix{minutes: make(map[[2]int64]int, len(rows)), defaultMinutes: defaultMinutes}
	for _, row := range rows {
		a, b := models.CanonicalPair(row.BuildingAID, row.BuildingBID)
		m.minutes[[2]int64{a, b}] = row.Minutes
	}
	return m
}

// RequiredMinutes is zero inside one building.
func (m *TravelMatrix) RequiredMinutes(buildingA, buildingB int64) int {
	if buildingA == buildingB {
		return 0
	}
	a, b := models.CanonicalPair(buildingA, buildingB)
	if minutes, ok := m.minutes[[2]int64{a, b}]; ok {
		return minutes
	}
	return m.defaultMinutes
}

// TravelStop is a session located in a building.
type TravelStop struct {
	BuildingID int64
	Window     models.TimeWindow
}

// TravelViolation describes a gap shorter than the buildings require.
type TravelViolation struct {
	Required int
	Actual   int
}

// CheckGap compares the gap between candidate and other with the required
// travel time. Overlapping stops are left to the overlap check.
func (m *TravelMatrix) CheckGap(candidate, other TravelStop) (TravelViolation, bool) {
	required := m.RequiredMinutes(candidate.BuildingID, other.BuildingID)
	if required == 0 {
		return TravelViolation{}, true
	}
	var gap int
	switch {
	case other.Window.End <= candidate.Window.Start:
		gap = candidate.Window.Start.Minutes() - other.Window.End.Minutes()
	case other.Window.Start >= candidate.Window.End:
		gap = other.Window.Start.Minutes() - candidate.Window.End.Minutes()
	default:
		return TravelViolation{}, true
	}
	if gap < required {
		return TravelViolation{Required: required, Actual: gap}, false
	}
	return TravelViolation{}, true
}
