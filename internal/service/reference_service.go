package service

import (
	"context"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

const referenceCacheKey = "timetable:reference:v1"

type referenceCalendarReader interface {
	ListLessonTypes(ctx context.Context, exec sqlx.ExtContext) ([]models.LessonType, error)
	ListTimeSlots(ctx context.Context, exec sqlx.ExtContext) ([]models.TimeSlot, error)
	ListCalendarExceptions(ctx context.Context, exec sqlx.ExtContext, from, to models.Date) ([]models.CalendarException, error)
	ListLunchConfigs(ctx context.Context, exec sqlx.ExtContext) ([]models.LunchConfig, error)
}

type referenceRoomReader interface {
	ListRooms(ctx context.Context, exec sqlx.ExtContext) ([]models.Room, error)
	ListTravels(ctx context.Context, exec sqlx.ExtContext) ([]models.BuildingTravel, error)
}

// ReferenceData is the slowly changing configuration every check consults.
type ReferenceData struct {
	LessonTypes map[int64]models.LessonType
	Rooms       map[int64]models.Room
	Travel      *TravelMatrix
}

// LessonTypeByCode finds a lesson type by its code.
func (d *ReferenceData) LessonTypeByCode(code string) (models.LessonType, bool) {
	for _, lt := range d.LessonTypes {
		if lt.Code == code {
			return lt, true
		}
	}
	return models.LessonType{}, false
}

type referenceSnapshot struct {
	LessonTypes []models.LessonType     `json:"lessonTypes"`
	Rooms       []models.Room           `json:"rooms"`
	Travels     []models.BuildingTravel `json:"travels"`
}

// ReferenceService loads lesson types, rooms and the travel matrix through the cache,
// and builds time grids for date ranges.
type ReferenceService struct {
	calendar      referenceCalendarReader
	rooms         referenceRoomReader
	cache         *CacheService
	defaultTravel int
	logger        *zap.Logger
}

// NewReferenceService wires reference data readers.
func NewReferenceService(calendar referenceCalendarReader, rooms referenceRoomReader, cache *CacheService, defaultTravel int, logger *zap.Logger) *ReferenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultTravel <= 0 {
		defaultTravel = DefaultTravelMinutes
	}
	return &ReferenceService{calendar: calendar, rooms: rooms, cache: cache, defaultTravel: defaultTravel, logger: logger}
}

// Load returns the reference data, from cache when possible.
func (s *ReferenceService) Load(ctx context.Context) (*ReferenceData, error) {
	var snapshot referenceSnapshot
	if !s.cache.Get(ctx, referenceCacheKey, &snapshot) {
		loaded, err := s.loadSnapshot(ctx)
		if err != nil {
			return nil, err
		}
		snapshot = *loaded
		s.cache.Set(ctx, referenceCacheKey, snapshot, 0)
	}
	return s.build(snapshot), nil
}

func (s *ReferenceService) loadSnapshot(ctx context.Context) (*referenceSnapshot, error) {
	lessonTypes, err := s.calendar.ListLessonTypes(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson types")
	}
	rooms, err := s.rooms.ListRooms(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}
	travels, err := s.rooms.ListTravels(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load travel matrix")
	}
	return &referenceSnapshot{LessonTypes: lessonTypes, Rooms: rooms, Travels: travels}, nil
}

func (s *ReferenceService) build(snapshot referenceSnapshot) *ReferenceData {
	data := &ReferenceData{
		LessonTypes: make(map[int64]models.LessonType, len(snapshot.LessonTypes)),
		Rooms:       make(map[int64]models.Room, len(snapshot.Rooms)),
		Travel:      NewTravelMatrix(snapshot.Travels, s.defaultTravel),
	}
	for _, lt := range snapshot.LessonTypes {
		data.LessonTypes[lt.ID] = lt
	}
	for _, room := range snapshot.Rooms {
		data.Rooms[room.ID] = room
	}
	return data
}

// Invalidate drops the cached reference data.
func (s *ReferenceService) Invalidate(ctx context.Context) {
	s.cache.Invalidate(ctx, referenceCacheKey)
}

// TimeGrid loads slots and the calendar exceptions between from and to.
func (s *ReferenceService) TimeGrid(ctx context.Context, exec sqlx.ExtContext, from, to models.Date) (*TimeGrid, error) {
	slots, err := s.calendar.ListTimeSlots(ctx, exec)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time slots")
	}
	exceptions, err := s.calendar.ListCalendarExceptions(ctx, exec, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load calendar exceptions")
	}
	return NewTimeGrid(slots, exceptions), nil
}

// LunchWindow returns the course's lunch break, falling back to the global one.
func (s *ReferenceService) LunchWindow(ctx context.Context, exec sqlx.ExtContext) (func(courseID int64) (models.TimeWindow, bool), error) {
	configs, err := s.calendar.ListLunchConfigs(ctx, exec)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lunch configs")
	}
	var global *models.TimeWindow
	byCourse := make(map[int64]models.TimeWindow)
	for _, cfg := range configs {
		w := cfg.Window()
		if !w.Valid() {
			continue
		}
		if cfg.CourseID == nil {
			if global == nil {
				global = &w
			}
			continue
		}
		byCourse[*cfg.CourseID] = w
	}
	return func(courseID int64) (models.TimeWindow, bool) {
		if w, ok := byCourse[courseID]; ok {
			return w, true
		}
		if global != nil {
			return *global, true
		}
		return models.TimeWindow{}, false
	}, nil
}
