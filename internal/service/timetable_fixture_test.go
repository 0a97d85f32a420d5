package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strconv"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/models"
)

// --- In-memory stores ---

type memoryCatalog struct {
	courses     []models.Course
	groups      []models.Group
	modules     []models.Module
	topics      []models.Topic
	plans       []models.ModulePlan
	sequence    []models.ModuleSequenceItem
	fillers     []models.ModuleFiller
	teachers    []models.Teacher
	links       []models.TeacherModule
	hours       []models.TeacherWorkingHour
	loads       []models.TeacherCourseLoad
	lessonTypes []models.LessonType
	slots       []models.TimeSlot
	exceptions  []models.CalendarException
	lunches     []models.LunchConfig
	buildings   []models.Building
	rooms       []models.Room
	travels     []models.BuildingTravel
	nextID      int64
}

func (c *memoryCatalog) id() int64 {
	c.nextID++
	return 10000 + c.nextID
}

func (c *memoryCatalog) courseOf(groupID int64) int64 {
	for _, g := range c.groups {
		if g.ID == groupID {
			return g.CourseID
		}
	}
	return 0
}

func (c *memoryCatalog) GetCourse(_ context.Context, _ sqlx.ExtContext, id int64) (*models.Course, error) {
	for _, course := range c.courses {
		if course.ID == id {
			course := course
			return &course, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (c *memoryCatalog) GetGroup(_ context.Context, _ sqlx.ExtContext, id int64) (*models.Group, error) {
	for _, g := range c.groups {
		if g.ID == id {
			g := g
			return &g, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (c *memoryCatalog) ListGroups(_ context.Context, _ sqlx.ExtContext, courseID *int64) ([]models.Group, error) {
	var out []models.Group
	for _, g := range c.groups {
		if courseID == nil || g.CourseID == *courseID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (c *memoryCatalog) GetModule(_ context.Context, _ sqlx.ExtContext, id int64) (*models.Module, error) {
	for _, m := range c.modules {
		if m.ID == id {
			m := m
			return &m, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (c *memoryCatalog) ListModulesByCourse(_ context.Context, _ sqlx.ExtContext, courseID int64) ([]models.Module, error) {
	var out []models.Module
	for _, m := range c.modules {
		if m.CourseID == courseID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (c *memoryCatalog) ListTopicsByModules(_ context.Context, _ sqlx.ExtContext, moduleIDs []int64) ([]models.Topic, error) {
	var out []models.Topic
	for _, t := range c.topics {
		if containsInt64(moduleIDs, t.ModuleID) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (c *memoryCatalog) ListModulePlans(_ context.Context, _ sqlx.ExtContext, courseID *int64) ([]models.ModulePlan, error) {
	var out []models.ModulePlan
	for _, p := range c.plans {
		if courseID == nil || p.CourseID == *courseID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (c *memoryCatalog) ListModulePlansByKeys(_ context.Context, _ sqlx.ExtContext, keys []models.CourseModuleKey) ([]models.ModulePlan, error) {
	var out []models.ModulePlan
	for _, p := range c.plans {
		for _, k := range keys {
			if p.CourseID == k.CourseID && p.ModuleID == k.ModuleID {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}

func (c *memoryCatalog) CreateModulePlan(_ context.Context, _ sqlx.ExtContext, plan *models.ModulePlan) error {
	plan.ID = c.id()
	c.plans = append(c.plans, *plan)
	return nil
}

func (c *memoryCatalog) UpdatePlanScheduledHours(_ context.Context, _ sqlx.ExtContext, planID int64, hours int) error {
	for i := range c.plans {
		if c.plans[i].ID == planID {
			c.plans[i].ScheduledHours = hours
		}
	}
	return nil
}

func (c *memoryCatalog) ListModuleSequence(_ context.Context, _ sqlx.ExtContext, courseID int64) ([]models.ModuleSequenceItem, error) {
	var out []models.ModuleSequenceItem
	for _, s := range c.sequence {
		if s.CourseID == courseID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (c *memoryCatalog) ListModuleFillers(_ context.Context, _ sqlx.ExtContext, courseID int64) ([]models.ModuleFiller, error) {
	var out []models.ModuleFiller
	for _, f := range c.fillers {
		if f.CourseID == courseID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (c *memoryCatalog) ListTeachersByIDs(_ context.Context, _ sqlx.ExtContext, ids []int64) ([]models.Teacher, error) {
	var out []models.Teacher
	for _, t := range c.teachers {
		if containsInt64(ids, t.ID) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (c *memoryCatalog) ListTeacherModules(_ context.Context, _ sqlx.ExtContext, moduleIDs []int64) ([]models.TeacherModule, error) {
	var out []models.TeacherModule
	for _, l := range c.links {
		if containsInt64(moduleIDs, l.ModuleID) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (c *memoryCatalog) IsLinked(_ context.Context, _ sqlx.ExtContext, teacherID, moduleID int64) (bool, error) {
	for _, l := range c.links {
		if l.TeacherID == teacherID && l.ModuleID == moduleID {
			return true, nil
		}
	}
	return false, nil
}

func (c *memoryCatalog) ListWorkingHours(_ context.Context, _ sqlx.ExtContext, teacherIDs []int64) ([]models.TeacherWorkingHour, error) {
	var out []models.TeacherWorkingHour
	for _, h := range c.hours {
		if containsInt64(teacherIDs, h.TeacherID) {
			out = append(out, h)
		}
	}
	return out, nil
}

func (c *memoryCatalog) ListTeacherLoads(_ context.Context, _ sqlx.ExtContext, keys []models.TeacherCourseKey) ([]models.TeacherCourseLoad, error) {
	if keys != nil && len(keys) == 0 {
		return nil, nil
	}
	var out []models.TeacherCourseLoad
	for _, l := range c.loads {
		if keys == nil {
			out = append(out, l)
			continue
		}
		for _, k := range keys {
			if l.TeacherID == k.TeacherID && l.CourseID == k.CourseID {
				out = append(out, l)
				break
			}
		}
	}
	return out, nil
}

func (c *memoryCatalog) UpdateLoadScheduledHours(_ context.Context, _ sqlx.ExtContext, loadID int64, hours int) error {
	for i := range c.loads {
		if c.loads[i].ID == loadID {
			c.loads[i].ScheduledHours = hours
		}
	}
	return nil
}

func (c *memoryCatalog) ListLessonTypes(_ context.Context, _ sqlx.ExtContext) ([]models.LessonType, error) {
	return c.lessonTypes, nil
}

func (c *memoryCatalog) ListTimeSlots(_ context.Context, _ sqlx.ExtContext) ([]models.TimeSlot, error) {
	return c.slots, nil
}

func (c *memoryCatalog) ListCalendarExceptions(_ context.Context, _ sqlx.ExtContext, from, to models.Date) ([]models.CalendarException, error) {
	var out []models.CalendarException
	for _, e := range c.exceptions {
		if !e.Date.Before(from) && !e.Date.After(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (c *memoryCatalog) ListLunchConfigs(_ context.Context, _ sqlx.ExtContext) ([]models.LunchConfig, error) {
	return c.lunches, nil
}

func (c *memoryCatalog) ListRooms(_ context.Context, _ sqlx.ExtContext) ([]models.Room, error) {
	return c.rooms, nil
}

func (c *memoryCatalog) ListTravels(_ context.Context, _ sqlx.ExtContext) ([]models.BuildingTravel, error) {
	return c.travels, nil
}

func (c *memoryCatalog) ListBuildings(_ context.Context, _ sqlx.ExtContext) ([]models.Building, error) {
	return append([]models.Building(nil), c.buildings...), nil
}

func (c *memoryCatalog) CreateBuilding(_ context.Context, _ sqlx.ExtContext, building *models.Building) error {
	building.ID = c.id()
	c.buildings = append(c.buildings, *building)
	return nil
}

func (c *memoryCatalog) UpsertTravel(_ context.Context, _ sqlx.ExtContext, travel models.BuildingTravel) error {
	for i := range c.travels {
		if c.travels[i].BuildingAID == travel.BuildingAID && c.travels[i].BuildingBID == travel.BuildingBID {
			c.travels[i].Minutes = travel.Minutes
			return nil
		}
	}
	c.travels = append(c.travels, travel)
	return nil
}

func (c *memoryCatalog) InsertTravelIfMissing(_ context.Context, _ sqlx.ExtContext, travel models.BuildingTravel) error {
	for _, t := range c.travels {
		if t.BuildingAID == travel.BuildingAID && t.BuildingBID == travel.BuildingBID {
			return nil
		}
	}
	c.travels = append(c.travels, travel)
	return nil
}

func filterMatches(c *memoryCatalog, p models.Placement, f models.PlacementFilter) bool {
	if !f.From.IsZero() && p.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && p.Date.After(f.To) {
		return false
	}
	if f.CourseID != nil && c.courseOf(p.GroupID) != *f.CourseID {
		return false
	}
	if f.GroupIDs != nil && !containsInt64(f.GroupIDs, p.GroupID) {
		return false
	}
	if f.TeacherID != nil && !sameID(f.TeacherID, p.TeacherID) {
		return false
	}
	return !(f.OnlyUnlocked && p.IsLocked)
}

func lessPlacement(a, b models.Placement, idA, idB int64) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.Before(b.Date)
	}
	if a.StartTime != b.StartTime {
		return a.StartTime < b.StartTime
	}
	return idA < idB
}

type memoryItems struct {
	catalog *memoryCatalog
	rows    []models.ScheduleItem
	nextID  int64
}

func (m *memoryItems) FindByID(_ context.Context, _ sqlx.ExtContext, id int64) (*models.ScheduleItem, error) {
	for _, item := range m.rows {
		if item.ID == id {
			item := item
			return &item, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memoryItems) List(_ context.Context, _ sqlx.ExtContext, filter models.PlacementFilter) ([]models.ScheduleItem, error) {
	var out []models.ScheduleItem
	for _, item := range m.rows {
		if filterMatches(m.catalog, item.Placement, filter) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return lessPlacement(out[i].Placement, out[j].Placement, out[i].ID, out[j].ID) })
	return out, nil
}

func (m *memoryItems) Create(_ context.Context, _ sqlx.ExtContext, item *models.ScheduleItem) error {
	m.nextID++
	item.ID = m.nextID
	item.Normalize()
	m.rows = append(m.rows, *item)
	return nil
}

func (m *memoryItems) Update(_ context.Context, _ sqlx.ExtContext, item *models.ScheduleItem) error {
	item.Normalize()
	for i := range m.rows {
		if m.rows[i].ID == item.ID {
			m.rows[i] = *item
		}
	}
	return nil
}

func (m *memoryItems) Delete(_ context.Context, _ sqlx.ExtContext, id int64) error {
	kept := m.rows[:0]
	for _, item := range m.rows {
		if item.ID != id {
			kept = append(kept, item)
		}
	}
	m.rows = kept
	return nil
}

func (m *memoryItems) DeleteByFilter(_ context.Context, _ sqlx.ExtContext, filter models.PlacementFilter) ([]models.ScheduleItem, error) {
	var kept, deleted []models.ScheduleItem
	for _, item := range m.rows {
		if filterMatches(m.catalog, item.Placement, filter) {
			deleted = append(deleted, item)
			continue
		}
		kept = append(kept, item)
	}
	m.rows = kept
	return deleted, nil
}

func countByGroupModule(placements []models.Placement, groupIDs []int64) []models.PlacementCount {
	index := make(map[models.PlacementCount]int)
	for _, p := range placements {
		if p.ModuleID == nil || !containsInt64(groupIDs, p.GroupID) {
			continue
		}
		index[models.PlacementCount{GroupID: p.GroupID, ModuleID: *p.ModuleID, LessonTypeID: p.LessonTypeID}]++
	}
	var out []models.PlacementCount
	for key, n := range index {
		key.Count = n
		out = append(out, key)
	}
	return out
}

func countTopicUsage(placements []models.Placement, groupIDs []int64) []models.TopicUsage {
	index := make(map[models.TopicUsage]int)
	for _, p := range placements {
		if p.TopicID == nil || !containsInt64(groupIDs, p.GroupID) {
			continue
		}
		index[models.TopicUsage{GroupID: p.GroupID, TopicID: *p.TopicID}]++
	}
	var out []models.TopicUsage
	for key, n := range index {
		key.Count = n
		out = append(out, key)
	}
	return out
}

func (m *memoryItems) placements() []models.Placement {
	out := make([]models.Placement, 0, len(m.rows))
	for _, item := range m.rows {
		out = append(out, item.Placement)
	}
	return out
}

func (m *memoryItems) CountByGroupModule(_ context.Context, _ sqlx.ExtContext, groupIDs []int64) ([]models.PlacementCount, error) {
	return countByGroupModule(m.placements(), groupIDs), nil
}

func (m *memoryItems) CountTopicUsage(_ context.Context, _ sqlx.ExtContext, groupIDs []int64) ([]models.TopicUsage, error) {
	return countTopicUsage(m.placements(), groupIDs), nil
}

func (m *memoryItems) CountForPlans(_ context.Context, _ sqlx.ExtContext, keys []models.CourseModuleKey) ([]models.AggregateCount, error) {
	index := make(map[models.AggregateCount]int)
	for _, item := range m.rows {
		if item.ModuleID == nil {
			continue
		}
		key := models.CourseModuleKey{CourseID: m.catalog.courseOf(item.GroupID), ModuleID: *item.ModuleID}
		if keys != nil && !containsPlanKey(keys, key) {
			continue
		}
		index[models.AggregateCount{CourseID: key.CourseID, OwnerID: key.ModuleID, LessonTypeID: item.LessonTypeID}]++
	}
	return aggregateRows(index), nil
}

func (m *memoryItems) CountForLoads(_ context.Context, _ sqlx.ExtContext, keys []models.TeacherCourseKey) ([]models.AggregateCount, error) {
	index := make(map[models.AggregateCount]int)
	for _, item := range m.rows {
		if item.TeacherID == nil {
			continue
		}
		key := models.TeacherCourseKey{TeacherID: *item.TeacherID, CourseID: m.catalog.courseOf(item.GroupID)}
		if keys != nil && !containsLoadKey(keys, key) {
			continue
		}
		index[models.AggregateCount{CourseID: key.CourseID, OwnerID: key.TeacherID, LessonTypeID: item.LessonTypeID}]++
	}
	return aggregateRows(index), nil
}

func containsPlanKey(keys []models.CourseModuleKey, key models.CourseModuleKey) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

func containsLoadKey(keys []models.TeacherCourseKey, key models.TeacherCourseKey) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}

func aggregateRows(index map[models.AggregateCount]int) []models.AggregateCount {
	var out []models.AggregateCount
	for key, n := range index {
		key.Count = n
		out = append(out, key)
	}
	return out
}

type memoryDrafts struct {
	catalog *memoryCatalog
	rows    []models.TeacherDraftItem
	nextID  int64
	// failAfter makes Create fail once that many drafts were stored.
	failAfter int
	// failNext is returned by the next Create only.
	failNext error
}

var errStoreUnavailable = errors.New("store unavailable")

func (m *memoryDrafts) FindByID(_ context.Context, _ sqlx.ExtContext, id int64) (*models.TeacherDraftItem, error) {
	for _, d := range m.rows {
		if d.ID == id {
			d := d
			return &d, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *memoryDrafts) matches(d models.TeacherDraftItem, filter models.PlacementFilter) bool {
	if filter.Status != "" && d.Status != filter.Status {
		return false
	}
	return filterMatches(m.catalog, d.Placement, filter)
}

func (m *memoryDrafts) List(_ context.Context, _ sqlx.ExtContext, filter models.PlacementFilter) ([]models.TeacherDraftItem, error) {
	var out []models.TeacherDraftItem
	for _, d := range m.rows {
		if m.matches(d, filter) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return lessPlacement(out[i].Placement, out[j].Placement, out[i].ID, out[j].ID) })
	return out, nil
}

func (m *memoryDrafts) Create(_ context.Context, _ sqlx.ExtContext, draft *models.TeacherDraftItem) error {
	if err := m.failNext; err != nil {
		m.failNext = nil
		return err
	}
	if m.failAfter > 0 && len(m.rows) >= m.failAfter {
		return errStoreUnavailable
	}
	m.nextID++
	draft.ID = m.nextID
	draft.Normalize()
	if draft.Status == "" {
		draft.Status = models.DraftStatusDraft
	}
	m.rows = append(m.rows, *draft)
	return nil
}

func (m *memoryDrafts) Update(_ context.Context, _ sqlx.ExtContext, draft *models.TeacherDraftItem) error {
	draft.Normalize()
	for i := range m.rows {
		if m.rows[i].ID == draft.ID {
			draft.Status = m.rows[i].Status
			m.rows[i] = *draft
		}
	}
	return nil
}

func (m *memoryDrafts) UpdateValidation(_ context.Context, _ sqlx.ExtContext, id int64, report types.JSONText) error {
	for i := range m.rows {
		if m.rows[i].ID == id {
			m.rows[i].ValidationWarnings = report
		}
	}
	return nil
}

func (m *memoryDrafts) SetLocked(_ context.Context, _ sqlx.ExtContext, id int64, locked bool) error {
	for i := range m.rows {
		if m.rows[i].ID == id {
			m.rows[i].IsLocked = locked
		}
	}
	return nil
}

func (m *memoryDrafts) Delete(_ context.Context, _ sqlx.ExtContext, id int64) error {
	_, err := m.DeleteByIDs(context.Background(), nil, []int64{id})
	return err
}

func (m *memoryDrafts) DeleteByIDs(_ context.Context, _ sqlx.ExtContext, ids []int64) (int64, error) {
	var kept []models.TeacherDraftItem
	var deleted int64
	for _, d := range m.rows {
		if containsInt64(ids, d.ID) {
			deleted++
			continue
		}
		kept = append(kept, d)
	}
	m.rows = kept
	return deleted, nil
}

func (m *memoryDrafts) DeleteByFilter(_ context.Context, _ sqlx.ExtContext, filter models.PlacementFilter) (int64, error) {
	var kept []models.TeacherDraftItem
	var deleted int64
	for _, d := range m.rows {
		if m.matches(d, filter) {
			deleted++
			continue
		}
		kept = append(kept, d)
	}
	m.rows = kept
	return deleted, nil
}

func (m *memoryDrafts) unpublished() []models.Placement {
	var out []models.Placement
	for _, d := range m.rows {
		if d.Status == models.DraftStatusDraft {
			out = append(out, d.Placement)
		}
	}
	return out
}

func (m *memoryDrafts) CountByGroupModule(_ context.Context, _ sqlx.ExtContext, groupIDs []int64) ([]models.PlacementCount, error) {
	return countByGroupModule(m.unpublished(), groupIDs), nil
}

func (m *memoryDrafts) CountTopicUsage(_ context.Context, _ sqlx.ExtContext, groupIDs []int64) ([]models.TopicUsage, error) {
	return countTopicUsage(m.unpublished(), groupIDs), nil
}

// --- Fixture ---

const (
	ltLecture     int64 = 1
	ltSeminar     int64 = 2
	ltBreak       int64 = 3
	ltCanceled    int64 = 4
	ltRescheduled int64 = 5
	ltSelfStudy   int64 = 6
)

func int64Ptr(v int64) *int64 { return &v }

func testLessonTypes() []models.LessonType {
	return []models.LessonType{
		{ID: ltLecture, Code: "LECTURE", Name: "Lecture", IsActive: true, RequiresRoom: true, RequiresTeacher: true, BlocksRoom: true, BlocksTeacher: true, CountInPlan: true, CountInLoad: true},
		{ID: ltSeminar, Code: "SEMINAR", Name: "Seminar", IsActive: false, RequiresRoom: true, RequiresTeacher: true, BlocksRoom: true, BlocksTeacher: true, CountInPlan: true, CountInLoad: true},
		{ID: ltBreak, Code: models.LessonTypeBreak, Name: "Lunch", IsActive: true},
		{ID: ltCanceled, Code: models.LessonTypeCanceled, Name: "Canceled", IsActive: true},
		{ID: ltRescheduled, Code: models.LessonTypeRescheduled, Name: "Rescheduled", IsActive: true},
		{ID: ltSelfStudy, Code: "SELF", Name: "Self study", IsActive: true},
	}
}

// scenarioCatalog is course 1 with group 10 (30 students), module 100 limited
// to building 1, teacher 7 linked to it and one global slot 08:30-10:00.
func scenarioCatalog() *memoryCatalog {
	c := &memoryCatalog{
		courses: []models.Course{{ID: 1, Name: "Computer Science", DurationWeeks: 2}},
		groups:  []models.Group{{ID: 10, CourseID: 1, Name: "CS-1", StudentCount: 30}},
		modules: []models.Module{{ID: 100, CourseID: 1, Name: "Algorithms", Credits: 2, AllowedBuildingIDs: []int64{1}}},
		plans:   []models.ModulePlan{{ID: 500, CourseID: 1, ModuleID: 100, TargetHours: 10, IsActive: true}},
		teachers: []models.Teacher{
			{ID: 7, FullName: "Ada Lovelace"},
			{ID: 8, FullName: "Alan Turing"},
		},
		links:       []models.TeacherModule{{TeacherID: 7, ModuleID: 100}},
		lessonTypes: testLessonTypes(),
		slots: []models.TimeSlot{
			{ID: 1, StartTime: models.Clock(8, 30), EndTime: models.Clock(10, 0), SortOrder: 1, IsActive: true},
		},
		buildings: []models.Building{{ID: 1, Name: "Main"}, {ID: 2, Name: "Annex"}},
		rooms: []models.Room{
			{ID: 201, BuildingID: 1, Name: "Small", Capacity: 20},
			{ID: 202, BuildingID: 1, Name: "Hall A", Capacity: 40},
			{ID: 203, BuildingID: 2, Name: "Annex 1", Capacity: 100},
			{ID: 204, BuildingID: 1, Name: "Hall B", Capacity: 60},
		},
	}
	for weekday := 1; weekday <= 5; weekday++ {
		c.hours = append(c.hours, models.TeacherWorkingHour{
			ID: int64(weekday), TeacherID: 7, Weekday: weekday, StartTime: models.Clock(8, 0), EndTime: models.Clock(16, 0),
		})
	}
	return c
}

type timetableFixture struct {
	catalog   *memoryCatalog
	items     *memoryItems
	drafts    *memoryDrafts
	reference *ReferenceService
	rules     *RulesService
	db        *sqlx.DB
	mock      sqlmock.Sqlmock
}

func newTimetableFixture(t *testing.T, catalog *memoryCatalog) *timetableFixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	f := &timetableFixture{
		catalog: catalog,
		items:   &memoryItems{catalog: catalog},
		drafts:  &memoryDrafts{catalog: catalog},
		db:      sqlx.NewDb(db, "sqlmock"),
		mock:    mock,
	}
	f.reference = NewReferenceService(catalog, catalog, nil, 0, nil)
	f.rules = NewRulesService(catalog, catalog, f.items, f.drafts, f.reference, nil, nil)
	return f
}

// expectCommits queues n begin/commit pairs.
func (f *timetableFixture) expectCommits(n int) {
	for i := 0; i < n; i++ {
		f.mock.ExpectBegin()
		f.mock.ExpectCommit()
	}
}

func (f *timetableFixture) autogen() *AutogenService {
	return f.autogenWith(AutogenConfig{})
}

func (f *timetableFixture) autogenWith(cfg AutogenConfig) *AutogenService {
	svc := NewAutogenService(f.catalog, f.catalog, f.items, f.drafts, f.reference, f.db, nil, nil, nil, cfg)
	counter := 0
	svc.newBatch = func() string {
		counter++
		return "batch-" + strconv.Itoa(counter)
	}
	return svc
}

func (f *timetableFixture) aggregates() *AggregateService {
	return NewAggregateService(f.catalog, f.catalog, f.items, f.reference, nil)
}

func (f *timetableFixture) addItem(p models.Placement) models.ScheduleItem {
	item := &models.ScheduleItem{Placement: p}
	_ = f.items.Create(context.Background(), nil, item)
	return *item
}

func (f *timetableFixture) addDraft(p models.Placement) models.TeacherDraftItem {
	draft := &models.TeacherDraftItem{Placement: p, Status: models.DraftStatusDraft}
	_ = f.drafts.Create(context.Background(), nil, draft)
	return *draft
}

func lecture(date string, start, end models.ClockTime, groupID int64, teacherID, roomID *int64) models.Placement {
	return models.Placement{
		Date:         models.MustParseDate(date),
		StartTime:    start,
		EndTime:      end,
		GroupID:      groupID,
		ModuleID:     int64Ptr(100),
		TeacherID:    teacherID,
		RoomID:       roomID,
		LessonTypeID: ltLecture,
	}
}
