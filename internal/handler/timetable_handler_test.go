package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/service"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type scheduleStub struct {
	query   dto.WeekQuery
	upsert  dto.PlacementRequest
	deleted int64
	err     error
}

func (s *scheduleStub) ListWeek(_ context.Context, query dto.WeekQuery) ([]models.ScheduleItem, error) {
	s.query = query
	return []models.ScheduleItem{{ID: 1}}, s.err
}

func (s *scheduleStub) Validate(_ context.Context, req dto.PlacementRequest) (*models.ValidationResult, error) {
	return &models.ValidationResult{Errors: []string{}, Warnings: []string{"late"}}, s.err
}

func (s *scheduleStub) Upsert(_ context.Context, req dto.PlacementRequest) (*dto.UpsertResponse, error) {
	s.upsert = req
	if s.err != nil {
		return nil, s.err
	}
	id := int64(42)
	if req.ID != nil {
		id = *req.ID
	}
	return &dto.UpsertResponse{ID: id, Warnings: []string{}}, nil
}

func (s *scheduleStub) Delete(_ context.Context, id int64) error {
	s.deleted = id
	return s.err
}

func (s *scheduleStub) ClearWeek(_ context.Context, req dto.ClearWeekRequest) (*dto.ClearWeekResponse, error) {
	return &dto.ClearWeekResponse{Deleted: 3}, s.err
}

type exporterStub struct {
	query dto.ExportWeekQuery
}

func (s *exporterStub) ExportWeek(_ context.Context, query dto.ExportWeekQuery) (*service.ExportFile, error) {
	s.query = query
	return &service.ExportFile{Filename: "timetable-group-10-2025-03-10.csv", ContentType: "text/csv", Body: []byte("Date\n")}, nil
}

type draftStub struct {
	lockID int64
	lock   dto.DraftLockRequest
	err    error
}

func (s *draftStub) ListWeek(context.Context, dto.WeekQuery) ([]models.TeacherDraftItem, error) {
	return nil, s.err
}

func (s *draftStub) Validate(context.Context, dto.PlacementRequest) (*models.ValidationResult, error) {
	return &models.ValidationResult{}, s.err
}

func (s *draftStub) Upsert(context.Context, dto.PlacementRequest) (*dto.UpsertResponse, error) {
	return &dto.UpsertResponse{ID: 1}, s.err
}

func (s *draftStub) Delete(context.Context, int64) error { return s.err }

func (s *draftStub) SetDraftLock(_ context.Context, id int64, req dto.DraftLockRequest) error {
	s.lockID = id
	s.lock = req
	return s.err
}

func (s *draftStub) ClearWeek(context.Context, dto.ClearWeekRequest) (*dto.ClearWeekResponse, error) {
	return &dto.ClearWeekResponse{}, s.err
}

func (s *draftStub) RevalidateDrafts(context.Context, dto.RevalidateRequest) (*dto.RevalidateResponse, error) {
	return &dto.RevalidateResponse{Checked: 4, WithErrors: 1}, s.err
}

type autogenStub struct {
	week dto.AutogenWeekRequest
	err  error
}

func (s *autogenStub) AutogenWeek(_ context.Context, req dto.AutogenWeekRequest) (*dto.AutogenResponse, error) {
	s.week = req
	if s.err != nil {
		return nil, s.err
	}
	return &dto.AutogenResponse{Created: 5, Warnings: []string{}, GapDetails: []dto.GapDetail{}, WeeksProcessed: 1}, nil
}

func (s *autogenStub) AutogenMonth(context.Context, dto.AutogenMonthRequest) (*dto.AutogenResponse, error) {
	return &dto.AutogenResponse{WeeksProcessed: 5}, s.err
}

func (s *autogenStub) AutogenCourseRange(context.Context, dto.AutogenCourseRangeRequest) (*dto.AutogenResponse, error) {
	return &dto.AutogenResponse{WeeksProcessed: 2}, s.err
}

type publisherStub struct{}

func (publisherStub) PublishWeek(context.Context, dto.PublishWeekRequest) (*dto.PublishResponse, error) {
	return &dto.PublishResponse{Created: 2, Skipped: 1, Warnings: []string{"draft #2 not published"}}, nil
}

type catalogStub struct {
	courseID int64
}

func (s *catalogStub) ListBuildings(context.Context) ([]models.Building, error) {
	return []models.Building{{ID: 1, Name: "Main"}}, nil
}

func (s *catalogStub) CreateBuilding(_ context.Context, req dto.CreateBuildingRequest) (*models.Building, error) {
	return &models.Building{ID: 3, Name: req.Name}, nil
}

func (s *catalogStub) SetTravelTime(_ context.Context, req dto.TravelTimeRequest) (*models.BuildingTravel, error) {
	return &models.BuildingTravel{BuildingAID: 1, BuildingBID: 2, Minutes: req.Minutes}, nil
}

func (s *catalogStub) EnsureCoursePlans(_ context.Context, courseID int64) (*dto.EnsurePlansResponse, error) {
	s.courseID = courseID
	return &dto.EnsurePlansResponse{Created: 2}, nil
}

func (s *catalogStub) RecomputeAll(context.Context, sqlx.ExtContext) (service.AggregateResult, error) {
	return service.AggregateResult{PlansUpdated: 1}, nil
}

type apiFixture struct {
	router   *gin.Engine
	schedule *scheduleStub
	exporter *exporterStub
	drafts   *draftStub
	autogen  *autogenStub
	catalog  *catalogStub
}

func newAPIFixture() *apiFixture {
	gin.SetMode(gin.TestMode)
	f := &apiFixture{
		router:   gin.New(),
		schedule: &scheduleStub{},
		exporter: &exporterStub{},
		drafts:   &draftStub{},
		autogen:  &autogenStub{},
		catalog:  &catalogStub{},
	}
	RegisterRoutes(f.router.Group("/api/v1"), Handlers{
		Schedule: &ScheduleHandler{service: f.schedule, exporter: f.exporter},
		Drafts:   &DraftHandler{service: f.drafts},
		Autogen:  &AutogenHandler{autogen: f.autogen, publisher: publisherStub{}},
		Catalog:  &CatalogHandler{buildings: f.catalog, plans: f.catalog, aggregates: f.catalog},
		Metrics:  NewMetricsHandler(service.NewMetricsService()),
	})
	return f
}

func (f *apiFixture) do(method, path, body string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *appErrors.Error       `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestAutogenWeekDecodesDatesAndScope(t *testing.T) {
	f := newAPIFixture()

	w := f.do(http.MethodPost, "/api/v1/autogen/week", `{"weekStart":"2025-03-10","clearExisting":true,"groupId":10,"dayPreset":"MON_SAT"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2025-03-10", f.autogen.week.WeekStart.String())
	assert.True(t, f.autogen.week.ClearExisting)
	require.NotNil(t, f.autogen.week.GroupID)
	assert.Equal(t, int64(10), *f.autogen.week.GroupID)
	assert.Equal(t, dto.DayPresetMonSat, f.autogen.week.DayPreset)

	env := decode(t, w)
	assert.JSONEq(t, `{"created":5,"skipped":0,"warnings":[],"gapDetails":[],"weeksProcessed":1}`, string(env.Data))
	assert.Equal(t, float64(1), env.Meta["weeksProcessed"])
}

func TestAutogenRejectsMalformedPayload(t *testing.T) {
	f := newAPIFixture()

	w := f.do(http.MethodPost, "/api/v1/autogen/week", `{"weekStart":"10/03/2025"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, appErrors.ErrValidation.Code, decode(t, w).Error.Code)
}

func TestAutogenSerializationFailureIsConflict(t *testing.T) {
	f := newAPIFixture()
	f.autogen.err = appErrors.Clone(appErrors.ErrSerializationFailure, "")

	w := f.do(http.MethodPost, "/api/v1/autogen/week", `{"weekStart":"2025-03-10"}`)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "SERIALIZATION_FAILURE", decode(t, w).Error.Code)
}

func TestScheduleUpdateUsesPathID(t *testing.T) {
	f := newAPIFixture()

	w := f.do(http.MethodPut, "/api/v1/schedule/7", `{"id":99,"date":"2025-03-10","startTime":"08:30","endTime":"10:00","groupId":10,"lessonTypeId":1}`)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, f.schedule.upsert.ID)
	assert.Equal(t, int64(7), *f.schedule.upsert.ID)
	assert.Equal(t, models.Clock(8, 30), f.schedule.upsert.StartTime)

	w = f.do(http.MethodPut, "/api/v1/schedule/abc", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScheduleCreateIgnoresBodyID(t *testing.T) {
	f := newAPIFixture()

	w := f.do(http.MethodPost, "/api/v1/schedule", `{"id":99,"date":"2025-03-10","startTime":"08:30","endTime":"10:00","groupId":10,"lessonTypeId":1}`)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Nil(t, f.schedule.upsert.ID)
	assert.JSONEq(t, `{"id":42,"warnings":[]}`, string(decode(t, w).Data))
}

func TestScheduleRendersValidationFailure(t *testing.T) {
	f := newAPIFixture()
	failure := &models.ValidationFailure{Errors: []string{"room is already booked by published session #3"}}
	f.schedule.err = appErrors.WithDetails(appErrors.ErrValidation, failure.Error(), failure)

	w := f.do(http.MethodPost, "/api/v1/schedule", `{"date":"2025-03-10","startTime":"08:30","endTime":"10:00","groupId":10,"lessonTypeId":1}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body struct {
		Error struct {
			Code    string                   `json:"code"`
			Details models.ValidationFailure `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
	assert.Equal(t, failure.Errors, body.Error.Details.Errors)
}

func TestScheduleListBindsQuery(t *testing.T) {
	f := newAPIFixture()

	w := f.do(http.MethodGet, "/api/v1/schedule?weekStart=2025-03-12&groupId=10", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2025-03-12", f.schedule.query.WeekStart)
	require.NotNil(t, f.schedule.query.GroupID)
	assert.Equal(t, int64(10), *f.schedule.query.GroupID)
	assert.Nil(t, f.schedule.query.TeacherID)
}

func TestScheduleDeleteAndClear(t *testing.T) {
	f := newAPIFixture()

	w := f.do(http.MethodDelete, "/api/v1/schedule/5", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, int64(5), f.schedule.deleted)

	w = f.do(http.MethodPost, "/api/v1/schedule/clear", `{"weekStart":"2025-03-10"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deleted":3}`, string(decode(t, w).Data))

	f.schedule.err = appErrors.Clone(appErrors.ErrNotFound, "schedule item not found")
	w = f.do(http.MethodDelete, "/api/v1/schedule/6", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestScheduleExportStreamsAttachment(t *testing.T) {
	f := newAPIFixture()

	w := f.do(http.MethodGet, "/api/v1/schedule/export?weekStart=2025-03-10&groupId=10&format=csv", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="timetable-group-10-2025-03-10.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "Date\n", w.Body.String())
	assert.Equal(t, "csv", f.exporter.query.Format)
}

func TestDraftLockAndRevalidate(t *testing.T) {
	f := newAPIFixture()

	w := f.do(http.MethodPatch, "/api/v1/drafts/12/lock", `{"locked":true}`)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, int64(12), f.drafts.lockID)
	assert.True(t, f.drafts.lock.Locked)

	w = f.do(http.MethodPost, "/api/v1/drafts/revalidate", `{"weekStart":"2025-03-10"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"checked":4,"withErrors":1}`, string(decode(t, w).Data))

	f.drafts.err = appErrors.Clone(appErrors.ErrLocked, "draft is locked")
	w = f.do(http.MethodDelete, "/api/v1/drafts/12", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "LOCKED", decode(t, w).Error.Code)
}

func TestCatalogEndpoints(t *testing.T) {
	f := newAPIFixture()

	w := f.do(http.MethodPost, "/api/v1/courses/4/plans/ensure", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(4), f.catalog.courseID)

	w = f.do(http.MethodPost, "/api/v1/buildings", `{"name":"Lab"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"id":3,"name":"Lab"}`, string(decode(t, w).Data))

	w = f.do(http.MethodPut, "/api/v1/buildings/travel", `{"buildingAId":2,"buildingBId":1,"minutes":12}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"buildingAId":1,"buildingBId":2,"minutes":12}`, string(decode(t, w).Data))

	w = f.do(http.MethodPost, "/api/v1/aggregates/recompute", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"plansUpdated":1,"loadsUpdated":0}`, string(decode(t, w).Data))
}

func TestPublishWeekAndSnapshot(t *testing.T) {
	f := newAPIFixture()

	w := f.do(http.MethodPost, "/api/v1/publish/week", `{"weekStart":"2025-03-10"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"created":2,"skipped":1,"warnings":["draft #2 not published"]}`, string(decode(t, w).Data))

	w = f.do(http.MethodGet, "/api/v1/metrics/snapshot", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(decode(t, w).Data), `"draftsCreated":0`)
}
