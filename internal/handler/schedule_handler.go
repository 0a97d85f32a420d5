package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/service"
	"github.com/noah-isme/timetable-api/pkg/response"
)

type scheduleWriter interface {
	ListWeek(ctx context.Context, query dto.WeekQuery) ([]models.ScheduleItem, error)
	Validate(ctx context.Context, req dto.PlacementRequest) (*models.ValidationResult, error)
	Upsert(ctx context.Context, req dto.PlacementRequest) (*dto.UpsertResponse, error)
	Delete(ctx context.Context, id int64) error
	ClearWeek(ctx context.Context, req dto.ClearWeekRequest) (*dto.ClearWeekResponse, error)
}

type weekExporter interface {
	ExportWeek(ctx context.Context, query dto.ExportWeekQuery) (*service.ExportFile, error)
}

// ScheduleHandler exposes committed schedule items.
type ScheduleHandler struct {
	service  scheduleWriter
	exporter weekExporter
}

// NewScheduleHandler constructs handler.
func NewScheduleHandler(svc *service.ScheduleService, exporter *service.ExportService) *ScheduleHandler {
	return &ScheduleHandler{service: svc, exporter: exporter}
}

// ListWeek godoc
// @Summary List committed items of a week
// @Tags Schedule
// @Produce json
// @Param weekStart query string true "Any date of the week (yyyy-MM-dd)"
// @Param courseId query int false "Course ID"
// @Param groupId query int false "Group ID"
// @Param teacherId query int false "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /schedule [get]
func (h *ScheduleHandler) ListWeek(c *gin.Context) {
	var query dto.WeekQuery
	if !bindQuery(c, &query) {
		return
	}
	items, err := h.service.ListWeek(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items)
}

// Validate godoc
// @Summary Check a placement against the committed schedule
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.PlacementRequest true "Placement"
// @Success 200 {object} response.Envelope
// @Router /schedule/validate [post]
func (h *ScheduleHandler) Validate(c *gin.Context) {
	var req dto.PlacementRequest
	if !bindJSON(c, &req, "invalid placement payload") {
		return
	}
	result, err := h.service.Validate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Create godoc
// @Summary Create a committed item
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.PlacementRequest true "Placement"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /schedule [post]
func (h *ScheduleHandler) Create(c *gin.Context) {
	var req dto.PlacementRequest
	if !bindJSON(c, &req, "invalid placement payload") {
		return
	}
	req.ID = nil
	result, err := h.service.Upsert(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Update godoc
// @Summary Update a committed item
// @Tags Schedule
// @Accept json
// @Produce json
// @Param id path int true "Item ID"
// @Param payload body dto.PlacementRequest true "Placement"
// @Success 200 {object} response.Envelope
// @Router /schedule/{id} [put]
func (h *ScheduleHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.PlacementRequest
	if !bindJSON(c, &req, "invalid placement payload") {
		return
	}
	req.ID = &id
	result, err := h.service.Upsert(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Delete godoc
// @Summary Delete a committed item
// @Tags Schedule
// @Param id path int true "Item ID"
// @Success 204
// @Router /schedule/{id} [delete]
func (h *ScheduleHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ClearWeek godoc
// @Summary Delete the unlocked committed items of a week
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.ClearWeekRequest true "Scope"
// @Success 200 {object} response.Envelope
// @Router /schedule/clear [post]
func (h *ScheduleHandler) ClearWeek(c *gin.Context) {
	var req dto.ClearWeekRequest
	if !bindJSON(c, &req, "invalid clear payload") {
		return
	}
	result, err := h.service.ClearWeek(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Export godoc
// @Summary Download a week of a group or teacher
// @Tags Schedule
// @Produce text/csv
// @Produce application/pdf
// @Param weekStart query string true "Any date of the week (yyyy-MM-dd)"
// @Param groupId query int false "Group ID"
// @Param teacherId query int false "Teacher ID"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /schedule/export [get]
func (h *ScheduleHandler) Export(c *gin.Context) {
	var query dto.ExportWeekQuery
	if !bindQuery(c, &query) {
		return
	}
	file, err := h.exporter.ExportWeek(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
