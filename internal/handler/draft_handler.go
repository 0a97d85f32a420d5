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

type draftWriter interface {
	ListWeek(ctx context.Context, query dto.WeekQuery) ([]models.TeacherDraftItem, error)
	Validate(ctx context.Context, req dto.PlacementRequest) (*models.ValidationResult, error)
	Upsert(ctx context.Context, req dto.PlacementRequest) (*dto.UpsertResponse, error)
	Delete(ctx context.Context, id int64) error
	SetDraftLock(ctx context.Context, id int64, req dto.DraftLockRequest) error
	ClearWeek(ctx context.Context, req dto.ClearWeekRequest) (*dto.ClearWeekResponse, error)
	RevalidateDrafts(ctx context.Context, req dto.RevalidateRequest) (*dto.RevalidateResponse, error)
}

// DraftHandler exposes teacher draft items.
type DraftHandler struct {
	service draftWriter
}

// NewDraftHandler constructs handler.
func NewDraftHandler(svc *service.DraftService) *DraftHandler {
	return &DraftHandler{service: svc}
}

// ListWeek godoc
// @Summary List drafts of a week
// @Tags Drafts
// @Produce json
// @Param weekStart query string true "Any date of the week (yyyy-MM-dd)"
// @Param courseId query int false "Course ID"
// @Param groupId query int false "Group ID"
// @Param teacherId query int false "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /drafts [get]
func (h *DraftHandler) ListWeek(c *gin.Context) {
	var query dto.WeekQuery
	if !bindQuery(c, &query) {
		return
	}
	drafts, err := h.service.ListWeek(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, drafts)
}

// Validate godoc
// @Summary Check a draft placement and build its report
// @Tags Drafts
// @Accept json
// @Produce json
// @Param payload body dto.PlacementRequest true "Placement"
// @Success 200 {object} response.Envelope
// @Router /drafts/validate [post]
func (h *DraftHandler) Validate(c *gin.Context) {
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
// @Summary Create a draft
// @Tags Drafts
// @Accept json
// @Produce json
// @Param payload body dto.PlacementRequest true "Placement"
// @Success 201 {object} response.Envelope
// @Router /drafts [post]
func (h *DraftHandler) Create(c *gin.Context) {
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
// @Summary Update a draft
// @Tags Drafts
// @Accept json
// @Produce json
// @Param id path int true "Draft ID"
// @Param payload body dto.PlacementRequest true "Placement"
// @Success 200 {object} response.Envelope
// @Router /drafts/{id} [put]
func (h *DraftHandler) Update(c *gin.Context) {
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
// @Summary Delete an unlocked draft
// @Tags Drafts
// @Param id path int true "Draft ID"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /drafts/{id} [delete]
func (h *DraftHandler) Delete(c *gin.Context) {
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

// SetLock godoc
// @Summary Lock or unlock a draft
// @Tags Drafts
// @Accept json
// @Param id path int true "Draft ID"
// @Param payload body dto.DraftLockRequest true "Lock state"
// @Success 204
// @Router /drafts/{id}/lock [patch]
func (h *DraftHandler) SetLock(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.DraftLockRequest
	if !bindJSON(c, &req, "invalid lock payload") {
		return
	}
	if err := h.service.SetDraftLock(c.Request.Context(), id, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ClearWeek godoc
// @Summary Delete the unlocked drafts of a week
// @Tags Drafts
// @Accept json
// @Produce json
// @Param payload body dto.ClearWeekRequest true "Scope"
// @Success 200 {object} response.Envelope
// @Router /drafts/clear [post]
func (h *DraftHandler) ClearWeek(c *gin.Context) {
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

// Revalidate godoc
// @Summary Re-run the draft checks of a week and store the reports
// @Tags Drafts
// @Accept json
// @Produce json
// @Param payload body dto.RevalidateRequest true "Scope"
// @Success 200 {object} response.Envelope
// @Router /drafts/revalidate [post]
func (h *DraftHandler) Revalidate(c *gin.Context) {
	var req dto.RevalidateRequest
	if !bindJSON(c, &req, "invalid revalidate payload") {
		return
	}
	result, err := h.service.RevalidateDrafts(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
