package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/service"
	"github.com/noah-isme/timetable-api/pkg/response"
)

type buildingManager interface {
	ListBuildings(ctx context.Context) ([]models.Building, error)
	CreateBuilding(ctx context.Context, req dto.CreateBuildingRequest) (*models.Building, error)
	SetTravelTime(ctx context.Context, req dto.TravelTimeRequest) (*models.BuildingTravel, error)
}

type planEnsurer interface {
	EnsureCoursePlans(ctx context.Context, courseID int64) (*dto.EnsurePlansResponse, error)
}

type aggregateRefresher interface {
	RecomputeAll(ctx context.Context, exec sqlx.ExtContext) (service.AggregateResult, error)
}

// CatalogHandler manages buildings, travel times, module plans and cached hours.
type CatalogHandler struct {
	buildings  buildingManager
	plans      planEnsurer
	aggregates aggregateRefresher
}

// NewCatalogHandler constructs the handler.
func NewCatalogHandler(buildings *service.BuildingService, plans *service.PlanService, aggregates *service.AggregateService) *CatalogHandler {
	return &CatalogHandler{buildings: buildings, plans: plans, aggregates: aggregates}
}

// ListBuildings godoc
// @Summary List buildings
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /buildings [get]
func (h *CatalogHandler) ListBuildings(c *gin.Context) {
	buildings, err := h.buildings.ListBuildings(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, buildings)
}

// CreateBuilding godoc
// @Summary Create a building and seed default travel times
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body dto.CreateBuildingRequest true "Building"
// @Success 201 {object} response.Envelope
// @Router /buildings [post]
func (h *CatalogHandler) CreateBuilding(c *gin.Context) {
	var req dto.CreateBuildingRequest
	if !bindJSON(c, &req, "invalid building payload") {
		return
	}
	building, err := h.buildings.CreateBuilding(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, building)
}

// SetTravelTime godoc
// @Summary Set the travel time between two buildings
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body dto.TravelTimeRequest true "Travel time"
// @Success 200 {object} response.Envelope
// @Router /buildings/travel [put]
func (h *CatalogHandler) SetTravelTime(c *gin.Context) {
	var req dto.TravelTimeRequest
	if !bindJSON(c, &req, "invalid travel payload") {
		return
	}
	travel, err := h.buildings.SetTravelTime(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, travel)
}

// EnsurePlans godoc
// @Summary Create missing module plans of a course from module credits
// @Tags Catalog
// @Produce json
// @Param id path int true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{id}/plans/ensure [post]
func (h *CatalogHandler) EnsurePlans(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.plans.EnsureCoursePlans(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// RecomputeAggregates godoc
// @Summary Recompute scheduled hours of every plan and teacher load
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /aggregates/recompute [post]
func (h *CatalogHandler) RecomputeAggregates(c *gin.Context) {
	result, err := h.aggregates.RecomputeAll(c.Request.Context(), nil)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
