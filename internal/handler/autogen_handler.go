package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/service"
	"github.com/noah-isme/timetable-api/pkg/response"
)

type autogenRunner interface {
	AutogenWeek(ctx context.Context, req dto.AutogenWeekRequest) (*dto.AutogenResponse, error)
	AutogenMonth(ctx context.Context, req dto.AutogenMonthRequest) (*dto.AutogenResponse, error)
	AutogenCourseRange(ctx context.Context, req dto.AutogenCourseRangeRequest) (*dto.AutogenResponse, error)
}

type weekPublisher interface {
	PublishWeek(ctx context.Context, req dto.PublishWeekRequest) (*dto.PublishResponse, error)
}

// AutogenHandler exposes draft generation and publishing.
type AutogenHandler struct {
	autogen   autogenRunner
	publisher weekPublisher
}

// NewAutogenHandler constructs the handler.
func NewAutogenHandler(autogen *service.AutogenService, publisher *service.PublishService) *AutogenHandler {
	return &AutogenHandler{autogen: autogen, publisher: publisher}
}

// Week godoc
// @Summary Generate drafts for one week
// @Description Fills free slots of every in-scope group with drafts. Locked drafts survive clearExisting.
// @Tags Autogen
// @Accept json
// @Produce json
// @Param payload body dto.AutogenWeekRequest true "Week and scope"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /autogen/week [post]
func (h *AutogenHandler) Week(c *gin.Context) {
	var req dto.AutogenWeekRequest
	if !bindJSON(c, &req, "invalid autogen payload") {
		return
	}
	result, err := h.autogen.AutogenWeek(c.Request.Context(), req)
	respondRun(c, result, err)
}

// Month godoc
// @Summary Generate drafts for every week overlapping a month
// @Tags Autogen
// @Accept json
// @Produce json
// @Param payload body dto.AutogenMonthRequest true "Month and scope"
// @Success 200 {object} response.Envelope
// @Router /autogen/month [post]
func (h *AutogenHandler) Month(c *gin.Context) {
	var req dto.AutogenMonthRequest
	if !bindJSON(c, &req, "invalid autogen payload") {
		return
	}
	result, err := h.autogen.AutogenMonth(c.Request.Context(), req)
	respondRun(c, result, err)
}

// CourseRange godoc
// @Summary Generate drafts for the duration of a course
// @Tags Autogen
// @Accept json
// @Produce json
// @Param payload body dto.AutogenCourseRangeRequest true "Start date and course"
// @Success 200 {object} response.Envelope
// @Router /autogen/course-range [post]
func (h *AutogenHandler) CourseRange(c *gin.Context) {
	var req dto.AutogenCourseRangeRequest
	if !bindJSON(c, &req, "invalid autogen payload") {
		return
	}
	result, err := h.autogen.AutogenCourseRange(c.Request.Context(), req)
	respondRun(c, result, err)
}

// Publish godoc
// @Summary Publish the valid drafts of a week
// @Tags Autogen
// @Accept json
// @Produce json
// @Param payload body dto.PublishWeekRequest true "Week and teacher"
// @Success 200 {object} response.Envelope
// @Router /publish/week [post]
func (h *AutogenHandler) Publish(c *gin.Context) {
	var req dto.PublishWeekRequest
	if !bindJSON(c, &req, "invalid publish payload") {
		return
	}
	result, err := h.publisher.PublishWeek(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

func respondRun(c *gin.Context, result *dto.AutogenResponse, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, map[string]interface{}{"weeksProcessed": result.WeeksProcessed})
}
