package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers groups the HTTP handlers mounted under the API prefix.
type Handlers struct {
	Schedule *ScheduleHandler
	Drafts   *DraftHandler
	Autogen  *AutogenHandler
	Catalog  *CatalogHandler
	Metrics  *MetricsHandler
}

// RegisterRoutes mounts the timetable API on api.
func RegisterRoutes(api gin.IRouter, h Handlers) {
	schedule := api.Group("/schedule")
	schedule.GET("", h.Schedule.ListWeek)
	schedule.POST("", h.Schedule.Create)
	schedule.POST("/validate", h.Schedule.Validate)
	schedule.POST("/clear", h.Schedule.ClearWeek)
	schedule.GET("/export", h.Schedule.Export)
	schedule.PUT("/:id", h.Schedule.Update)
	schedule.DELETE("/:id", h.Schedule.Delete)

	drafts := api.Group("/drafts")
	drafts.GET("", h.Drafts.ListWeek)
	drafts.POST("", h.Drafts.Create)
	drafts.POST("/validate", h.Drafts.Validate)
	drafts.POST("/clear", h.Drafts.ClearWeek)
	drafts.POST("/revalidate", h.Drafts.Revalidate)
	drafts.PUT("/:id", h.Drafts.Update)
	drafts.DELETE("/:id", h.Drafts.Delete)
	drafts.PATCH("/:id/lock", h.Drafts.SetLock)

	autogen := api.Group("/autogen")
	autogen.POST("/week", h.Autogen.Week)
	autogen.POST("/month", h.Autogen.Month)
	autogen.POST("/course-range", h.Autogen.CourseRange)
	api.POST("/publish/week", h.Autogen.Publish)

	api.GET("/buildings", h.Catalog.ListBuildings)
	api.POST("/buildings", h.Catalog.CreateBuilding)
	api.PUT("/buildings/travel", h.Catalog.SetTravelTime)
	api.POST("/courses/:id/plans/ensure", h.Catalog.EnsurePlans)
	api.POST("/aggregates/recompute", h.Catalog.RecomputeAggregates)

	api.GET("/metrics/snapshot", h.Metrics.Snapshot)
}
