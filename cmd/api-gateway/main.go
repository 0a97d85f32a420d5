package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/timetable-api/api/swagger"
	"github.com/noah-isme/timetable-api/internal/handler"
	internalmiddleware "github.com/noah-isme/timetable-api/internal/middleware"
	"github.com/noah-isme/timetable-api/internal/repository"
	"github.com/noah-isme/timetable-api/internal/service"
	"github.com/noah-isme/timetable-api/pkg/cache"
	"github.com/noah-isme/timetable-api/pkg/config"
	"github.com/noah-isme/timetable-api/pkg/database"
	"github.com/noah-isme/timetable-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/timetable-api/pkg/middleware/requestid"
)

// @title Timetable API
// @version 1.0.0
// @description Timetable engine: conflict checks, draft auto-generation and publishing.
// @BasePath /api/v1
// @schemes http

const slowRequestThreshold = 2 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx := context.Background()
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	metrics := service.NewMetricsService()
	cacheSvc := service.NewCacheService(newCacheRepository(ctx, cfg, logr), metrics, cfg.Scheduler.ReferenceCacheTTL, logr)

	courseRepo := repository.NewCourseRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	calendarRepo := repository.NewCalendarRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	itemRepo := repository.NewScheduleItemRepository(db)
	draftRepo := repository.NewDraftRepository(db)

	validate := validator.New()
	retries := cfg.Scheduler.TxMaxRetries

	reference := service.NewReferenceService(calendarRepo, roomRepo, cacheSvc, cfg.Scheduler.DefaultTravelMinutes, logr)
	rules := service.NewRulesService(courseRepo, teacherRepo, itemRepo, draftRepo, reference, metrics, logr)
	aggregates := service.NewAggregateService(courseRepo, teacherRepo, itemRepo, reference, logr)

	var hook service.RescheduleHook
	if cfg.Scheduler.RescheduleHook {
		hook = service.NewDraftRescheduler(courseRepo, draftRepo, rules, reference, db, retries, logr)
	}

	scheduleSvc := service.NewScheduleService(itemRepo, rules, aggregates, reference, hook, db, retries, validate, logr)
	draftSvc := service.NewDraftService(draftRepo, rules, db, retries, validate, logr)
	autogenSvc := service.NewAutogenService(courseRepo, teacherRepo, itemRepo, draftRepo, reference, db, validate, metrics, logr,
		service.AutogenConfig{TxMaxRetries: retries})
	publishSvc := service.NewPublishService(draftRepo, itemRepo, rules, aggregates, db, retries, metrics, logr)
	planSvc := service.NewPlanService(courseRepo, db, retries, cfg.Scheduler.HoursPerCredit, logr)
	buildingSvc := service.NewBuildingService(roomRepo, reference, db, retries, cfg.Scheduler.DefaultTravelMinutes, logr)
	exportSvc := service.NewExportService(itemRepo, courseRepo, teacherRepo, reference, validate, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, slowRequestThreshold))
	r.Use(corsmiddleware.New(corsmiddleware.Options{AllowedOrigins: cfg.CORS.AllowedOrigins, MaxAge: cfg.CORS.MaxAge}))
	r.Use(internalmiddleware.Metrics(metrics, "/metrics", "/health"))

	metricsHandler := handler.NewMetricsHandler(metrics)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(r.Group(cfg.APIPrefix), handler.Handlers{
		Schedule: handler.NewScheduleHandler(scheduleSvc, exportSvc),
		Drafts:   handler.NewDraftHandler(draftSvc),
		Autogen:  handler.NewAutogenHandler(autogenSvc, publishSvc),
		Catalog:  handler.NewCatalogHandler(buildingSvc, planSvc, aggregates),
		Metrics:  metricsHandler,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "prefix", cfg.APIPrefix)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

// newCacheRepository prefers Redis and falls back to an in-process cache.
func newCacheRepository(ctx context.Context, cfg *config.Config, logr *zap.Logger) service.CacheRepository {
	client, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, using local cache", zap.Error(err))
	}
	if client != nil {
		return repository.NewCacheRepository(client, logr)
	}
	return repository.NewLocalCacheRepository(cfg.Scheduler.ReferenceCacheTTL)
}
