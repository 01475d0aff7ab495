package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/nagarik-sewa/backend/internal/config"
	"github.com/nagarik-sewa/backend/internal/http/handlers"
	"github.com/nagarik-sewa/backend/internal/http/middleware"
	"github.com/nagarik-sewa/backend/internal/service"
	"github.com/nagarik-sewa/backend/internal/store"

	_ "github.com/nagarik-sewa/backend/docs"
)

func Router(cfg config.Config, visitStore store.VisitStore, dir service.Directory, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Admin-Key", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Visits:    service.NewVisitService(visitStore, dir, logger),
		Analytics: service.NewAnalyticsService(visitStore, dir, logger),
		Dir:       dir,
		Store:     visitStore,
		Validator: validator.New(),
		Logger:    logger,
		AdminKey:  cfg.AdminKey,
	}

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")

	visit := api.Group("/visit")
	{
		visit.POST("/start-timer", h.StartTimer)
		visit.POST("/end-visit", h.EndVisit)
		visit.POST("/rating", h.SubmitRating)
		visit.GET("/visit-status/:id", h.VisitStatus)
		visit.GET("/feedback-questions", h.FeedbackQuestions)
		visit.GET("/wait-reasons", h.WaitReasons)
	}
	visit.GET("/active-visits", middleware.AdminKey(cfg.AdminKey), h.ActiveVisits)

	analytics := api.Group("/analytics")
	{
		analytics.GET("/office/:id", h.OfficeAnalytics)
		analytics.GET("/rankings/:scope", h.Rankings)
		analytics.POST("/compare", h.Compare)
		analytics.GET("/dashboard", h.Dashboard)
	}

	selection := api.Group("/selection")
	{
		selection.GET("/districts", h.Districts)
		selection.GET("/offices", h.Offices)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
