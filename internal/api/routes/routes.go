package routes

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/aegis-risk/aegis/internal/api/handlers"
	"github.com/aegis-risk/aegis/internal/api/middleware"
	"github.com/aegis-risk/aegis/internal/config"
	"github.com/aegis-risk/aegis/internal/metrics"
	"github.com/aegis-risk/aegis/internal/models"
	"github.com/aegis-risk/aegis/internal/notify"
	"github.com/aegis-risk/aegis/internal/pipeline"
	"github.com/aegis-risk/aegis/internal/risk"
	"github.com/aegis-risk/aegis/internal/signals"
)

// Register wires up API routes and performs automatic migrations.
func Register(router *gin.Engine, db *gorm.DB, cfg config.Config) (*pipeline.Pipeline, error) {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Account{},
		&models.Transaction{},
		&models.Signal{},
		&models.RiskDecision{},
		&models.AuditLog{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	notifier := notify.New(cfg.AlertURLs)
	pipe := pipeline.New(db, risk.DefaultConfig(), cfg.VelocityThreshold, notifier)

	registry := prometheus.NewRegistry()
	metrics.Register(registry)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	router.GET("/api/v1/health", handlers.HealthHandler)

	api := router.Group("/api/v1")

	signalHandler := handlers.NewSignalHandler(signals.NewStore(db))
	decisionHandler := handlers.NewDecisionHandler(risk.NewStore(db))
	pipelineHandler := handlers.NewPipelineHandler(pipe)

	api.GET("/signals/recent", signalHandler.Recent)
	api.GET("/decisions/latest", decisionHandler.Latest)
	api.GET("/accounts/:id/decision", decisionHandler.ForAccount)

	triggers := api.Group("/pipeline")
	triggers.Use(middleware.RequireToken(cfg.APISecret))
	{
		triggers.POST("/signals", pipelineHandler.RunSignals)
		triggers.POST("/decisions", pipelineHandler.RunDecisions)
	}

	return pipe, nil
}
