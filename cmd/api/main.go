package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/aegis-risk/aegis/internal/config"
	"github.com/aegis-risk/aegis/internal/database"
	"github.com/aegis-risk/aegis/internal/logger"
	"github.com/aegis-risk/aegis/internal/scheduler"
	"github.com/aegis-risk/aegis/internal/server"
	"github.com/aegis-risk/aegis/internal/version"
)

func main() {
	// Setup logging with rotation
	logDir := filepath.Join("data", "logs")
	_ = os.MkdirAll(logDir, 0o755)

	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "aegis.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Log to both stdout and file
	logger.Init(cfg.Environment == "development", io.MultiWriter(os.Stdout, rotator))
	logger.Log().Infof("starting %s on version %s", version.Name, version.Full())

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}

	srv, err := server.New(db, cfg)
	if err != nil {
		log.Fatalf("build server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.PipelineCron != "" {
		sched, err := scheduler.New(cfg.PipelineCron, srv.Pipeline.RunAll)
		if err != nil {
			log.Fatalf("build scheduler: %v", err)
		}
		sched.Start()
		defer sched.Stop()
		logger.Log().Infof("pipeline scheduled with cron spec %q", cfg.PipelineCron)
	}

	logger.Log().Infof("listening on :%s", cfg.HTTPPort)
	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
