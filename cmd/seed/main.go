package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/aegis-risk/aegis/internal/config"
	"github.com/aegis-risk/aegis/internal/database"
	"github.com/aegis-risk/aegis/internal/ingestion"
	"github.com/aegis-risk/aegis/internal/logger"
	"github.com/aegis-risk/aegis/internal/models"
	"github.com/aegis-risk/aegis/internal/notify"
	"github.com/aegis-risk/aegis/internal/pipeline"
	"github.com/aegis-risk/aegis/internal/risk"
)

func main() {
	users := flag.Int("users", 10, "number of demo users to seed")
	txns := flag.Int("txns", 30, "number of demo transactions to generate")
	runPipeline := flag.Bool("run", true, "run the full pipeline after seeding")
	flag.Parse()

	logger.Init(true, os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Account{},
		&models.Transaction{},
		&models.Signal{},
		&models.RiskDecision{},
		&models.AuditLog{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}
	fmt.Println("✓ Database migrated successfully")

	ctx := context.Background()
	gen := ingestion.NewGenerator(db)

	var existing int64
	db.Model(&models.User{}).Count(&existing)
	if existing == 0 {
		if err := gen.SeedUsersAndAccounts(ctx, *users); err != nil {
			log.Fatal("Failed to seed users:", err)
		}
		fmt.Printf("✓ Seeded %d users with active wallet accounts\n", *users)
	} else {
		fmt.Printf("  Users already exist (%d), skipping seed\n", existing)
	}

	if err := gen.GenerateTransactions(ctx, *txns); err != nil {
		log.Fatal("Failed to generate transactions:", err)
	}
	fmt.Printf("✓ Generated %d demo transactions\n", *txns)

	if !*runPipeline {
		return
	}

	pipe := pipeline.New(db, risk.DefaultConfig(), cfg.VelocityThreshold, notify.New(cfg.AlertURLs))

	fmt.Println("Computing signals...")
	if err := pipe.RunSignalGeneration(ctx); err != nil {
		log.Fatal("Signal generation failed:", err)
	}

	fmt.Println("Computing risk decisions...")
	summary, err := pipe.RunDecisioning(ctx)
	if err != nil {
		log.Fatal("Decisioning failed:", err)
	}
	fmt.Printf("✓ Pipeline complete: %d assessed, %d persisted, %d suppressed\n",
		summary.Assessed, summary.Persisted, summary.Suppressed)
}
