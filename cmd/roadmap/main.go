package main

import (
	"fmt"
	"os"

	"github.com/gminsights/roadmap-api/internal/config"
	"github.com/gminsights/roadmap-api/internal/database"
	"github.com/gminsights/roadmap-api/internal/logger"
	"github.com/gminsights/roadmap-api/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Version = "dev"

var rootCmd = &cobra.Command{
	Use:     "roadmap",
	Short:   "GM Insights roadmap API and maintenance tools",
	Version: Version,
}

func main() {
	rootCmd.AddCommand(serveCmd, migrateCmd, migrateNotesCmd, exportCmd, createUserCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app is the wiring every command shares.
type app struct {
	cfg   *config.Config
	log   *zap.Logger
	db    *gorm.DB
	store *store.Store
}

func setup() (*app, error) {
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &app{cfg: cfg, log: log, db: db, store: store.New(db)}, nil
}

func (a *app) close() {
	_ = a.log.Sync()
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
