package main

import (
	"os"
	"path/filepath"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"compsight/server/config"
	"compsight/server/internal/api"
	"compsight/server/internal/database"
	"compsight/server/internal/guidelines"
	"compsight/server/internal/ingest"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		logger.WithError(err).Fatal("Failed to create database directory")
	}
	logger.Infof("Using database at: %s", cfg.Database.Path)

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	// Run database migrations
	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	// Load comp selection guidelines
	store, err := guidelines.NewStore(cfg.Guidelines.Path, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load guidelines")
	}

	// Start the candidate ingestion pipeline
	gormDB, err := database.OpenGorm(cfg.Database.Path)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open database for ingestion")
	}
	queue := ingest.NewCandidateQueue(cfg.Ingest.QueueSize, logger)
	processor := ingest.NewBatchProcessor(gormDB, queue, cfg, logger)
	processor.Start()
	queue.Start()
	defer func() {
		queue.Close()
		processor.Stop()
	}()

	// Initialize handler and router
	handler := api.NewHandler(db, store, queue, cfg, logger)

	router := gin.Default()
	router.Use(cors.Default())
	api.SetupRoutes(router, handler)

	logger.Infof("Starting server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
