package cli

import (
	"os"
	"path/filepath"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"compsight/server/internal/api"
	"compsight/server/internal/database"
	"compsight/server/internal/ingest"
)

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the valuation HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "port to listen on (default from config)")

	return cmd
}

func runServe(port string) error {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if port != "" {
		cfg.Server.Port = port
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return err
	}
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.RunMigrations(); err != nil {
		return err
	}

	store, err := openGuidelines(cfg, logger)
	if err != nil {
		return err
	}

	gormDB, err := database.OpenGorm(cfg.Database.Path)
	if err != nil {
		return err
	}
	queue := ingest.NewCandidateQueue(cfg.Ingest.QueueSize, logger)
	processor := ingest.NewBatchProcessor(gormDB, queue, cfg, logger)
	processor.Start()
	queue.Start()
	defer func() {
		queue.Close()
		processor.Stop()
	}()

	handler := api.NewHandler(db, store, queue, cfg, logger)

	router := gin.Default()
	router.Use(cors.Default())
	api.SetupRoutes(router, handler)

	logger.Infof("Starting server on port %s", cfg.Server.Port)
	return router.Run(":" + cfg.Server.Port)
}
