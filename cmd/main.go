package main

import (
	"fmt"
	"os"

	"github.com/sonahq/sona-backend/internal/app"
	"github.com/sonahq/sona-backend/internal/db"
	"github.com/sonahq/sona-backend/internal/handlers"
	"github.com/sonahq/sona-backend/internal/llm"
	"github.com/sonahq/sona-backend/internal/logger"
	"github.com/sonahq/sona-backend/internal/repos"
	"github.com/sonahq/sona-backend/internal/server"
	"github.com/sonahq/sona-backend/internal/services"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	cfg := app.LoadConfig(log)

	// Database
	dbService, err := db.New(cfg.DBDriver, cfg.DBDSN, log)
	if err != nil {
		log.Error("Database init failed", "error", err)
		os.Exit(1)
	}
	if cfg.DBAutoMigrate {
		if err := dbService.AutoMigrateAll(); err != nil {
			log.Error("Auto migration failed", "error", err)
			os.Exit(1)
		}
	}
	conn := dbService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	cloneRepo := repos.NewCloneRepo(conn, log)
	sampleRepo := repos.NewSampleRepo(conn, log)
	versionRepo := repos.NewDNAVersionRepo(conn, log)
	sourceRepo := repos.NewMergeSourceRepo(conn, log)
	contentRepo := repos.NewContentRepo(conn, log)
	methodologyRepo := repos.NewMethodologyRepo(conn, log)

	// Providers
	log.Info("Setting up provider registry from main...")
	registry := llm.NewRegistry(cfg.Credentials, log)

	// Services
	log.Info("Setting up Services from main...")
	cloneService := services.NewCloneService(conn, log, cloneRepo, cfg.RetentionDays)
	sampleService := services.NewSampleService(conn, log, cloneRepo, sampleRepo)
	dnaService := services.NewDNAService(conn, log, cloneRepo, sampleRepo, versionRepo, methodologyRepo, registry)
	mergeService := services.NewMergeService(conn, log, cloneRepo, versionRepo, sourceRepo, registry)
	contentService := services.NewContentService(conn, log, cloneRepo, versionRepo, contentRepo, registry)
	scoringService := services.NewScoringService(conn, log, contentRepo, versionRepo, registry)
	methodologyService := services.NewMethodologyService(conn, log, methodologyRepo)
	providerService := services.NewProviderService(log, registry)

	// Handlers
	log.Info("Setting up Handlers from main...")
	cloneHandler := handlers.NewCloneHandler(cloneService)
	sampleHandler := handlers.NewSampleHandler(sampleService)
	dnaHandler := handlers.NewDNAHandler(dnaService)
	mergeHandler := handlers.NewMergeHandler(mergeService)
	contentHandler := handlers.NewContentHandler(contentService, scoringService)
	methodologyHandler := handlers.NewMethodologyHandler(methodologyService)
	providerHandler := handlers.NewProviderHandler(providerService)

	// Router
	router := server.NewRouter(server.RouterConfig{
		CloneHandler:       cloneHandler,
		SampleHandler:      sampleHandler,
		DNAHandler:         dnaHandler,
		MergeHandler:       mergeHandler,
		ContentHandler:     contentHandler,
		MethodologyHandler: methodologyHandler,
		ProviderHandler:    providerHandler,
		AllowOrigins:       cfg.AllowOrigins,
	})

	log.Info("Starting server...", "port", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}
