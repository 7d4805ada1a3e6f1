package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/modelarena/arena-api/internal/config"
	"github.com/modelarena/arena-api/internal/database"
	"github.com/modelarena/arena-api/internal/handler"
	"github.com/modelarena/arena-api/internal/middleware"
	"github.com/modelarena/arena-api/internal/models"
	"github.com/modelarena/arena-api/internal/repository"
	"github.com/modelarena/arena-api/internal/router"
	"github.com/modelarena/arena-api/internal/secrets"
	"github.com/modelarena/arena-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := connectDatabase(cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Model{},
		&models.Criterion{},
		&models.Run{},
		&models.RunModel{},
		&models.RunCriterion{},
		&models.Response{},
		&models.ScoringSession{},
		&models.Score{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	keystore, err := secrets.New(cfg.MasterKey)
	if err != nil {
		log.Fatalf("failed to initialise keystore: %v", err)
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	modelRepo := repository.NewModelRepository(db)
	criterionRepo := repository.NewCriterionRepository(db)
	runRepo := repository.NewRunRepository(db)
	responseRepo := repository.NewResponseRepository(db)
	scoringRepo := repository.NewScoringRepository(db)

	ctx, stopEvents := context.WithCancel(context.Background())
	defer stopEvents()

	eventService := service.NewRunEventService(natsConn, "", logger)
	eventService.Start(ctx)

	modelService := service.NewModelService(modelRepo, keystore, validate, logger)
	criterionService := service.NewCriterionService(criterionRepo, validate, logger)
	runService := service.NewRunService(runRepo, responseRepo, keystore, eventService, nil, validate, logger, service.RunExecutorConfig{
		CallTimeout:  cfg.CallTimeout,
		MaxInFlight:  cfg.MaxInFlight,
		FallbackKeys: cfg.FallbackKeys(),
	})
	scoringService := service.NewScoringService(scoringRepo, runRepo, responseRepo, validate, logger)
	resultsService := service.NewResultsService(runRepo, scoringRepo, logger)
	importService := service.NewImportService(modelService, criterionService, logger)

	modelHandler := handler.NewModelHandler(modelService, logger)
	criterionHandler := handler.NewCriterionHandler(criterionService, logger)
	runHandler := handler.NewRunHandler(runService, eventService, logger)
	scoringHandler := handler.NewScoringHandler(scoringService, logger)
	resultsHandler := handler.NewResultsHandler(resultsService, logger)
	importHandler := handler.NewImportHandler(importService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ModelHandler:     modelHandler,
		CriterionHandler: criterionHandler,
		RunHandler:       runHandler,
		ScoringHandler:   scoringHandler,
		ResultsHandler:   resultsHandler,
		ImportHandler:    importHandler,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func connectDatabase(cfg config.Config) (*gorm.DB, error) {
	if cfg.DatabaseURL != "" {
		return database.ConnectPostgres(cfg.DatabaseURL)
	}
	return database.ConnectSQLite(cfg.SQLitePath)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
