package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"alfredoptarigan/candidate-scorer/internal/config"
	"alfredoptarigan/candidate-scorer/internal/handlers"
	"alfredoptarigan/candidate-scorer/internal/logger"
	"alfredoptarigan/candidate-scorer/internal/repositories"
	"alfredoptarigan/candidate-scorer/internal/services"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()

	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}

	candidateRepo := repositories.NewCandidateRepository(db)
	evalRepo := repositories.NewEvaluationRepository(db)

	storageService, err := services.NewStorageService(ctx, cfg.Storage)
	if err != nil {
		log.Fatal("failed to initialize storage", zap.Error(err))
	}

	geminiService, err := services.NewGeminiService(ctx, services.GeminiOptions{
		APIKey:      cfg.Gemini.APIKey,
		Model:       cfg.Gemini.Model,
		EmbedModel:  cfg.Gemini.EmbedModel,
		MaxAttempts: cfg.Gemini.MaxAttempts,
	}, log)
	if err != nil {
		log.Fatal("failed to initialize gemini", zap.Error(err))
	}

	cacheStore, err := services.NewCacheStore(cfg.Cache)
	if err != nil {
		log.Fatal("failed to initialize generation cache", zap.Error(err))
	}

	scoringService := services.NewPipeline(geminiService, cacheStore, cfg.Gemini.Temperature, cfg.Verification, log)

	// Qdrant is optional; without it the similarity search answers 503.
	var vectorStore services.VectorStore
	if cfg.Qdrant.URL != "" {
		vectorStore, err = services.NewQdrantService(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, log)
		if err != nil {
			log.Fatal("failed to initialize qdrant", zap.Error(err))
		}
		if err := vectorStore.InitCollection(ctx); err != nil {
			log.Fatal("failed to initialize qdrant collection", zap.Error(err))
		}
	}
	candidateIndex := services.NewCandidateIndex(vectorStore, geminiService, services.NewTextChunker(), log)

	publisher := services.NewNopPublisher()
	if cfg.Events.RabbitMQURL != "" {
		publisher, err = services.NewAMQPPublisher(cfg.Events.RabbitMQURL, cfg.Events.Exchange, log)
		if err != nil {
			log.Fatal("failed to initialize rabbitmq", zap.Error(err))
		}
	}
	defer publisher.Close()

	evaluatorService := services.NewEvaluatorService(
		evalRepo,
		candidateRepo,
		storageService,
		scoringService,
		candidateIndex,
		publisher,
		log,
	)

	worker := services.NewWorker(evalRepo, evaluatorService, services.WorkerOptions{
		Concurrency:  cfg.Worker.Concurrency,
		QueueSize:    cfg.Worker.QueueSize,
		PollInterval: cfg.Worker.PollInterval,
	}, log)
	worker.Start(ctx)

	scoreHandler := handlers.NewScoreHandler(evaluatorService, cfg.Storage.MaxFileSize, log)
	evaluateHandler := handlers.NewEvaluationHandler(evaluatorService, worker, cfg.Storage.MaxFileSize)
	resultHandler := handlers.NewResultHandler(evalRepo)
	candidateHandler := handlers.NewCandidateHandler(candidateRepo, evalRepo, candidateIndex)

	app := fiber.New(fiber.Config{
		AppName:      "Candidate Scorer API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1<<20,
		ErrorHandler: handlers.ErrorHandler(log),
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api.Post("/score", scoreHandler.HandleScore)
	api.Post("/evaluate", evaluateHandler.HandleEvaluate)
	api.Get("/result/:id", resultHandler.HandleGetResult)
	api.Get("/candidates", candidateHandler.HandleList)
	api.Get("/candidates/similar", candidateHandler.HandleSimilar)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Candidate Scorer API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/score",
				"POST /api/v1/evaluate",
				"GET /api/v1/result/:id",
				"GET /api/v1/candidates",
				"GET /api/v1/candidates/similar?q=",
				"GET /metrics",
			},
		})
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("shutting down server")
		worker.Stop()
		if err := app.Shutdown(); err != nil {
			log.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info("server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}
