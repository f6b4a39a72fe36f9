package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/brandforge/api/internal/client"
	"github.com/brandforge/api/internal/config"
	"github.com/brandforge/api/internal/handler"
	"github.com/brandforge/api/internal/middleware"
	"github.com/brandforge/api/internal/service"
	"github.com/brandforge/api/internal/store"
	ws "github.com/brandforge/api/internal/websocket"
	"github.com/brandforge/api/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Test Redis connection
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis not available: %v", err)
	}

	// Initialize Asynq client
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer asynqClient.Close()

	// Initialize validator
	validate := validator.New()

	// Initialize WebSocket hub
	hub := ws.NewHub()
	go hub.Run()

	// Initialize artifact storage (falls back to in-memory when S3 is not configured)
	var storage client.StorageClient
	storageConfigured := false
	s3, err := client.NewS3Client(&cfg.Storage)
	if err != nil {
		log.Printf("Warning: object storage unavailable, using in-memory store: %v", err)
		storage = client.NewMemoryStorage()
	} else {
		storage = s3
		storageConfigured = s3.IsConfigured()
	}

	// Initialize provider clients
	openai := client.NewChatClient("openai", &cfg.OpenAI)
	perplexity := client.NewChatClient("perplexity", &cfg.Perplexity)
	gemini := client.NewGeminiClient(&cfg.Gemini)
	renderer := client.NewRendererClient(&cfg.Renderer)

	// Initialize stores and services
	jobStore := store.NewRedisJobStore(redisClient)
	researchService := service.NewResearchService(perplexity)
	creativeService := service.NewCreativeResearchService(gemini)
	consolidatorService := service.NewConsolidatorService(openai)
	analysisService := service.NewAnalysisService(openai, gemini, perplexity)
	consensusService := service.NewConsensusService(openai)
	presentationService := service.NewPresentationService(openai, renderer)
	validationService := service.NewValidationService(openai)
	jobService := service.NewJobService(jobStore, storage, asynqClient)

	// Initialize handlers
	jobHandler := handler.NewJobHandler(jobService, validationService, storage, validate)

	// Initialize middleware
	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    1 * 1024 * 1024, // 1MB, questionnaires are small
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Root and health endpoints
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"service":   "brandforge-api",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"components": fiber.Map{
				"redis":      redisClient.Ping(c.Context()).Err() == nil,
				"openai":     openai.IsConfigured(),
				"gemini":     gemini.IsConfigured(),
				"perplexity": perplexity.IsConfigured(),
				"renderer":   renderer.IsConfigured(),
				"storage":    storageConfigured,
			},
		})
	})

	// API routes
	api := app.Group("/api")

	api.Post("/validate", rateLimiter.ValidateLimit(cfg.RateLimit.ValidatePerMin), jobHandler.Validate)

	jobs := api.Group("/jobs")
	jobs.Post("/", rateLimiter.SubmitLimit(cfg.RateLimit.SubmitPerHour), jobHandler.Submit)
	jobs.Get("/:jobId", jobHandler.Status)
	jobs.Get("/:jobId/analysis", jobHandler.Analysis)
	jobs.Get("/:jobId/research", jobHandler.Research)
	jobs.Get("/:jobId/download", jobHandler.Download)

	// WebSocket routes
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/jobs/:jobId", websocket.New(func(c *websocket.Conn) {
		jobID := c.Params("jobId")
		hub.HandleConnection(c, jobID)
	}))

	// Start Asynq worker server
	strategyWorker := worker.NewStrategyWorker(
		jobStore,
		storage,
		researchService,
		creativeService,
		consolidatorService,
		analysisService,
		consensusService,
		presentationService,
		hub,
	)
	go startWorkerServer(cfg, strategyWorker)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// Start server
	addr := ":" + cfg.Server.Port
	log.Printf("Server starting on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func startWorkerServer(cfg *config.Config, strategyWorker *worker.StrategyWorker) {
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				service.QueueStrategy: 10,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(service.TaskTypeStrategy, strategyWorker.ProcessTask)

	if err := srv.Run(mux); err != nil {
		log.Printf("Asynq worker error: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "SERVICE_ERROR",
			"message": message,
		},
	})
}
