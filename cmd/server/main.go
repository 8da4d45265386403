package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	config "github.com/maheshrc27/postgen/configs"
	"github.com/maheshrc27/postgen/internal/api/handlers"
	"github.com/maheshrc27/postgen/internal/api/middleware"
	job "github.com/maheshrc27/postgen/internal/jobs"
	"github.com/maheshrc27/postgen/internal/publisher"
	"github.com/maheshrc27/postgen/internal/queue"
	"github.com/maheshrc27/postgen/internal/repository"
	"github.com/maheshrc27/postgen/internal/service"
	"github.com/robfig/cron"
	"github.com/sashabaranov/go-openai"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	publicationRepo := repository.NewPublicationRepository(db)
	if err := publicationRepo.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to prepare publications table: %v", err)
	}

	httpClient := &http.Client{Timeout: 2 * time.Minute}

	var (
		chat   service.ChatCompleter
		images service.ImageCreator
	)
	if cfg.OpenAI.APIKey != "" {
		openaiCfg := openai.DefaultConfig(cfg.OpenAI.APIKey)
		if cfg.OpenAI.BaseURL != "" {
			openaiCfg.BaseURL = cfg.OpenAI.BaseURL
		}
		openaiCfg.HTTPClient = httpClient
		llm := openai.NewClientWithConfig(openaiCfg)
		chat, images = llm, llm
	} else {
		log.Println("Warning: OPENAI_API_KEY is not set, generation is disabled")
	}

	var encoder service.VideoEncoder
	if ffmpeg, err := service.NewFFmpegEncoder(cfg.FFmpegPath); err != nil {
		log.Printf("Warning: video derivation is disabled: %v", err)
	} else {
		encoder = ffmpeg
	}

	var store service.ObjectStore
	if cfg.R2.Enabled() {
		r2Service, err := service.NewR2Service(ctx, cfg.R2)
		if err != nil {
			log.Printf("Warning: R2 is unavailable: %v", err)
		} else {
			store = r2Service
		}
	}

	contentService := service.NewContentService(chat, cfg.OpenAI.Model)
	mediaService := service.NewMediaService(*cfg, images, encoder, store, httpClient)
	registry := publisher.NewDefaultRegistry(*cfg, httpClient,
		publisher.MediaDir(mediaService.MediaDir()), publisher.VideoDir(mediaService.VideoDir()))

	state := queue.NewState()
	queueW := queue.NewQueue(publicationRepo, registry, state, cfg.QueueInterval, cfg.PublishTimeout)

	var (
		asynqClient *asynq.Client
		asynqServer *asynq.Server
		notifier    service.PublicationNotifier
	)
	if cfg.RedisURI != "" {
		redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
		asynqClient = asynq.NewClient(redisConn)
		notifier = queue.NewNotifier(asynqClient)

		asynqServer = asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 1,
		})
		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypeProcessPublication, queueW.HandleProcessPublicationTask)

		go func() {
			log.Println("Starting the Asynq server...")
			if err := asynqServer.Run(mux); err != nil {
				log.Printf("Asynq server stopped: %v", err)
			}
		}()
	}

	publicationService := service.NewPublicationService(publicationRepo, registry, notifier, state)

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    10 * 1024 * 1024, // 10 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	app.Static("/static", cfg.StaticDir)

	health := handlers.NewHealthHandler(registry.Platforms())
	app.Get("/", health.Root)
	app.Get("/health", health.Health)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	api := app.Group("/api")
	api.Use(authMiddleware.OptionalAuth())

	content := handlers.NewContentHandler(contentService, mediaService)
	api.Post("/generate", content.Generate)

	publication := handlers.NewPublicationHandler(publicationService)
	api.Post("/publish", publication.Publish)
	api.Get("/publications", publication.ListPublications)
	api.Get("/publications/:id", publication.GetPublication)
	api.Get("/queue/status", publication.QueueStatus)
	api.Post("/queue/status", publication.UpdateQueue)

	// cron jobs
	leaseJob := job.NewLeaseRecoveryJob(queueW, cfg.PublicationLease)

	c := cron.New()
	c.AddFunc("@every 1m", leaseJob.RequeueStale)
	c.Start()

	go queueW.Run(ctx)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Printf("Server is running on http://localhost:%s", cfg.Port)

	gracefulShutdown(app, db, cancel, c, asynqClient, asynqServer)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB, stopWorker context.CancelFunc, c *cron.Cron, client *asynq.Client, server *asynq.Server) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Failed to shut down server: %v", err)
	}

	stopWorker()
	c.Stop()
	if server != nil {
		server.Shutdown()
	}
	if client != nil {
		client.Close()
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
