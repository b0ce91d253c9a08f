package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/ElStudioBarberia/course-service/internal/auth"
	"github.com/ElStudioBarberia/course-service/internal/config"
	"github.com/ElStudioBarberia/course-service/internal/events"
	"github.com/ElStudioBarberia/course-service/internal/handlers"
	"github.com/ElStudioBarberia/course-service/internal/identity"
	"github.com/ElStudioBarberia/course-service/internal/repositories/postgres"
	"github.com/ElStudioBarberia/course-service/internal/services"
	"github.com/ElStudioBarberia/course-service/internal/storage/minio"
	"github.com/ElStudioBarberia/course-service/internal/utils"
	"github.com/ElStudioBarberia/course-service/internal/validator"
	"github.com/ElStudioBarberia/course-service/pkg"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	slogLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	logger := utils.NewSlogLogger(slogLogger)

	// Initialize database
	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize Redis (if configured)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			log.Printf("Warning: Failed to initialize Redis: %v", err)
		}
	}

	// Initialize repositories
	repo := postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{
		DB:          db,
		RedisClient: redisClient,
	})
	if err := repo.Initialize(); err != nil {
		log.Fatalf("Failed to initialize repositories: %v", err)
	}

	// Initialize object storage
	storageClient, err := minio.NewClient(cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize object storage: %v", err)
	}

	// Initialize domain event publisher and the in-process consumer side
	var publisher *events.Publisher
	var busSubscriber message.Subscriber
	if len(cfg.KafkaBrokers) > 0 {
		publisher, err = events.NewKafka(cfg.KafkaBrokers, logger)
		if err != nil {
			log.Fatalf("Failed to initialize kafka publisher: %v", err)
		}
		busSubscriber, err = events.NewKafkaSubscriber(cfg.KafkaBrokers, "course-service")
		if err != nil {
			log.Fatalf("Failed to initialize kafka subscriber: %v", err)
		}
	} else {
		var bus *gochannel.GoChannel
		publisher, bus = events.NewGoChannel(logger)
		busSubscriber = bus
	}

	// Initialize identity client and session plumbing
	identityClient := identity.NewCasdoor(cfg.Casdoor, cfg.Google)
	sessionStore := auth.NewStore()
	navigator := auth.NewNavState()
	resolver := auth.NewResolver(repo.Profile())

	listener := auth.NewListener(identityClient, sessionStore, resolver, navigator, logger)
	listenerCtx, cancelListener := context.WithCancel(context.Background())
	listener.Start(listenerCtx)

	// Admin habilitado/role flips must reach an already-resolved session
	// without forcing the user back through login.
	refresher := auth.NewRefresher(sessionStore, resolver, busSubscriber, logger)
	if err := refresher.Start(listenerCtx); err != nil {
		log.Fatalf("Failed to start session refresher: %v", err)
	}

	authManager := auth.NewManager(identityClient, repo.Profile(), sessionStore, navigator, publisher, logger, cfg.AppBaseURL)

	// Initialize services and handlers
	serviceManager := services.NewServiceManager(repo, db, storageClient, publisher, logger)
	handlerManager := handlers.NewHandlerManager(serviceManager, authManager, sessionStore, storageClient, validator.NewValidator(), logger)

	// Setup Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handlers.SetupMiddleware(router, logger)
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	// Stop the session listener and refresher before tearing down their
	// dependencies
	listener.Stop()
	cancelListener()
	refresher.Stop()

	if err := busSubscriber.Close(); err != nil {
		log.Printf("Failed to close event subscriber: %v", err)
	}
	if err := publisher.Close(); err != nil {
		log.Printf("Failed to close event publisher: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}

	if redisClient != nil {
		redisClient.Close()
	}

	logger.Info("Server exited")
}
