package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"aula-backend/internal/config"
	"aula-backend/internal/database"
	"aula-backend/internal/events"
	"aula-backend/internal/handlers"
	"aula-backend/internal/middleware"
	"aula-backend/internal/remote"
	"aula-backend/internal/repository"
	"aula-backend/internal/router"
	"aula-backend/internal/services"
	"aula-backend/internal/websocket"
)

func main() {
	log.Println("🚀 Starting Aula Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClients.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Step 5: Initialize Conferencing Provider Client ────
	collabClient, err := remote.New(remote.Config{
		Kind:     cfg.CollabKind,
		BaseURL:  cfg.CollabURL,
		APIKey:   cfg.CollabAPIKey,
		Username: cfg.CollabUsername,
		Password: cfg.CollabPassword,
	})
	if err != nil {
		log.Fatalf("✗ Conferencing client initialization failed: %v", err)
	}
	log.Printf("✓ Conferencing client initialized (%s)", cfg.CollabKind)

	// One verification at startup. A failed check is a warning, not fatal:
	// the provider may recover, and the deletion sweep retries anyway.
	verifyCtx, cancelVerify := context.WithTimeout(context.Background(), 10*time.Second)
	verifier := remote.NewVerifier(collabClient)
	if verifier.Verified(verifyCtx) {
		log.Println("✓ Conferencing provider configuration verified")
	} else {
		log.Printf("⚠ Conferencing provider configuration check failed: %v", verifier.Err())
	}
	cancelVerify()

	// ──── Initialize Repositories ────
	linkRepo := repository.NewSessionLinkRepo(pool)
	recordingInfoRepo := repository.NewRecordingInfoRepo(pool)
	activityRepo := repository.NewActivityRepo(pool)
	groupRepo := repository.NewGroupRepo(pool)

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	eventBus := events.NewPublisher(redisClients.Cache)
	linkService := services.NewLinkService(linkRepo, activityRepo, groupRepo, collabClient, cfg.Simulation())
	deletionService := services.NewDeletionService(linkRepo, recordingInfoRepo, collabClient)
	recordingService := services.NewRecordingService(linkService, recordingInfoRepo, collabClient, eventBus)

	// ──── Initialize Handlers ────
	linkHandler := handlers.NewLinkHandler(linkService, deletionService, activityRepo, groupRepo)
	recordingHandler := handlers.NewRecordingHandler(recordingService, activityRepo, groupRepo)

	// ──── Step 6: Start Deletion Retry Sweep ────
	cleanupScheduler := services.NewCleanupScheduler(deletionService, time.Duration(cfg.CleanupIntervalMinutes)*time.Minute)
	cleanupScheduler.Start()
	log.Printf("✓ Deletion retry sweep started (every %dm)", cfg.CleanupIntervalMinutes)

	// ──── Step 7: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.PubSub, cfg.JWTSecret)
	log.Println("✓ WebSocket hub started")

	// ──── Step 8: Start HTTP Server ────
	r := router.New(
		jwtAuth,
		linkHandler,
		recordingHandler,
		collabClient,
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		cleanupScheduler.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Aula Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
