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

	"github.com/redis/go-redis/v9"

	"chatbot-backend/internal/config"
	"chatbot-backend/internal/database"
	"chatbot-backend/internal/handlers"
	"chatbot-backend/internal/middleware"
	"chatbot-backend/internal/repository"
	"chatbot-backend/internal/router"
	"chatbot-backend/internal/services"
	"chatbot-backend/internal/websocket"
)

func main() {
	log.Println("🚀 Starting Chatbot API...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize History Store ────
	var history services.HistoryStore
	var redisClient *redis.Client

	switch cfg.HistoryBackend {
	case config.BackendRedis:
		client, err := database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Fatalf("✗ Redis connection failed: %v", err)
		}
		defer client.Close()
		redisClient = client
		history = repository.NewRedisHistoryRepo(client)
		log.Println("✓ Redis history store connected")

	case config.BackendPostgres:
		pool, err := database.NewPostgresPool(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("✗ PostgreSQL connection failed: %v", err)
		}
		defer pool.Close()
		if err := database.RunMigrations(pool, cfg.MigrationsDir); err != nil {
			log.Fatalf("✗ Database migration failed: %v", err)
		}
		history = repository.NewPostgresHistoryRepo(pool)
		log.Println("✓ PostgreSQL history store connected")

	default:
		history = repository.NewMemoryHistoryRepo()
		log.Println("✓ In-memory history store ready")
	}

	// ──── Step 3: Initialize LLM Provider ────
	var completer services.Completer
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		gemini := services.NewGeminiService(cfg.GeminiAPIKey)
		defer gemini.Close()
		completer = gemini
	default:
		completer = services.NewOpenRouterService(cfg.OpenRouterAPIKey, cfg.OpenRouterBaseURL, cfg.LLMTimeout)
	}
	if cfg.ProviderAPIKey() == "" {
		log.Printf("⚠ No API key set for provider %q; /chat will fail until it is configured", cfg.LLMProvider)
	}
	log.Printf("✓ LLM provider %q configured", cfg.LLMProvider)

	// ──── Step 4: Initialize Auth, Hub and Services ────
	var jwtAuth *middleware.JWTAuth
	if cfg.JWTSecret != "" {
		jwtAuth = middleware.NewJWTAuth(cfg.JWTSecret)
		log.Println("✓ JWT guard enabled for /clear and /ws")
	}

	wsHub := websocket.NewHub(redisClient, jwtAuth)
	defer wsHub.Close()
	log.Println("✓ WebSocket hub started")

	chatService := services.NewChatService(completer, history, wsHub, cfg.LLMTimeout, cfg.LLMConcurrentRequests)
	chatHandler := handlers.NewChatHandler(chatService)

	var chatLimiter *middleware.RateLimiter
	if cfg.ChatRequestsPerMin > 0 {
		chatLimiter = middleware.NewRateLimiter(cfg.ChatRequestsPerMin, time.Minute)
		defer chatLimiter.Stop()
	}

	// ──── Step 5: Start HTTP Server ────
	r := router.New(chatHandler, wsHub, jwtAuth, chatLimiter)

	server := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		// Leaves room for a provider call that runs to its own deadline.
		WriteTimeout: cfg.LLMTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Chatbot API ready on http://localhost:%s", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
