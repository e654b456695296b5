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

	"cryptolegal-backend/internal/config"
	"cryptolegal-backend/internal/database"
	"cryptolegal-backend/internal/handlers"
	"cryptolegal-backend/internal/ratelimit"
	"cryptolegal-backend/internal/router"
	"cryptolegal-backend/internal/services"
)

func main() {
	log.Println("🚀 Starting CryptoLegal Assistant Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize Redis (rate-limit counter store) ────
	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClient.Close()
	log.Println("✓ Redis connected")

	// ──── Step 3: Initialize Gemini Client ────
	assistant, err := services.NewAssistantService(
		context.Background(),
		cfg.GeminiAPIKey,
		cfg.GeminiModel,
		cfg.SystemPrompt,
		cfg.GeminiMaxOutputTokens,
		cfg.GeminiTemperature,
	)
	if err != nil {
		log.Fatalf("✗ Gemini client initialization failed: %v", err)
	}
	defer assistant.Close()
	log.Println("✓ Gemini client initialized")

	// ──── Initialize Rate Limiter ────
	limiter := ratelimit.NewRedisLimiter(
		redisClient,
		cfg.RateLimitRequests,
		time.Duration(cfg.RateLimitWindowSeconds)*time.Second,
	)
	log.Printf("✓ Rate limiter ready (%d req / %ds per client)", cfg.RateLimitRequests, cfg.RateLimitWindowSeconds)

	// ──── Initialize Handlers ────
	chatHandler := handlers.NewChatHandler(
		limiter,
		assistant,
		time.Duration(cfg.ChatTimeoutSeconds)*time.Second,
	)

	// ──── Step 4: Start HTTP Server ────
	r := router.New(chatHandler, cfg.FrontendURL)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
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

	log.Printf("✓ CryptoLegal Assistant Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  Chat: POST http://localhost:%s/api/v1/chat", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
