package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/avosuivi/actionplan-backend/internal/data/db"
	"github.com/avosuivi/actionplan-backend/internal/data/repos/conversation"
	"github.com/avosuivi/actionplan-backend/internal/data/repos/plan"
	apphttp "github.com/avosuivi/actionplan-backend/internal/http"
	"github.com/avosuivi/actionplan-backend/internal/http/handlers"
	"github.com/avosuivi/actionplan-backend/internal/observability"
	"github.com/avosuivi/actionplan-backend/internal/platform/envutil"
	"github.com/avosuivi/actionplan-backend/internal/platform/logger"
	"github.com/avosuivi/actionplan-backend/internal/services"
)

func main() {
	_ = godotenv.Load()

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

	// Tracing
	shutdownTracing := observability.Init(context.Background(), log, observability.Config{
		ServiceName: envutil.GetEnv("SERVICE_NAME", "actionplan-backend", log),
		Environment: envutil.GetEnv("APP_ENV", "development", log),
		Version:     os.Getenv("APP_VERSION"),
	})
	if shutdownTracing != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracing(ctx); err != nil {
				log.Warn("Tracing shutdown failed", "error", err)
			}
		}()
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	conversationRepo := conversation.NewRepo(thePG, log)
	sujetRepo := plan.NewSujetRepo(thePG, log)
	actionRepo := plan.NewActionRepo(thePG, log)

	// Services
	log.Info("Setting up Services from main...")
	conversationService := services.NewConversationService(thePG, log, conversationRepo)
	sujetService := services.NewSujetService(thePG, log, sujetRepo, conversationRepo)
	actionService := services.NewActionService(thePG, log, actionRepo, sujetRepo)

	// Handlers
	log.Info("Setting up handlers from main...")
	conversationHandler := handlers.NewConversationHandler(log, conversationService)
	sujetHandler := handlers.NewSujetHandler(log, sujetService)
	actionHandler := handlers.NewActionHandler(log, actionService)

	// Router
	log.Info("Setting up router from main...")
	server := apphttp.NewServer(apphttp.RouterConfig{
		Log:                 log,
		ConversationHandler: conversationHandler,
		SujetHandler:        sujetHandler,
		ActionHandler:       actionHandler,
		ServiceName:         envutil.GetEnv("SERVICE_NAME", "actionplan-backend", log),
	})

	port := envutil.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := server.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
