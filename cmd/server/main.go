package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"talentloop/internal/api/routes"
	"talentloop/internal/background"
	"talentloop/internal/collab"
	"talentloop/internal/config"
	"talentloop/internal/lifecycle"
	"talentloop/internal/llm"
	"talentloop/internal/logging"
	"talentloop/internal/meetingbot"
	"talentloop/internal/notify"
	"talentloop/internal/rematch"
	"talentloop/internal/scoring"
	"talentloop/internal/store"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logging
	if err := logging.InitializeLogging(cfg); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.CloseLogging()

	logger := logging.GetGlobalLogger()
	logger.Info("Starting Talentloop Recruiter")

	// Record store
	var recordStore store.Store
	switch cfg.Store.Backend {
	case "redis":
		recordStore = store.NewRedisStore(cfg)
	default:
		recordStore = store.NewMemoryStore()
	}
	defer recordStore.Close()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := recordStore.Ping(pingCtx); err != nil {
		logger.Warn("Record store ping failed at startup", map[string]interface{}{
			"backend": cfg.Store.Backend,
			"error":   err.Error(),
		})
	}
	pingCancel()

	// Outbound collaborator guard
	guard := collab.NewGuard(cfg.HRFlow.RateLimit)

	// Collaborator clients
	scoringClient := scoring.NewHRFlowClient(cfg, guard)
	botClient := meetingbot.NewRecallClient(cfg, guard)
	mailer := notify.NewResendMailer(cfg, guard)

	// LLM manager and evaluator
	llmManager := llm.NewManager(cfg)
	if err := llmManager.Start(); err != nil {
		logger.Error("Failed to start LLM manager", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	evaluator := llm.NewEvaluator(llmManager)

	// Rematch resolver and lifecycle controller
	rematcher := rematch.NewResolver(cfg, scoringClient)
	controller := lifecycle.NewController(cfg, recordStore, scoringClient, botClient, evaluator, mailer, rematcher)

	// Background task manager with the bounded bot watcher
	logger.Info("Initializing background task manager")
	watcher := meetingbot.NewWatcher(botClient, meetingbot.DefaultRetryPolicy(cfg))
	taskManager := background.NewTaskManager(cfg, controller, watcher)
	ctx := context.Background()
	if err := taskManager.Start(ctx); err != nil {
		logger.Error("Failed to start task manager", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	// Setup routes
	routes.SetupRoutes(e, cfg, recordStore, controller, llmManager, taskManager)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Stop task manager first so in-flight watches finish cleanly
		logger.Info("Stopping background task manager...")
		if err := taskManager.Stop(shutdownCtx); err != nil {
			logger.Error("Error stopping task manager", map[string]interface{}{"error": err.Error()})
		}

		logger.Info("Stopping LLM manager...")
		if err := llmManager.Stop(); err != nil {
			logger.Error("Error stopping LLM manager", map[string]interface{}{"error": err.Error()})
		}

		logger.Info("Stopping HTTP server...")
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error shutting down server", map[string]interface{}{"error": err.Error()})
		}

		logger.Info("Server shutdown complete")
	}()

	// Start server
	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", map[string]interface{}{"address": address})

	if err := e.Start(address); err != nil {
		logger.Error("Server stopped", map[string]interface{}{"error": err.Error()})
	}
}
