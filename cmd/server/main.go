package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/wednesdev-id/puller-chat-dashboard/internal/archive"
	"github.com/wednesdev-id/puller-chat-dashboard/internal/bridge"
	"github.com/wednesdev-id/puller-chat-dashboard/internal/cache"
	"github.com/wednesdev-id/puller-chat-dashboard/internal/config"
	"github.com/wednesdev-id/puller-chat-dashboard/internal/handlers"
	"github.com/wednesdev-id/puller-chat-dashboard/internal/logger"
	"github.com/wednesdev-id/puller-chat-dashboard/internal/server"
	"github.com/wednesdev-id/puller-chat-dashboard/internal/session"
)

// Global variables for configuration and services
var (
	cfg           *config.Config
	log           *logger.Logger
	store         *archive.Store
	manager       *session.Manager
	conversations *cache.Conversations
	messages      *cache.Messages
	errChan       = make(chan error, 2)
)

func main() {
	// Create a context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create a wait group for graceful shutdown
	var wg sync.WaitGroup

	// Initialize configuration and services
	if err := initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Initialization error: %v\n", err)
		os.Exit(1)
	}

	// Start the session state machine and the data caches
	startSessionMachinery(ctx, &wg)

	// Start the web server
	startWebServer(ctx, &wg)

	// Handle shutdown signals
	waitForShutdown(cancel, &wg)
}

func initialize() error {
	var err error

	// Load configuration
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log = logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info("Starting WhatsApp Chat Dashboard")

	// Open the local message archive
	store, err = archive.Open(cfg.Archive.Driver, cfg.Archive.DSN, log)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}

	// Bridge client and the connection state machine
	client := bridge.New(cfg.Bridge, log)
	presenter := &session.TerminalPresenter{
		DashboardURL: cfg.Bridge.DashboardURL,
		Log:          log,
	}
	manager = session.NewManager(client, cfg.Poll, cfg.Bridge.SessionName, presenter, nil, log)

	// Gated caches for live conversation and message data
	conversations = cache.NewConversations(client, manager, cfg.Cache.ConversationRefresh, nil, cfg.Bridge.DemoMode, log)
	messages = cache.NewMessages(client, manager, cfg.Cache.MessageRefresh, cfg.Cache.MessageFetchLimit, nil, cfg.Bridge.DemoMode, store, log)

	if cfg.Bridge.DemoMode {
		log.Warn("Demo mode enabled: serving fixture data, bridge calls disabled")
	}

	return nil
}

func startSessionMachinery(ctx context.Context, wg *sync.WaitGroup) {
	wg.Go(func() {
		defer func() {
			messages.Close()
			conversations.Close()
			manager.Close()
			if err := store.Close(); err != nil {
				log.Error("Error closing archive", err)
			}
			log.Info("Session machinery shutdown complete")
		}()

		log.Info("Starting session state machine...")
		manager.Start()
		conversations.Start()
		messages.Start()

		<-ctx.Done()
		log.Info("Session machinery shutting down...")
	})
}

func startWebServer(ctx context.Context, wg *sync.WaitGroup) {
	wg.Go(func() {
		log.Info("Starting HTTP server...")

		// Initialize HTTP handlers
		httpHandler := handlers.New(
			manager,
			conversations,
			messages,
			store,
			cfg.Bridge.DashboardURL,
			log,
		)

		// Initialize and start HTTP server
		httpServer := server.New(cfg, httpHandler, log)
		if err := httpServer.Start(cfg); err != nil {
			errChan <- fmt.Errorf("failed to start HTTP server: %w", err)
			return
		}

		// Keep the server running until shutdown
		<-ctx.Done()
		log.Info("HTTP server shutting down...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("Error during HTTP server shutdown", err)
		}
	})
}

func waitForShutdown(cancel context.CancelFunc, wg *sync.WaitGroup) {
	// Wait for either service to fail or for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		log.Error("Service failed", err)
	case <-sigChan:
		log.Info("Received shutdown signal")
	}

	// Cancel context to signal goroutines to shutdown
	cancel()

	// Wait for all goroutines to finish
	wg.Wait()

	log.Info("Application stopped")
}
