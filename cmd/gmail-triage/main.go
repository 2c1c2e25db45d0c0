package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/gmail-triage/internal/core"
	"github.com/mikey/gmail-triage/internal/di"
	"github.com/mikey/gmail-triage/internal/ports"
	"go.uber.org/zap"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	runner ports.TriageRunner,
	classifier core.Classifier,
	cache core.ReputationCache,
) error {
	defer logger.Sync()

	// Start the poll loop
	if err := runner.Start(); err != nil {
		logger.Error("Failed to start triage loop", zap.Error(err))
		return err
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	// Stop the poll loop; the in-flight cycle finishes its current message
	if err := runner.Stop(); err != nil {
		logger.Error("Failed to stop triage loop", zap.Error(err))
	}

	// Close any resources that need closing
	if closer, ok := classifier.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close classifier", zap.Error(err))
		}
	}

	// Stop the cache if needed
	if stopper, ok := cache.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	logger.Info("Shutdown complete")
	return nil
}
