package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mikey/gmail-triage/internal/adapters/check"
	"github.com/mikey/gmail-triage/internal/core"
	"github.com/mikey/gmail-triage/internal/di"
	"go.uber.org/zap"
)

func main() {
	flags := di.ParseFlags()

	// Build the dependency injection container
	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the check
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run classifies one email and reports the verdict on stdout
func run(
	logger *zap.Logger,
	checker *check.Checker,
	classifier core.Classifier,
	flags *di.CLIFlags,
) error {
	defer logger.Sync()

	if _, err := checker.CheckFile(context.Background(), flags.InputFile); err != nil {
		return err
	}

	// Close any resources that need closing
	if closer, ok := classifier.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close classifier", zap.Error(err))
		}
	}

	return nil
}
