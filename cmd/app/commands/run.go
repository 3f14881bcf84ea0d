package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/allisson/badgereader/internal/app"
	"github.com/allisson/badgereader/internal/config"
)

// shutdownTimeout bounds the graceful stop of the status server.
const shutdownTimeout = 10 * time.Second

// Runnable is a long-running component driven by the run command.
type Runnable interface {
	Start(ctx context.Context) error
}

// BootRunnable is a Runnable that must boot before it starts.
type BootRunnable interface {
	Runnable
	Boot(ctx context.Context) error
}

// Stoppable is a server that shuts down gracefully.
type Stoppable interface {
	Runnable
	Shutdown(ctx context.Context) error
}

// RunReader loads configuration, builds the reader loop and the optional status
// server, and runs them until SIGINT/SIGTERM or a fatal error.
func RunReader(ctx context.Context, version string) error {
	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Set Gin mode based on log level
	gin.SetMode(cfg.GetGinMode())

	// Create DI container
	container := app.NewContainer(cfg)

	// Get logger from container
	logger := container.Logger()
	logger.Info("starting badge reader", slog.String("version", version))

	// Ensure cleanup on exit
	defer closeContainer(container, logger)

	// Get reader loop from container (this initializes the scan pipeline)
	loop, err := container.ReaderLoop()
	if err != nil {
		return fmt.Errorf("failed to initialize reader loop: %w", err)
	}

	// Get status server from container, nil when metrics are disabled
	statusServer, err := container.StatusServer()
	if err != nil {
		return fmt.Errorf("failed to initialize status server: %w", err)
	}

	// Setup graceful shutdown
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var server Stoppable
	if statusServer != nil {
		server = statusServer
	}
	return runComponents(ctx, logger, loop, server)
}

// runComponents boots and runs loop alongside server. It returns nil when ctx
// is cancelled, or the first component error otherwise.
func runComponents(ctx context.Context, logger *slog.Logger, loop BootRunnable, server Stoppable) error {
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		if err := loop.Boot(groupCtx); err != nil {
			return fmt.Errorf("reader boot failed: %w", err)
		}
		if err := loop.Start(groupCtx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("reader loop error: %w", err)
		}
		return nil
	})

	if server != nil {
		group.Go(func() error {
			if err := server.Start(groupCtx); err != nil {
				return fmt.Errorf("status server error: %w", err)
			}
			return nil
		})

		group.Go(func() error {
			<-groupCtx.Done()

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer shutdownCancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("status server shutdown: %w", err)
			}
			return nil
		})
	}

	err := group.Wait()
	if ctx.Err() != nil {
		logger.Info("shutdown signal received")
	}
	return err
}
