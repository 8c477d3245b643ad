package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lcalzada-xor/netpath/internal/app"
	"github.com/lcalzada-xor/netpath/internal/config"
	"github.com/lcalzada-xor/netpath/internal/telemetry"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load("netpath", os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	// Setup Structured Logging
	logger := telemetry.NewLogger(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(logger)

	if cfg.Trace {
		shutdownTracer, err := telemetry.InitTracer("netpath")
		if err != nil {
			slog.Error("Failed to init tracer", "error", err)
		} else {
			defer func() {
				if err := shutdownTracer(context.Background()); err != nil {
					slog.Error("Failed to shutdown tracer", "error", err)
				}
			}()
		}
	}

	application, err := app.New(cfg, logger)
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		return 1
	}
	defer func() {
		if err := application.Close(); err != nil {
			slog.Error("Failed to close storage", "error", err)
		}
	}()

	// Root Context with cancellation on Interrupt
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := application.Run(ctx); err != nil {
		slog.Error("Application error", "error", err)
		return 1
	}
	slog.Info("netpath stopped")
	return 0
}
