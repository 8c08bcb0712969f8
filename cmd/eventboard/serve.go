package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	"go.uber.org/zap"

	core "github.com/goliatone/go-eventboard/components/eventboard"
	"github.com/goliatone/go-eventboard/components/eventboard/gorouter"
	"github.com/goliatone/go-eventboard/components/eventboard/httpapi"
	"github.com/goliatone/go-eventboard/pkg/eventboard"
)

const shutdownTimeout = 10 * time.Second

type serveCmd struct {
	Listen   string `help:"Address to listen on (overrides config)."`
	Endpoint string `help:"Registration endpoint URL (overrides config)."`
}

func (cmd *serveCmd) Run(_ context.Context, globals *Globals) error {
	cfg, err := globals.load()
	if err != nil {
		return err
	}
	if cmd.Listen != "" {
		cfg.Listen = cmd.Listen
	}
	if cmd.Endpoint != "" {
		cfg.Endpoint = cmd.Endpoint
	}
	logger, err := newLogger(cfg.LogLevel, globals.Dev)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if err := core.ValidateEndpoint(cfg.Endpoint); err != nil {
		logger.Warn("registration endpoint not configured, the board will show demo data", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	board, err := eventboard.New(cfg, logger, eventboard.WithUI())
	if err != nil {
		return err
	}
	defer board.Controller.Close()

	// Preloading is best effort; failures are only logged.
	_ = core.PreloadAssets(core.LogoAssetsFS(), board.Logos, logger)

	poller := board.Controller.Start(ctx)
	defer poller.Stop()

	server := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:     server.Router(),
		Controller: board.Controller,
		API:        httpapi.NewCommandExecutor(board.Controller, board.Telemetry),
		Broadcast:  board.Broadcast,
		BasePath:   cfg.BasePath,
	}); err != nil {
		return fmt.Errorf("eventboard: register routes: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("board ready",
			zap.String("listen", cfg.Listen),
			zap.String("path", cfg.BasePath),
			zap.Duration("poll_interval", cfg.PollInterval),
		)
		errCh <- server.Serve(cfg.Listen)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("eventboard: server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	poller.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("eventboard: shutdown: %w", err)
	}
	return nil
}
