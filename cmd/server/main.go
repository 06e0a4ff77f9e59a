package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/cluehunt/cluehunt/internal/config"
	"github.com/cluehunt/cluehunt/internal/database"
	"github.com/cluehunt/cluehunt/internal/migrations"
	"github.com/cluehunt/cluehunt/internal/server"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("connected to sqlite", "path", cfg.DBPath)

	store := server.NewSQLiteStore(db, cfg.QuestionTime, cfg.ScoreFloor)

	if err := server.SeedAdmin(ctx, logger, store, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		return fmt.Errorf("seeding admin: %w", err)
	}
	if err := server.SeedDemoQuestions(ctx, logger, store); err != nil {
		return fmt.Errorf("seeding questions: %w", err)
	}

	srv := server.New(cfg.HTTPAddr, logger, db, store, server.Options{
		TotalQuestions: cfg.TotalQuestions,
		QuestionTime:   cfg.QuestionTime,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}
