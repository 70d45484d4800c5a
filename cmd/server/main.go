package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"turnbattle/internal/arena"
	"turnbattle/internal/battle"
	"turnbattle/internal/config"
	"turnbattle/internal/data"
	"turnbattle/internal/logger"
	"turnbattle/internal/server"
	"turnbattle/internal/spectate"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	gin.SetMode(cfg.Server.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Result store is optional, battles still run without it.
	var store *data.Store
	if cfg.Database.URL != "" {
		store, err = openStore(ctx, cfg.Database.URL)
		if err != nil {
			log.Warn("Failed to open result store, continuing without it", zap.Error(err))
			store = nil
		} else {
			log.Info("Connected to result store")
			defer store.Close()
		}
	}

	entries, err := arena.LoadRoster(cfg.Arena.RosterPath)
	if err != nil {
		return fmt.Errorf("failed to load roster: %w", err)
	}

	seed := cfg.Arena.Seed
	if seed == 0 {
		if seed, err = arena.NewSeed(); err != nil {
			return err
		}
	}
	players, err := arena.PlayersFromRoster(entries, seed)
	if err != nil {
		return fmt.Errorf("failed to build players: %w", err)
	}
	log.Info("Roster loaded", zap.Int("characters", len(players)), zap.Int64("seed", seed))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := arena.NewMetrics(reg)

	hub := spectate.NewHub(log.Named("spectate"))
	go hub.Run(ctx)

	opts := []arena.Option{
		arena.WithLogger(log.Named("arena")),
		arena.WithPublisher(hub),
		arena.WithMetrics(metrics),
		arena.WithPace(cfg.Arena.Pace),
		arena.WithMaxTurns(cfg.Arena.MaxTurns),
	}
	if store != nil {
		opts = append(opts, arena.WithRecorder(store))
	}
	a := arena.New(battle.NewBattle(cfg.Arena.Name), opts...)
	a.OnFinish = func(r arena.Result) {
		log.Info("Final standings", zap.String("result_id", r.ID), zap.String("report", r.Report))
	}
	if err := a.Join(players...); err != nil {
		return fmt.Errorf("failed to join roster: %w", err)
	}

	registry := arena.NewRegistry()
	if err := registry.Add(a); err != nil {
		return err
	}

	deps := server.Deps{Registry: registry, Hub: hub, Gatherer: reg, Logger: log}
	if store != nil {
		deps.Results = store
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      server.Setup(deps),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Starting server", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	go func() {
		if _, err := a.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("Arena stopped", zap.Error(err))
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		log.Error("Server failed", zap.Error(err))
		stop()
	}

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
	return nil
}

func openStore(ctx context.Context, url string) (*data.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	store, err := data.NewStoreFromDB(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}
