// Command cnclogd serves the manufacturing job log: the command API the
// floor terminals post to, the dashboard read surface, and the daily
// overtime sweep.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	cnclog "github.com/tpt-cnclog/mfg-dashboard"
	"github.com/tpt-cnclog/mfg-dashboard/api"
	"github.com/tpt-cnclog/mfg-dashboard/board"
	"github.com/tpt-cnclog/mfg-dashboard/calendar"
	"github.com/tpt-cnclog/mfg-dashboard/engine"
	"github.com/tpt-cnclog/mfg-dashboard/metrics"
	"github.com/tpt-cnclog/mfg-dashboard/rowstore"
	bunstore "github.com/tpt-cnclog/mfg-dashboard/rowstore/bun"
	"github.com/tpt-cnclog/mfg-dashboard/rowstore/memory"
	"github.com/tpt-cnclog/mfg-dashboard/rowstore/sqlite"
	"github.com/tpt-cnclog/mfg-dashboard/sweep"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "cnclogd:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := cnclog.LoadConfig(configPath)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}
	cal := calendar.New(calendar.WithLocation(loc))

	store, err := openStore(cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close()
	logger.Info("row store ready", "driver", cfg.Store.Driver)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	m := metrics.New(reg)

	b := board.New(store,
		board.WithTTL(cfg.CacheTTL),
		board.WithLogger(logger),
		board.WithMetrics(m),
	)

	engOpts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithMetrics(m),
		engine.WithOnMutate(b.Invalidate),
		engine.WithNonQuantified(cfg.NonQuantified...),
	}
	workEnds, err := parseWorkEnds(cfg.CustomWorkEnd)
	if err != nil {
		return err
	}
	if len(workEnds) > 0 {
		engOpts = append(engOpts, engine.WithCustomWorkEnd(workEnds))
	}
	eng := engine.New(store, cal, engOpts...)

	sweeper, err := sweep.New(cfg.SweepSchedule, loc, eng.Sweep, sweep.WithLogger(logger))
	if err != nil {
		return err
	}
	sweeper.Start()
	defer sweeper.Stop()

	srv := api.New(cfg.Listen, eng, b, store, reg, api.WithLogger(logger))

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStore(cfg cnclog.StoreConfig) (rowstore.Store, error) {
	switch cfg.Driver {
	case "", "memory":
		return memory.New(), nil
	case "sqlite":
		return sqlite.New(cfg.Path)
	case "postgres":
		return bunstore.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func parseWorkEnds(raw map[string]string) (map[string]calendar.Clock, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]calendar.Clock, len(raw))
	for name, s := range raw {
		c, err := calendar.ParseClock(s)
		if err != nil {
			return nil, fmt.Errorf("custom work end for %q: %w", name, err)
		}
		out[name] = c
	}
	return out, nil
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
