package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"awbrn/engine/internal/config"
	httpapi "awbrn/engine/internal/http"
	"awbrn/engine/internal/logging"
	"awbrn/engine/internal/playback"
	"awbrn/engine/internal/replay"
)

// statsSource is the subset of the broker the stats endpoint needs.
type statsSource interface {
	Stats() BrokerStats
}

func statsHandler(source statsSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(source.Stats()); err != nil {
			http.Error(w, "encode stats", http.StatusInternalServerError)
		}
	}
}

func healthzHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("configuration error: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		os.Stderr.WriteString("logging setup error: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	record, err := replay.ReadFile(cfg.ReplayPath)
	if err != nil {
		logger.Error("load replay failed", logging.String("path", cfg.ReplayPath), logging.Error(err))
		os.Exit(1)
	}
	state, err := playback.New(record, logger)
	if err != nil {
		logger.Error("initialise playback failed", logging.Error(err))
		os.Exit(1)
	}
	logger.Info("replay loaded",
		logging.String("path", cfg.ReplayPath),
		logging.Int("days", len(record.Games)),
		logging.Int("turns", len(record.Turns)))

	broker := NewBroker(state, cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go broker.Run(ctx, cfg.TurnInterval)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", broker.serveWS)
	mux.HandleFunc("/healthz", healthzHandler)
	mux.HandleFunc("/api/stats", statsHandler(broker))

	handlerOpts := httpapi.Options{
		Logger:    logger,
		Readiness: broker,
		Stats: func() (int64, int) {
			stats := broker.Stats()
			return stats.Broadcasts, stats.Clients
		},
		Playback:    broker.Playback,
		AdminToken:  cfg.AdminToken,
		RateLimiter: httpapi.NewSlidingWindowLimiter(time.Minute, 2, nil),
	}
	if cfg.BundleDir != "" {
		exporter, err := replay.NewExporter(cfg.BundleDir, nil)
		if err != nil {
			logger.Error("bundle exporter setup failed", logging.Error(err))
			os.Exit(1)
		}
		handlerOpts.Exporter = httpapi.BundleExporterFunc(func(ctx context.Context) (string, error) {
			return exporter.Export(record)
		})
		handlerOpts.ExportStats = exporter.Snapshot

		cleaner := replay.NewCleaner(cfg.BundleDir, replay.RetentionPolicy{
			MaxBundles: cfg.BundleRetain,
			MaxAge:     cfg.BundleMaxAge,
		}, logger)
		go cleaner.Run(ctx, time.Hour)
	}
	httpapi.NewHandlerSet(handlerOpts).Register(mux)

	server := &http.Server{Addr: cfg.Address, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", logging.Error(err))
		}
	}()

	logger.Info("viewer listening", logging.String("url", listenerURL(cfg.Address)))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", logging.Error(err))
		os.Exit(1)
	}
	logger.Info("viewer stopped")
}
