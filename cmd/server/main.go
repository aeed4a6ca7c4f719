// Command server runs the matchmaking & signaling service: it wires
// configuration, logging, the core state machine, the Transport Adapter,
// the Housekeeper, and the HTTP surface together, the way the teacher's
// cmd/main.go assembles its own server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"pairsignal/internal/config"
	"pairsignal/internal/core"
	"pairsignal/internal/httpapi"
	"pairsignal/internal/logging"
	"pairsignal/internal/metrics"
	"pairsignal/internal/snapshot"
	"pairsignal/internal/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logging isn't configured yet; this is the one place a bare
		// fprintf-to-stderr replacement is appropriate.
		println("configuration error:", err.Error())
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		println("failed to build logger:", err.Error())
		os.Exit(1)
	}
	logging.Set(logger)
	defer logger.Sync()

	// Construction order follows the dependency the Transport Adapter has
	// on the Controller and the Controller has on the Adapter as its
	// Emitter: the Server is built first with no Controller bound, the
	// core pieces are wired against it, then the Controller is bound back.
	server := transport.NewServer(logger)
	rooms := core.NewRooms(server)
	matchmaker := core.NewMatchmaker(rooms, server, core.Limits{
		MaxPeers:    cfg.MaxPeers,
		MaxRooms:    cfg.MaxRooms,
		MaxAttempts: cfg.MaxAttempts,
	})
	controller := core.NewController(matchmaker, rooms, server)
	server.BindController(controller)

	registry := prometheus.NewRegistry()
	collectors := metrics.NewCollectors(registry)

	var publisher *snapshot.RedisPublisher
	sink := core.SnapshotSink(nil)
	if cfg.SnapshotPublishAddr != "" {
		publisher = snapshot.NewRedisPublisher(cfg.SnapshotPublishAddr, "", cfg.SnapshotPublishChannel)
		defer publisher.Close()
		sink = core.SnapshotSinkFunc(func(ctx context.Context, snap core.Snapshot) {
			collectors.Observe(snap)
			publisher.Publish(ctx, snap)
		})
	} else {
		sink = core.SnapshotSinkFunc(func(_ context.Context, snap core.Snapshot) {
			collectors.Observe(snap)
		})
	}

	warn := func(snap core.Snapshot) {
		logger.Warn("service approaching capacity",
			zap.Float64("load_pct", snap.LoadPct),
			zap.Float64("room_utilization_pct", snap.RoomUtilizationPct))
	}

	housekeeper := core.NewHousekeeper(matchmaker, rooms, core.HousekeeperConfig{
		CleanupIntervalSec:    cfg.CleanupIntervalSec,
		MonitoringIntervalSec: cfg.MonitoringIntervalSec,
		UserTimeoutSec:        cfg.UserTimeoutSec,
		ConnectionTimeoutSec:  cfg.ConnectionTimeoutSec,
		MonitoringEnabled:     cfg.MonitoringEnabled,
	}, sink, warn)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go housekeeper.Run(ctx)

	status := httpapi.StatusSource(func() core.Snapshot {
		return matchmaker.Snapshot(time.Now())
	})

	allowedOrigins := parseOrigins(cfg.AllowedOrigins)
	router := httpapi.NewRouter(server, status, registry, allowedOrigins, logger)

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	logger.Info("matchmaking & signaling server starting",
		zap.String("port", cfg.Port),
		zap.Int("max_peers", cfg.MaxPeers),
		zap.Int("max_rooms", cfg.MaxRooms))
	logger.Info("available endpoints: GET /, GET /signal, GET /status, GET /metrics")

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server exited with error", zap.Error(err))
		}
	case sig := <-stop:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
		}
	}
}

// parseOrigins turns a comma-separated ALLOWED_ORIGINS value into a list,
// treating "*" as "allow everything" (an empty list in httpapi's CORS).
func parseOrigins(raw string) []string {
	if strings.TrimSpace(raw) == "*" || strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}
