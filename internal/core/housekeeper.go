package core

import (
	"context"
	"time"
)

// HousekeeperConfig holds the two sweep intervals and their timeouts
// (spec.md §4.4, §6).
type HousekeeperConfig struct {
	CleanupIntervalSec    int
	MonitoringIntervalSec int
	UserTimeoutSec        int
	ConnectionTimeoutSec  int
	MonitoringEnabled     bool
}

// SnapshotSink receives each monitoring tick's Snapshot. Implementations
// must not block the Housekeeper's goroutine for long — log-and-return or
// hand off to a buffered channel.
type SnapshotSink interface {
	Publish(ctx context.Context, snap Snapshot)
}

// SnapshotSinkFunc adapts a function to SnapshotSink.
type SnapshotSinkFunc func(ctx context.Context, snap Snapshot)

func (f SnapshotSinkFunc) Publish(ctx context.Context, snap Snapshot) { f(ctx, snap) }

// WarnFunc is invoked when a monitoring snapshot crosses a warning
// threshold (load or room utilization above 80%).
type WarnFunc func(snap Snapshot)

// Housekeeper (C4) periodically sweeps inactive peers / stale rooms and
// publishes operational snapshots. It owns no matchmaking state itself —
// every mutation goes through Matchmaker/Rooms, which remain the sole
// holders of the core lock.
type Housekeeper struct {
	matchmaker *Matchmaker
	rooms      *Rooms
	cfg        HousekeeperConfig
	sink       SnapshotSink
	warn       WarnFunc
	now        func() time.Time
}

// NewHousekeeper constructs a Housekeeper. sink and warn may be nil.
func NewHousekeeper(matchmaker *Matchmaker, rooms *Rooms, cfg HousekeeperConfig, sink SnapshotSink, warn WarnFunc) *Housekeeper {
	if warn == nil {
		warn = func(Snapshot) {}
	}
	return &Housekeeper{
		matchmaker: matchmaker,
		rooms:      rooms,
		cfg:        cfg,
		sink:       sink,
		warn:       warn,
		now:        time.Now,
	}
}

// Run starts the two periodic tasks and blocks until ctx is cancelled.
func (h *Housekeeper) Run(ctx context.Context) {
	cleanup := time.NewTicker(time.Duration(h.cfg.CleanupIntervalSec) * time.Second)
	defer cleanup.Stop()

	var monitor *time.Ticker
	var monitorC <-chan time.Time
	if h.cfg.MonitoringEnabled && h.cfg.MonitoringIntervalSec > 0 {
		monitor = time.NewTicker(time.Duration(h.cfg.MonitoringIntervalSec) * time.Second)
		monitorC = monitor.C
		defer monitor.Stop()
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-cleanup.C:
			h.sweep()
		case <-monitorC:
			h.monitor(ctx)
		}
	}
}

// sweep runs the inactivity and stale-room reapers once. Sweep exposes it
// for tests that want deterministic, non-ticker-driven control.
func (h *Housekeeper) sweep() {
	now := h.now()
	h.matchmaker.reapInactive(now, h.cfg.UserTimeoutSec)
	h.rooms.reapStale(now, h.cfg.ConnectionTimeoutSec)
}

// monitor takes one snapshot, warns on overload, and publishes it.
func (h *Housekeeper) monitor(ctx context.Context) {
	snap := h.matchmaker.Snapshot(h.now())
	if snap.LoadPct > 80 || snap.RoomUtilizationPct > 80 {
		h.warn(snap)
	}
	if h.sink != nil {
		h.sink.Publish(ctx, snap)
	}
}

// Sweep and Monitor expose the single-tick operations for callers
// (tests, manual triggers) that don't want to run the ticker loop.
func (h *Housekeeper) Sweep()                      { h.sweep() }
func (h *Housekeeper) Monitor(ctx context.Context) { h.monitor(ctx) }
