// Package metrics exposes the Housekeeper's operational snapshot as
// Prometheus gauges, grounded on the example corpus's prometheus-backed
// metrics packages.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"pairsignal/internal/core"
)

// Collectors bundles the gauges this service exposes over /metrics.
type Collectors struct {
	Peers              prometheus.Gauge
	Waiting            prometheus.Gauge
	RoomsTotal         prometheus.Gauge
	RoomsConnected     prometheus.Gauge
	RoomsPending       prometheus.Gauge
	LoadPct            prometheus.Gauge
	RoomUtilizationPct prometheus.Gauge
}

// NewCollectors registers a fresh set of gauges on reg.
func NewCollectors(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		Peers:              gauge("pairsignal_peers", "Number of peers currently in the directory."),
		Waiting:            gauge("pairsignal_waiting", "Number of peers currently in the waiting queue."),
		RoomsTotal:         gauge("pairsignal_rooms_total", "Number of active rooms."),
		RoomsConnected:     gauge("pairsignal_rooms_connected", "Number of active rooms whose peers have connected."),
		RoomsPending:       gauge("pairsignal_rooms_pending", "Number of active rooms awaiting connection."),
		LoadPct:            gauge("pairsignal_load_pct", "Directory occupancy as a percentage of MaxPeers."),
		RoomUtilizationPct: gauge("pairsignal_room_utilization_pct", "Room occupancy as a percentage of MaxRooms."),
	}
	for _, g := range []prometheus.Gauge{c.Peers, c.Waiting, c.RoomsTotal, c.RoomsConnected, c.RoomsPending, c.LoadPct, c.RoomUtilizationPct} {
		reg.MustRegister(g)
	}
	return c
}

func gauge(name, help string) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
}

// Observe updates every gauge from a Snapshot. Safe to call from the
// Housekeeper's monitoring tick.
func (c *Collectors) Observe(snap core.Snapshot) {
	c.Peers.Set(float64(snap.Peers))
	c.Waiting.Set(float64(snap.Waiting))
	c.RoomsTotal.Set(float64(snap.RoomsTotal))
	c.RoomsConnected.Set(float64(snap.RoomsConnected))
	c.RoomsPending.Set(float64(snap.RoomsPending))
	c.LoadPct.Set(snap.LoadPct)
	c.RoomUtilizationPct.Set(snap.RoomUtilizationPct)
}
