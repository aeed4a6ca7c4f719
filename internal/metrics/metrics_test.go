package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	"pairsignal/internal/core"
)

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, g.Write(&m))
	return m.GetGauge().GetValue()
}

func TestObserve_UpdatesGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollectors(reg)

	c.Observe(core.Snapshot{
		Peers:              12,
		Waiting:            4,
		RoomsTotal:         4,
		RoomsConnected:     3,
		RoomsPending:       1,
		LoadPct:            6,
		RoomUtilizationPct: 4,
		TakenAt:            time.Now(),
	})

	require.Equal(t, float64(12), gaugeValue(t, c.Peers))
	require.Equal(t, float64(4), gaugeValue(t, c.Waiting))
	require.Equal(t, float64(4), gaugeValue(t, c.RoomsTotal))
	require.Equal(t, float64(3), gaugeValue(t, c.RoomsConnected))
	require.Equal(t, float64(1), gaugeValue(t, c.RoomsPending))
	require.Equal(t, float64(6), gaugeValue(t, c.LoadPct))
	require.Equal(t, float64(4), gaugeValue(t, c.RoomUtilizationPct))
}
