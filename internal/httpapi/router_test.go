package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pairsignal/internal/core"
)

type stubWebSocketHandler struct {
	called bool
}

func (s *stubWebSocketHandler) HandleWebRTCConnection(w http.ResponseWriter, r *http.Request) {
	s.called = true
	w.WriteHeader(http.StatusOK)
}

func newTestRouter(t *testing.T) (http.Handler, *stubWebSocketHandler) {
	t.Helper()
	ws := &stubWebSocketHandler{}
	reg := prometheus.NewRegistry()
	status := func() core.Snapshot {
		return core.Snapshot{Peers: 2, Waiting: 1, TakenAt: time.Unix(0, 0)}
	}
	return NewRouter(ws, status, reg, nil, zap.NewNop()), ws
}

func TestRouter_Liveness(t *testing.T) {
	router, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "ok", body["status"])
}

func TestRouter_Status(t *testing.T) {
	router, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var snap core.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	require.Equal(t, 2, snap.Peers)
	require.Equal(t, 1, snap.Waiting)
}

func TestRouter_Metrics(t *testing.T) {
	router, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_SignalRouteDelegates(t *testing.T) {
	router, ws := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/signal", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.True(t, ws.called)
}

func TestRouter_CORSPreflight(t *testing.T) {
	router, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_CORSAllowList(t *testing.T) {
	ws := &stubWebSocketHandler{}
	reg := prometheus.NewRegistry()
	status := func() core.Snapshot { return core.Snapshot{} }
	router := NewRouter(ws, status, reg, []string{"https://example.com"}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.Header.Set("Origin", "https://example.com")
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	require.Equal(t, "https://example.com", rec2.Header().Get("Access-Control-Allow-Origin"))
}
