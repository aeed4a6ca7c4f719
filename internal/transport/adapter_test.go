package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pairsignal/internal/core"
)

func newTestServer(t *testing.T) (*httptest.Server, *Server) {
	t.Helper()
	logger := zap.NewNop()
	server := NewServer(logger)
	rooms := core.NewRooms(server)
	matchmaker := core.NewMatchmaker(rooms, server, core.Limits{MaxPeers: 10, MaxRooms: 5, MaxAttempts: 3})
	controller := core.NewController(matchmaker, rooms, server)
	server.BindController(controller)

	httpServer := httptest.NewServer(http.HandlerFunc(server.HandleWebRTCConnection))
	t.Cleanup(httpServer.Close)
	return httpServer, server
}

func dial(t *testing.T, httpServer *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(httpServer.URL, "http")
	conn, _, err := websocket.Dial(context.Background(), url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func readOne(t *testing.T, conn *websocket.Conn) outboundMessage {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var msg outboundMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func send(t *testing.T, conn *websocket.Conn, msg inboundMessage) {
	t.Helper()
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, conn.Write(ctx, websocket.MessageText, data))
}

func TestAdapter_JoinReceivesLobby(t *testing.T) {
	httpServer, _ := newTestServer(t)
	conn := dial(t, httpServer)

	send(t, conn, inboundMessage{Event: core.EventJoin, Name: "alice"})

	msg := readOne(t, conn)
	require.Equal(t, core.EventLobby, msg.Event)
}

func TestAdapter_TwoPeersGetPaired(t *testing.T) {
	httpServer, _ := newTestServer(t)
	a := dial(t, httpServer)
	b := dial(t, httpServer)

	send(t, a, inboundMessage{Event: core.EventJoin, Name: "alice"})
	lobbyA := readOne(t, a)
	require.Equal(t, core.EventLobby, lobbyA.Event)

	send(t, b, inboundMessage{Event: core.EventJoin, Name: "bob"})

	offerSide := readOne(t, a)
	require.Equal(t, core.EventSendOffer, offerSide.Event)

	waitSide := readOne(t, b)
	require.Equal(t, core.EventWaitOffer, waitSide.Event)
}

func TestAdapter_UnknownEventReturnsError(t *testing.T) {
	httpServer, _ := newTestServer(t)
	conn := dial(t, httpServer)

	send(t, conn, inboundMessage{Event: "not-a-real-event"})

	msg := readOne(t, conn)
	require.Equal(t, core.EventError, msg.Event)
}

func TestAdapter_MalformedJSONReturnsError(t *testing.T) {
	httpServer, _ := newTestServer(t)
	conn := dial(t, httpServer)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte("{not json")))

	msg := readOne(t, conn)
	require.Equal(t, core.EventError, msg.Event)
}

func TestRecoverGoroutine_CatchesPanicWithoutPropagating(t *testing.T) {
	ran := func() {
		defer recoverGoroutine(zap.NewNop(), "test")
		panic("boom")
	}
	require.NotPanics(t, ran)
}

func TestAdapter_DisconnectRemovesPeer(t *testing.T) {
	httpServer, server := newTestServer(t)
	conn := dial(t, httpServer)

	send(t, conn, inboundMessage{Event: core.EventJoin, Name: "alice"})
	_ = readOne(t, conn)

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, ""))

	require.Eventually(t, func() bool {
		server.mu.Lock()
		defer server.mu.Unlock()
		return len(server.peers) == 0
	}, 2*time.Second, 20*time.Millisecond)
}
