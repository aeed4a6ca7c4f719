// Package transport implements the Transport Adapter (C1): it owns the
// WebSocket upgrade, one read goroutine and one write goroutine per
// connection, and translates between wire JSON and core.Controller calls.
// It is the only package that imports github.com/coder/websocket.
package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"pairsignal/internal/core"
)

// readTimeout bounds how long a connection may sit idle before the read
// goroutine treats it as gone, mirroring the teacher's 60s read deadline.
const readTimeout = 60 * time.Second

// writeTimeout bounds a single outbound frame write.
const writeTimeout = 10 * time.Second

// sendBuffer is the per-connection outbound channel depth, matching the
// teacher's SendChan capacity so a slow reader can't stall the Matchmaker.
const sendBuffer = 100

// connection is the per-peer transport state: the socket, its outbound
// channel, and the keepalive monitor watching it.
type connection struct {
	id        core.PeerId
	conn      *websocket.Conn
	sendChan  chan []byte
	logger    *zap.Logger
	keepalive *keepaliveMonitor
	closeOnce sync.Once
}

// Server is the Transport Adapter. It implements core.Emitter by routing
// each outbound event to the right connection's buffered send channel so
// Emit never blocks the Matchmaker's lock (spec.md §5).
type Server struct {
	controller *core.Controller
	logger     *zap.Logger
	cfg        keepaliveConfig

	mu    sync.Mutex
	peers map[core.PeerId]*connection
}

// NewServer constructs a Transport Adapter with no Controller bound yet.
// Callers must call BindController before serving any connection — the
// core's Matchmaker/Rooms need this Server as their Emitter before a
// Controller can exist, so construction is necessarily two steps.
func NewServer(logger *zap.Logger) *Server {
	return &Server{
		logger: logger,
		cfg:    defaultKeepaliveConfig(),
		peers:  make(map[core.PeerId]*connection),
	}
}

// BindController attaches the Controller this Server dispatches inbound
// events to. Must be called once, before HandleWebRTCConnection serves
// any request.
func (s *Server) BindController(controller *core.Controller) {
	s.controller = controller
}

// HandleWebRTCConnection upgrades an incoming request to a WebSocket and
// starts its read/write/keepalive goroutines, grounded on the teacher's
// HandleWebRTCConnection.
func (s *Server) HandleWebRTCConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
		CompressionMode:    websocket.CompressionContextTakeover,
	})
	if err != nil {
		s.logger.Error("failed to upgrade to websocket", zap.Error(err))
		return
	}

	peerId := core.NewPeerId()
	c := &connection{
		id:       peerId,
		conn:     conn,
		sendChan: make(chan []byte, sendBuffer),
		logger:   s.logger.With(zap.String("peer_id", string(peerId))),
	}

	s.mu.Lock()
	s.peers[peerId] = c
	s.mu.Unlock()

	c.keepalive = newKeepaliveMonitor(conn, s.cfg, c.logger, func() {
		s.disconnect(c, websocket.StatusPolicyViolation, "keepalive timeout")
	})
	c.keepalive.start()

	s.controller.OnConnect(peerId)
	c.logger.Info("new signaling connection established")

	go s.readLoop(c)
	go s.writeLoop(c)
}

// readLoop reads and dispatches inbound frames until the socket errs,
// then synthesizes the disconnect the core expects (spec.md §4.1).
func (s *Server) readLoop(c *connection) {
	defer s.disconnect(c, websocket.StatusNormalClosure, "")
	defer recoverGoroutine(c.logger, "read loop")

	for {
		readCtx, cancel := context.WithTimeout(context.Background(), readTimeout)
		_, data, err := c.conn.Read(readCtx)
		cancel()
		if err != nil {
			c.logger.Debug("read loop ending", zap.Error(err))
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Warn("failed to parse inbound message", zap.Error(err))
			s.Emit(c.id, core.EventError, core.ErrorPayload{Message: "invalid message format"})
			continue
		}
		s.dispatch(c.id, msg)
	}
}

// dispatch translates one inbound wire message into the matching
// Controller call, replacing the teacher's type-switch with one keyed on
// core.InboundEvent.
func (s *Server) dispatch(peerId core.PeerId, msg inboundMessage) {
	switch msg.Event {
	case core.EventJoin:
		s.controller.OnJoin(peerId, msg.Name)
	case core.EventNext:
		s.controller.OnNext(peerId)
	case core.EventReadyForNew:
		s.controller.OnReadyForNew(peerId)
	case core.EventOffer:
		s.controller.OnOffer(peerId, msg.RoomId, msg.SDP)
	case core.EventAnswer:
		s.controller.OnAnswer(peerId, msg.RoomId, msg.SDP)
	case core.EventIceCandidate:
		s.controller.OnIceCandidate(peerId, msg.RoomId, msg.Candidate, msg.Type)
	case core.EventConnectionEstablished:
		s.controller.OnConnectionEstablished(peerId, msg.RoomId)
	case core.EventManualDisconnect:
		s.controller.OnDisconnect(peerId)
	default:
		s.Emit(peerId, core.EventError, core.ErrorPayload{Message: "unknown event: " + string(msg.Event)})
	}
}

// writeLoop drains a connection's send channel onto the socket, grounded
// on the teacher's handlePeerSend.
func (s *Server) writeLoop(c *connection) {
	defer recoverGoroutine(c.logger, "write loop")

	for message := range c.sendChan {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := c.conn.Write(ctx, websocket.MessageText, message)
		cancel()
		if err != nil {
			c.logger.Warn("failed to write to peer", zap.Error(err))
			return
		}
	}
}

// Emit implements core.Emitter. It never blocks: a full send channel
// means the peer is already effectively gone, so the frame is dropped
// rather than stalling the caller (spec.md §5).
func (s *Server) Emit(peer core.PeerId, event core.OutboundEvent, payload any) {
	s.mu.Lock()
	c, ok := s.peers[peer]
	s.mu.Unlock()
	if !ok {
		return
	}

	data, err := json.Marshal(outboundMessage{Event: event, Payload: payload})
	if err != nil {
		s.logger.Error("failed to marshal outbound message", zap.Error(err))
		return
	}

	select {
	case c.sendChan <- data:
	default:
		c.logger.Warn("send channel full, dropping outbound frame", zap.String("event", string(event)))
	}
}

// disconnect tears a connection down exactly once: it stops the keepalive
// monitor, closes the socket, drops the peer from the registry, closes the
// send channel to unblock writeLoop, and notifies the Controller.
func (s *Server) disconnect(c *connection, code websocket.StatusCode, reason string) {
	c.closeOnce.Do(func() {
		c.keepalive.stop()

		s.mu.Lock()
		delete(s.peers, c.id)
		s.mu.Unlock()

		close(c.sendChan)
		_ = c.conn.Close(code, reason)

		s.controller.OnDisconnect(c.id)
		c.logger.Info("signaling connection closed")
	})
}

// recoverGoroutine recovers a panic inside a per-connection read or write
// goroutine and logs it with a stack trace, so a bug tripped by one peer's
// traffic cannot crash the process or strand every other peer's connection
// (SPEC_FULL.md §4.8) — grounded on the same recovery.RecoveryMiddleware
// idiom already adapted for the HTTP surface in internal/httpapi.
func recoverGoroutine(logger *zap.Logger, where string) {
	if err := recover(); err != nil {
		logger.Error("panic recovered in transport goroutine",
			zap.String("where", where),
			zap.Any("error", err),
			zap.ByteString("stack", debug.Stack()))
	}
}
