package transport

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"
)

// keepaliveConfig mirrors the ping/pong tuning knobs of the example
// corpus's keepalive monitor, adapted to coder/websocket's synchronous
// Ping (it waits for the pong itself rather than registering a handler).
type keepaliveConfig struct {
	PingInterval time.Duration
	PingTimeout  time.Duration
}

func defaultKeepaliveConfig() keepaliveConfig {
	return keepaliveConfig{
		PingInterval: 30 * time.Second,
		PingTimeout:  10 * time.Second,
	}
}

// keepaliveMonitor pings a connection on an interval and calls onDead
// exactly once if a ping ever fails to round-trip within PingTimeout —
// the Transport Adapter's synthesized onDisconnect (spec.md §4.1).
type keepaliveMonitor struct {
	conn   *websocket.Conn
	cfg    keepaliveConfig
	logger *zap.Logger
	onDead func()
	dead   atomic.Bool
	done   chan struct{}
}

func newKeepaliveMonitor(conn *websocket.Conn, cfg keepaliveConfig, logger *zap.Logger, onDead func()) *keepaliveMonitor {
	return &keepaliveMonitor{
		conn:   conn,
		cfg:    cfg,
		logger: logger,
		onDead: onDead,
		done:   make(chan struct{}),
	}
}

// start runs the ping loop until stop() is called or a ping fails.
func (k *keepaliveMonitor) start() {
	go k.loop()
}

func (k *keepaliveMonitor) stop() {
	select {
	case <-k.done:
	default:
		close(k.done)
	}
}

func (k *keepaliveMonitor) loop() {
	ticker := time.NewTicker(k.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-k.done:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), k.cfg.PingTimeout)
			err := k.conn.Ping(ctx)
			cancel()
			if err != nil {
				k.logger.Warn("keepalive ping failed, marking peer dead", zap.Error(err))
				if k.dead.CompareAndSwap(false, true) {
					k.onDead()
				}
				return
			}
		}
	}
}
