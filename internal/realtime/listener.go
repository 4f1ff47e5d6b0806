// Package realtime listens to the platform change feed over WebSocket.
// The feed pushes one JSON message per table change; the listener holds no
// subscription state and treats every message as a cache-invalidation signal.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// ChangeEvent is one change-feed message.
type ChangeEvent struct {
	Table string `json:"table"`
	Event string `json:"event"` // INSERT | UPDATE | DELETE
}

// Handler receives change events. Called from the listener's read goroutine.
type Handler func(ChangeEvent)

// ListenerConfig configures listener behavior.
type ListenerConfig struct {
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing control frames.
	WriteTimeout time.Duration
}

// DefaultListenerConfig returns default listener configuration.
func DefaultListenerConfig() ListenerConfig {
	return ListenerConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// Listener maintains a WebSocket connection to the change feed and invokes
// the handler for every event. Reconnects with exponential backoff.
type Listener struct {
	endpoint string
	config   ListenerConfig
	handler  Handler

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool

	reconnecting atomic.Bool

	done chan struct{}
	wg   sync.WaitGroup
}

// NewListener connects to the change feed and starts the read and ping loops.
func NewListener(ctx context.Context, endpoint string, handler Handler, config *ListenerConfig) (*Listener, error) {
	cfg := DefaultListenerConfig()
	if config != nil {
		cfg = *config
	}

	l := &Listener{
		endpoint: endpoint,
		config:   cfg,
		handler:  handler,
		done:     make(chan struct{}),
	}

	if err := l.connect(ctx); err != nil {
		return nil, err
	}

	l.wg.Add(1)
	go l.readLoop()

	l.wg.Add(1)
	go l.pingLoop()

	return l, nil
}

// connect establishes the WebSocket connection.
func (l *Listener) connect(ctx context.Context) error {
	l.connMu.Lock()
	defer l.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, l.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	l.conn = conn
	return nil
}

// Close stops the listener and closes the connection.
func (l *Listener) Close() error {
	if l.closed.Swap(true) {
		return nil // Already closed
	}

	close(l.done)

	l.connMu.Lock()
	if l.conn != nil {
		l.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		l.conn.Close()
	}
	l.connMu.Unlock()

	l.wg.Wait()
	return nil
}

// readLoop reads feed messages and dispatches them to the handler.
func (l *Listener) readLoop() {
	defer l.wg.Done()

	reconnectDelay := l.config.ReconnectDelay

	for !l.closed.Load() {
		l.connMu.Lock()
		conn := l.conn
		l.connMu.Unlock()

		if conn == nil {
			select {
			case <-l.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		conn.SetReadDeadline(time.Now().Add(l.config.ReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if l.closed.Load() {
				return
			}

			// Connection error - attempt reconnect with exponential backoff.
			// The delay doubles once per reconnect attempt; repeated read
			// errors on the same dead connection must not escalate it.
			if !l.reconnecting.Swap(true) {
				go l.reconnect(reconnectDelay)

				reconnectDelay = reconnectDelay * 2
				if reconnectDelay > l.config.MaxReconnectDelay {
					reconnectDelay = l.config.MaxReconnectDelay
				}
			}

			select {
			case <-l.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		// Reset delay on successful read
		reconnectDelay = l.config.ReconnectDelay

		l.handleMessage(message)
	}
}

// handleMessage parses a feed message and invokes the handler.
// Malformed messages are logged and skipped, never fatal.
func (l *Listener) handleMessage(message []byte) {
	var event ChangeEvent
	if err := json.Unmarshal(message, &event); err != nil {
		log.Printf("[realtime] malformed feed message: %v", err)
		return
	}
	if event.Table == "" {
		return
	}

	if l.handler != nil {
		l.handler(event)
	}
}

// reconnect waits out the backoff delay and re-establishes the connection.
func (l *Listener) reconnect(delay time.Duration) {
	defer l.reconnecting.Store(false)

	if l.closed.Load() {
		return
	}

	select {
	case <-l.done:
		return
	case <-time.After(delay):
	}

	l.connMu.Lock()
	if l.conn != nil {
		l.conn.Close()
		l.conn = nil
	}
	l.connMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := l.connect(ctx); err != nil {
		// Reconnect failed, will retry on next read error
		return
	}
}

// pingLoop sends periodic ping frames to keep the connection alive.
func (l *Listener) pingLoop() {
	defer l.wg.Done()

	ticker := time.NewTicker(l.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.done:
			return
		case <-ticker.C:
			l.connMu.Lock()
			if l.conn != nil {
				l.conn.SetWriteDeadline(time.Now().Add(l.config.WriteTimeout))
				if err := l.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					// Connection might be dead, reader will handle reconnect
				}
			}
			l.connMu.Unlock()
		}
	}
}
