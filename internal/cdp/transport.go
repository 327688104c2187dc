package cdp

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/browsermux/mediator/internal/logging"
	"github.com/browsermux/mediator/internal/resilience"
	"github.com/gorilla/websocket"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Recorder receives call/event telemetry. internal/monitoring.Metrics
// satisfies this structurally; Transport never imports monitoring
// directly so it can be tested and reused without pulling in Prometheus.
type Recorder interface {
	RecordCDPCall(method string, d time.Duration, outcome string)
	RecordCDPEvent(method string)
}

type nopRecorder struct{}

func (nopRecorder) RecordCDPCall(string, time.Duration, string) {}
func (nopRecorder) RecordCDPEvent(string)                       {}

// EventHandler receives every inbound frame that carries no reply id.
type EventHandler func(Event)

// Transport carries CDP over one bidirectional WebSocket connection,
// demultiplexing request/reply pairs (keyed by a locally-allocated,
// monotonically increasing id) from asynchronous, optionally
// session-tagged events.
type Transport struct {
	conn *websocket.Conn

	writeMu sync.Mutex
	nextID  atomic.Int64

	pendingMu sync.Mutex
	pending   map[int64]chan reply

	handlersMu sync.RWMutex
	handlers   []EventHandler

	closed  atomic.Bool
	closeCh chan struct{}

	logger  *logging.Logger
	metrics Recorder
}

type reply struct {
	result []byte
	err    error
}

// Dial opens a CDP Transport to the given WebSocket URL
// (ws://<host>:<port>/browser?token=<token>), guarding the dial attempt
// with breaker if non-nil so a browser pool token that keeps failing to
// come up is not hammered with reconnect attempts.
func Dial(ctx context.Context, url string, breaker *resilience.Breaker, logger *logging.Logger, metrics Recorder) (*Transport, error) {
	if logger == nil {
		logger = logging.NewDefault()
	}
	if metrics == nil {
		metrics = nopRecorder{}
	}

	dial := func() (any, error) {
		dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
		conn, _, err := dialer.DialContext(ctx, url, nil)
		if err != nil {
			return nil, fmt.Errorf("cdp dial %s: %w", url, err)
		}
		return conn, nil
	}

	var connAny any
	var err error
	if breaker != nil {
		connAny, err = breaker.Execute(dial)
	} else {
		connAny, err = dial()
	}
	if err != nil {
		return nil, err
	}

	t := &Transport{
		conn:    connAny.(*websocket.Conn),
		pending: make(map[int64]chan reply),
		closeCh: make(chan struct{}),
		logger:  logger,
		metrics: metrics,
	}
	go t.readLoop()
	return t, nil
}

// Call sends {id, method, params, sessionId?}, awaits the matching reply,
// and surfaces a *CallError if the reply carried one.
func (t *Transport) Call(ctx context.Context, method string, params any, sessionID string) ([]byte, error) {
	if t.closed.Load() {
		return nil, ErrTransportClosed
	}

	id := t.nextID.Add(1)
	ch := make(chan reply, 1)

	t.pendingMu.Lock()
	t.pending[id] = ch
	t.pendingMu.Unlock()

	start := time.Now()
	cleanup := func() {
		t.pendingMu.Lock()
		delete(t.pending, id)
		t.pendingMu.Unlock()
	}

	req := request{ID: id, Method: method, Params: params, SessionID: sessionID}
	data, err := marshal(req)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("marshal %s: %w", method, err)
	}

	t.writeMu.Lock()
	err = t.conn.WriteMessage(websocket.TextMessage, data)
	t.writeMu.Unlock()
	if err != nil {
		cleanup()
		t.metrics.RecordCDPCall(method, time.Since(start), "write_error")
		return nil, fmt.Errorf("write %s: %w", method, err)
	}

	select {
	case r := <-ch:
		outcome := "ok"
		if r.err != nil {
			outcome = "error"
		}
		t.metrics.RecordCDPCall(method, time.Since(start), outcome)
		return r.result, r.err
	case <-t.closeCh:
		cleanup()
		t.metrics.RecordCDPCall(method, time.Since(start), "closed")
		return nil, ErrTransportClosed
	case <-ctx.Done():
		cleanup()
		t.metrics.RecordCDPCall(method, time.Since(start), "ctx_cancelled")
		return nil, ctx.Err()
	}
}

// On subscribes handler to every inbound event frame. Handlers run
// synchronously on the transport's single reader goroutine, in the order
// frames arrived, so a slow handler delays subsequent event delivery —
// callers that might block should hand off to their own goroutine/queue.
func (t *Transport) On(handler EventHandler) {
	t.handlersMu.Lock()
	defer t.handlersMu.Unlock()
	t.handlers = append(t.handlers, handler)
}

// Close fails all pending calls with ErrTransportClosed and releases the
// underlying connection. Safe to call more than once.
func (t *Transport) Close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(t.closeCh)

	t.pendingMu.Lock()
	pending := t.pending
	t.pending = make(map[int64]chan reply)
	t.pendingMu.Unlock()

	var errs error
	for _, ch := range pending {
		ch <- reply{err: ErrTransportClosed}
	}
	if err := t.conn.Close(); err != nil {
		errs = multierr.Append(errs, err)
	}
	return errs
}

func (t *Transport) readLoop() {
	defer t.Close()

	for {
		_, data, err := t.conn.ReadMessage()
		if err != nil {
			t.logger.Debug("cdp read loop exiting", zap.Error(err))
			return
		}

		var f frame
		if err := unmarshal(data, &f); err != nil {
			t.logger.Warn("cdp frame decode failed", zap.Error(err))
			continue
		}

		t.pendingMu.Lock()
		ch, isReply := t.pending[f.ID]
		if isReply {
			delete(t.pending, f.ID)
		}
		t.pendingMu.Unlock()

		if isReply {
			if f.Error != nil {
				ch <- reply{err: f.Error}
			} else {
				ch <- reply{result: []byte(f.Result)}
			}
			continue
		}

		if f.Method == "" {
			continue
		}

		t.metrics.RecordCDPEvent(f.Method)
		evt := Event{Method: f.Method, Params: []byte(f.Params), SessionID: f.SessionID}

		t.handlersMu.RLock()
		handlers := t.handlers
		t.handlersMu.RUnlock()
		for _, h := range handlers {
			h(evt)
		}
	}
}
