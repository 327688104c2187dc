// Package session implements the Browser Session (§4.2): a per-token
// stateful object wrapping one CDP transport, multiplexing viewer and
// API clients onto one browser page, and exposing the uniform browser
// action surface (navigation, page management, input, snapshot,
// screenshot).
package session

import (
	"context"
	"sync"
	"time"

	"github.com/browsermux/mediator/internal/cdp"
	"github.com/browsermux/mediator/internal/ids"
	"github.com/browsermux/mediator/internal/logging"
)

// Transport is the subset of *cdp.Transport a Session needs. Expressed
// as an interface so tests can inject a fake without a real WebSocket.
type Transport interface {
	Call(ctx context.Context, method string, params any, sessionID string) ([]byte, error)
	On(handler cdp.EventHandler)
	Close() error
}

// Dialer opens a Transport to one browser token's CDP endpoint.
type Dialer func(ctx context.Context, token string) (Transport, error)

// ClientKind distinguishes a Viewer (receives screencast frames and
// lifecycle events) from an API client (receives only replies to its
// own requests).
type ClientKind int

const (
	// KindViewer receives frames and push events.
	KindViewer ClientKind = iota
	// KindAPI receives only its own request replies.
	KindAPI
)

func (k ClientKind) String() string {
	if k == KindViewer {
		return "viewer"
	}
	return "api"
}

// Sink delivers a push event to one client's outbound channel. The
// Registry constructs one of these per client, backed by a buffered
// channel drained by that client's own writer goroutine (§5).
type Sink func(event string, payload any)

// Client is a tagged-variant handle: Viewer vs API is a field on one
// struct, not a type hierarchy (§9 design notes).
type Client struct {
	ID   ids.ClientID
	Kind ClientKind
	Sink Sink
}

// Send delivers a push event to this client. API clients' sinks are
// wired to a no-op by the Registry unless they opt into specific events.
func (c *Client) Send(event string, payload any) {
	if c.Sink != nil {
		c.Sink(event, payload)
	}
}

// ViewportConfig mirrors internal/config.ViewportConfig without
// depending on that package directly, keeping session free of the
// config import.
type ViewportConfig struct {
	Width  int
	Height int
	Scale  int
	Mobile bool
}

// ScreencastConfig mirrors internal/config.ScreencastConfig.
type ScreencastConfig struct {
	Quality       int
	EveryNthFrame int
}

// Config bundles the tunables a Session needs at construction time.
type Config struct {
	Viewport   ViewportConfig
	Screencast ScreencastConfig
}

// DefaultConfig matches internal/config.Default()'s Viewport/Screencast
// sections.
func DefaultConfig() Config {
	return Config{
		Viewport:   ViewportConfig{Width: 1280, Height: 720, Scale: 1, Mobile: false},
		Screencast: ScreencastConfig{Quality: 60, EveryNthFrame: 3},
	}
}

// Session is a per-token stateful object wrapping one CDP Transport.
type Session struct {
	Token string

	cfg     Config
	logger  *logging.Logger
	metrics Recorder
	dial    Dialer

	mu sync.Mutex

	transport Transport

	activeSessionID string
	activeTargetID  string
	currentURL      string

	viewers    map[ids.ClientID]*Client
	apiClients map[ids.ClientID]*Client

	screencastRunning bool
	pressedModifiers  map[string]bool

	closed bool
}

// Recorder receives session-level telemetry. internal/monitoring.Metrics
// satisfies this structurally.
type Recorder interface {
	IncSessionsCreated()
	IncSessionsClosed(reason string)
	SetScreencastsActive(count int)
	IncScreencastFrames()
}

type nopRecorder struct{}

func (nopRecorder) IncSessionsCreated()      {}
func (nopRecorder) IncSessionsClosed(string) {}
func (nopRecorder) SetScreencastsActive(int) {}
func (nopRecorder) IncScreencastFrames()     {}

// New constructs an unconnected Session. Callers must call Connect
// before issuing any action.
func New(token string, cfg Config, dial Dialer, logger *logging.Logger, metrics Recorder) *Session {
	if logger == nil {
		logger = logging.NewDefault()
	}
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &Session{
		Token:            token,
		cfg:              cfg,
		logger:           logger.WithToken(token),
		metrics:          metrics,
		dial:             dial,
		viewers:          make(map[ids.ClientID]*Client),
		apiClients:       make(map[ids.ClientID]*Client),
		pressedModifiers: make(map[string]bool),
	}
}

// ClientCount returns the total number of attached clients of any kind.
func (s *Session) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.viewers) + len(s.apiClients)
}

// callTimeout bounds a single CDP round trip issued from within a
// Session method that doesn't already have a caller-supplied context
// (background operations: screencast start/stop, event demux handling).
const callTimeout = 10 * time.Second
