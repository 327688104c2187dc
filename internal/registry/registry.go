package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/browsermux/mediator/internal/ids"
	"github.com/browsermux/mediator/internal/logging"
	"github.com/browsermux/mediator/internal/session"
	"go.uber.org/zap"
)

// gaugeRecorder is the subset of internal/monitoring.Metrics the Registry
// drives directly (§4.4, §4.5): active-client and active-session gauges.
// Asserted against the session.Recorder the Registry is constructed with
// so this package needn't import internal/monitoring.
type gaugeRecorder interface {
	SetClientsActive(kind string, count int)
	SetSessionsActive(count int)
}

// attachment is the Registry's private record binding one socket to the
// client and session it belongs to (§4.4). Session and Client are never
// reachable from outside except through the Registry's own maps.
type attachment struct {
	clientID ids.ClientID
	token    string
	kind     session.ClientKind
}

// SessionInfo is a point-in-time snapshot of one Session, consumed by
// internal/monitoring gauges and the admin GET /sessions endpoint (§6.5).
type SessionInfo struct {
	Token          string
	ClientCount    int
	URL            string
	ActiveTargetID string
}

// Registry owns every Session and Client in the process (§4.4, §9). It
// maps a token to its Session and a socket to the client/token attached
// through it, guarded by a single sync.RWMutex per §5.
type Registry struct {
	mu sync.RWMutex

	sessionsByToken map[string]*session.Session
	clientsBySocket map[ids.SocketID]*attachment
	tokenBySocket   map[ids.SocketID]string

	cfg     session.Config
	dial    session.Dialer
	logger  *logging.Logger
	metrics session.Recorder
}

// New constructs an empty Registry. cfg/dial/logger/metrics are threaded
// into every Session this Registry creates.
func New(cfg session.Config, dial session.Dialer, logger *logging.Logger, metrics session.Recorder) *Registry {
	if logger == nil {
		logger = logging.NewDefault()
	}
	return &Registry{
		sessionsByToken: make(map[string]*session.Session),
		clientsBySocket: make(map[ids.SocketID]*attachment),
		tokenBySocket:   make(map[ids.SocketID]string),
		cfg:             cfg,
		dial:            dial,
		logger:          logger,
		metrics:         metrics,
	}
}

// Attach implements attach(socket, token, clientType) (§4.4): bind a new
// client to the Session for token, creating and connecting the Session
// if none yet exists. Returns reused=true when an existing Session was
// joined instead of a fresh one being created.
//
// On reuse, the caller must invoke the returned postReply func (if
// non-nil) only after it has written its own reply to this attach
// request — it delivers the synthesized "connected" state-priming event
// (§4.4 step 3) and the ordering in §9 requires that event to reach the
// client strictly after the attach reply, not before it.
func (r *Registry) Attach(ctx context.Context, socket ids.SocketID, token string, kind session.ClientKind, sink session.Sink) (reused bool, postReply func(), err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, already := r.tokenBySocket[socket]; already {
		r.detachLocked(socket)
	}

	client := &session.Client{ID: ids.NewClientID(), Kind: kind, Sink: sink}

	if sess, ok := r.sessionsByToken[token]; ok {
		sess.AddClient(ctx, client)
		r.bindLocked(socket, client.ID, token, kind)
		r.recordGaugesLocked()
		postReply = func() {
			client.Send("connected", map[string]any{"url": "", "targetId": nil})
		}
		return true, postReply, nil
	}

	sess := session.New(token, r.cfg, r.dial, r.logger.WithToken(token), r.metrics)
	r.sessionsByToken[token] = sess
	sess.AddClient(ctx, client)
	r.bindLocked(socket, client.ID, token, kind)

	if err := sess.Connect(ctx); err != nil {
		sess.RemoveClient(ctx, client.ID, kind)
		delete(r.sessionsByToken, token)
		r.unbindLocked(socket)
		r.recordGaugesLocked()
		return false, nil, fmt.Errorf("connect session for token: %w", err)
	}
	r.recordGaugesLocked()
	return false, nil, nil
}

// Detach implements detach(socket) (§4.4): unbind the client, and if its
// Session now has zero clients, close and forget the Session.
func (r *Registry) Detach(ctx context.Context, socket ids.SocketID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.detachLocked(socket)
}

func (r *Registry) detachLocked(socket ids.SocketID) {
	att, ok := r.clientsBySocket[socket]
	if !ok {
		return
	}
	sess, ok := r.sessionsByToken[att.token]
	if ok {
		ctx := context.Background()
		remaining := sess.RemoveClient(ctx, att.clientID, att.kind)
		if remaining == 0 {
			if err := sess.Close("no clients remaining"); err != nil {
				r.logger.Warn("error closing empty session", zap.Error(err))
			}
			delete(r.sessionsByToken, att.token)
		}
	}
	r.unbindLocked(socket)
	r.recordGaugesLocked()
}

// recordGaugesLocked pushes the current active-client (by kind) and
// active-session counts to the Registry's metrics, if it was built with
// one that tracks them. Callers must already hold r.mu.
func (r *Registry) recordGaugesLocked() {
	rec, ok := r.metrics.(gaugeRecorder)
	if !ok {
		return
	}
	var viewers, apiClients int
	for _, att := range r.clientsBySocket {
		switch att.kind {
		case session.KindViewer:
			viewers++
		case session.KindAPI:
			apiClients++
		}
	}
	rec.SetClientsActive("viewer", viewers)
	rec.SetClientsActive("api", apiClients)
	rec.SetSessionsActive(len(r.sessionsByToken))
}

// OnSocketDisconnect implements onSocketDisconnect(socket) = detach(socket).
func (r *Registry) OnSocketDisconnect(ctx context.Context, socket ids.SocketID) {
	r.Detach(ctx, socket)
}

func (r *Registry) bindLocked(socket ids.SocketID, clientID ids.ClientID, token string, kind session.ClientKind) {
	r.clientsBySocket[socket] = &attachment{clientID: clientID, token: token, kind: kind}
	r.tokenBySocket[socket] = token
}

func (r *Registry) unbindLocked(socket ids.SocketID) {
	delete(r.clientsBySocket, socket)
	delete(r.tokenBySocket, socket)
}

// Session returns the Session and client kind bound to socket, if any.
func (r *Registry) Session(socket ids.SocketID) (*session.Session, session.ClientKind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	att, ok := r.clientsBySocket[socket]
	if !ok {
		return nil, 0, false
	}
	sess, ok := r.sessionsByToken[att.token]
	if !ok {
		return nil, 0, false
	}
	return sess, att.kind, true
}

// SessionCount returns the number of live Sessions.
func (r *Registry) SessionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessionsByToken)
}

// ClientCount returns the number of clients attached to token's Session,
// or 0 if no such Session exists.
func (r *Registry) ClientCount(token string) int {
	r.mu.RLock()
	sess, ok := r.sessionsByToken[token]
	r.mu.RUnlock()
	if !ok {
		return 0
	}
	return sess.ClientCount()
}

// Snapshot returns a point-in-time listing of every live Session, for
// internal/monitoring gauges and the admin GET /sessions endpoint (§6.5).
func (r *Registry) Snapshot() []SessionInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]SessionInfo, 0, len(r.sessionsByToken))
	for token, sess := range r.sessionsByToken {
		url, targetID, clients := sess.Info()
		out = append(out, SessionInfo{
			Token:          token,
			ClientCount:    clients,
			URL:            url,
			ActiveTargetID: targetID,
		})
	}
	return out
}
