package registry

import (
	"context"
	"testing"

	"github.com/browsermux/mediator/internal/cdp"
	"github.com/browsermux/mediator/internal/ids"
	"github.com/browsermux/mediator/internal/session"
	"github.com/bytedance/sonic"
)

// stubTransport answers every CDP call needed to complete the Session
// attach protocol, so Registry tests never touch a real browser.
type stubTransport struct{}

func (stubTransport) Call(ctx context.Context, method string, params any, sessionID string) ([]byte, error) {
	switch method {
	case "Target.getTargets":
		return sonic.Marshal(map[string]any{
			"targetInfos": []map[string]any{
				{"targetId": "target-1", "type": "page", "url": "https://example.com"},
			},
		})
	case "Target.attachToTarget":
		return sonic.Marshal(map[string]any{"sessionId": "sess-1"})
	case "Page.getFrameTree":
		return sonic.Marshal(map[string]any{
			"frameTree": map[string]any{"frame": map[string]any{"url": "https://example.com"}},
		})
	case "Runtime.evaluate":
		return sonic.Marshal(map[string]any{"result": map[string]any{"value": "visible"}})
	}
	return []byte("{}"), nil
}

func (stubTransport) On(cdp.EventHandler) {}
func (stubTransport) Close() error        { return nil }

func stubDialer(ctx context.Context, token string) (session.Transport, error) {
	return stubTransport{}, nil
}

func TestAttachCreatesSessionOnFirstClient(t *testing.T) {
	r := New(session.DefaultConfig(), stubDialer, nil, nil)

	reused, _, err := r.Attach(context.Background(), ids.NewSocketID(), "tok-1", session.KindViewer, func(string, any) {})
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if reused {
		t.Fatalf("expected reused=false for the first client")
	}
	if r.SessionCount() != 1 {
		t.Fatalf("SessionCount = %d, want 1", r.SessionCount())
	}
}

func TestAttachReusesExistingSessionForSameToken(t *testing.T) {
	r := New(session.DefaultConfig(), stubDialer, nil, nil)
	socket1 := ids.NewSocketID()
	socket2 := ids.NewSocketID()

	if _, _, err := r.Attach(context.Background(), socket1, "tok-1", session.KindViewer, func(string, any) {}); err != nil {
		t.Fatalf("Attach 1: %v", err)
	}

	var primed []string
	reused, postReply, err := r.Attach(context.Background(), socket2, "tok-1", session.KindAPI, func(event string, payload any) {
		primed = append(primed, event)
	})
	if err != nil {
		t.Fatalf("Attach 2: %v", err)
	}
	if !reused {
		t.Fatalf("expected reused=true for the second client on the same token")
	}
	if r.SessionCount() != 1 {
		t.Fatalf("SessionCount = %d, want 1 (session reuse)", r.SessionCount())
	}
	if len(primed) != 0 {
		t.Fatalf("connected event must not be sent before postReply is invoked, got %v", primed)
	}
	if postReply == nil {
		t.Fatalf("expected a non-nil postReply on session reuse")
	}
	postReply()
	if len(primed) != 1 || primed[0] != "connected" {
		t.Fatalf("expected a synthesized connected event after postReply, got %v", primed)
	}
	if r.ClientCount("tok-1") != 2 {
		t.Fatalf("ClientCount = %d, want 2", r.ClientCount("tok-1"))
	}
}

func TestDetachRemovesSessionWhenLastClientLeaves(t *testing.T) {
	r := New(session.DefaultConfig(), stubDialer, nil, nil)
	socket := ids.NewSocketID()

	if _, _, err := r.Attach(context.Background(), socket, "tok-1", session.KindViewer, func(string, any) {}); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	r.Detach(context.Background(), socket)

	if r.SessionCount() != 0 {
		t.Fatalf("SessionCount = %d, want 0 after last client detaches", r.SessionCount())
	}
	if _, _, ok := r.Session(socket); ok {
		t.Fatalf("expected socket to be unbound after detach")
	}
}

func TestDetachIsNoopForUnknownSocket(t *testing.T) {
	r := New(session.DefaultConfig(), stubDialer, nil, nil)
	r.Detach(context.Background(), ids.NewSocketID()) // must not panic
}

func TestSnapshotReflectsLiveSessions(t *testing.T) {
	r := New(session.DefaultConfig(), stubDialer, nil, nil)
	if _, _, err := r.Attach(context.Background(), ids.NewSocketID(), "tok-1", session.KindViewer, func(string, any) {}); err != nil {
		t.Fatalf("Attach: %v", err)
	}

	snap := r.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("Snapshot len = %d, want 1", len(snap))
	}
	if snap[0].Token != "tok-1" || snap[0].ClientCount != 1 {
		t.Fatalf("Snapshot[0] = %+v", snap[0])
	}
}
