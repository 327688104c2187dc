package session

import (
	"context"
	"testing"
)

func TestSwitchToPageDetachesAndReattaches(t *testing.T) {
	s, ft := connectedSession(t)
	ft.respond("Target.attachToTarget", map[string]any{"sessionId": "sess-2"})
	ft.respond("Page.getFrameTree", map[string]any{
		"frameTree": map[string]any{"frame": map[string]any{"url": "https://other.example"}},
	})

	if err := s.SwitchToPage(context.Background(), "target-2"); err != nil {
		t.Fatalf("SwitchToPage: %v", err)
	}

	if s.activeTargetID != "target-2" {
		t.Fatalf("activeTargetID = %q, want target-2", s.activeTargetID)
	}
	if len(ft.callsTo("Target.detachFromTarget")) != 1 {
		t.Fatalf("expected 1 Target.detachFromTarget call")
	}
	if len(ft.callsTo("Target.activateTarget")) != 1 {
		t.Fatalf("expected 1 Target.activateTarget call")
	}
}

func TestSwitchToPageIsNoopForActiveTarget(t *testing.T) {
	s, ft := connectedSession(t)

	if err := s.SwitchToPage(context.Background(), "target-1"); err != nil {
		t.Fatalf("SwitchToPage: %v", err)
	}
	if len(ft.callsTo("Target.detachFromTarget")) != 0 {
		t.Fatalf("expected no detach when switching to the already-active target")
	}
}

func TestNavigateHistoryNoopsAtBoundary(t *testing.T) {
	s, ft := connectedSession(t)
	ft.respond("Page.getNavigationHistory", map[string]any{
		"currentIndex": 0,
		"entries":      []map[string]any{{"id": 1, "url": "https://example.com"}},
	})

	if err := s.GoBack(context.Background()); err != nil {
		t.Fatalf("GoBack: %v", err)
	}
	if len(ft.callsTo("Page.navigateToHistoryEntry")) != 0 {
		t.Fatalf("expected no navigateToHistoryEntry call at history boundary")
	}
}

func TestGoForwardNavigatesToNextEntry(t *testing.T) {
	s, ft := connectedSession(t)
	ft.respond("Page.getNavigationHistory", map[string]any{
		"currentIndex": 0,
		"entries": []map[string]any{
			{"id": 1, "url": "https://example.com"},
			{"id": 2, "url": "https://example.com/next"},
		},
	})

	if err := s.GoForward(context.Background()); err != nil {
		t.Fatalf("GoForward: %v", err)
	}
	calls := ft.callsTo("Page.navigateToHistoryEntry")
	if len(calls) != 1 {
		t.Fatalf("expected 1 navigateToHistoryEntry call, got %d", len(calls))
	}
	if calls[0].Params.(map[string]any)["entryId"] != 2 {
		t.Fatalf("entryId = %v, want 2", calls[0].Params.(map[string]any)["entryId"])
	}
}
