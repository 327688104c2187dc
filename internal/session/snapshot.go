package session

import (
	"context"

	"github.com/browsermux/mediator/internal/a11y"
	"github.com/microcosm-cc/bluemonday"
)

var debugTextPolicy = bluemonday.StrictPolicy()

// GetSnapshot implements getSnapshot (§4.2): fetch the full a11y tree,
// optionally filter to interesting nodes, optionally flatten to lines.
// Returns either a string (compressed) or []a11y.Node (uncompressed).
func (s *Session) GetSnapshot(ctx context.Context, interestingOnly, compressed bool) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transport == nil {
		return nil, ErrNotConnected
	}

	if _, err := s.pageCall(ctx, "Accessibility.enable", nil); err != nil {
		return nil, wrapCDP("Accessibility.enable", err)
	}

	var tree fullAXTreeResult
	raw, err := s.pageCall(ctx, "Accessibility.getFullAXTree", nil)
	if err != nil {
		return nil, wrapCDP("Accessibility.getFullAXTree", err)
	}
	if err := decode(raw, &tree); err != nil {
		return nil, wrapCDP("Accessibility.getFullAXTree", err)
	}

	nodes := tree.Nodes
	if interestingOnly {
		nodes = a11y.Filter(nodes)
	}
	if !compressed {
		return nodes, nil
	}
	return a11y.Render(nodes), nil
}

// sanitizeForDebug strips any markup from accessibility text. Within
// this module only its test calls it: the admin /sessions handler in
// cmd/server applies its own strict policy to the session URL (§6.5),
// and the WebSocket reply to getSnapshot carries raw text unchanged.
func sanitizeForDebug(text string) string {
	return debugTextPolicy.Sanitize(text)
}
