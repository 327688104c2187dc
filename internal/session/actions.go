package session

import (
	"context"

	"gonum.org/v1/gonum/stat"
)

// Click implements click(backendNodeId) (§4.2): resolve the element's
// box model, click its centroid.
func (s *Session) Click(ctx context.Context, backendNodeID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transport == nil {
		return ErrNotConnected
	}

	if _, err := s.pageCall(ctx, "DOM.enable", nil); err != nil {
		return wrapCDP("DOM.enable", err)
	}

	var box boxModelResult
	raw, err := s.pageCall(ctx, "DOM.getBoxModel", map[string]any{"backendNodeId": backendNodeID})
	if err != nil {
		return wrapCDP("DOM.getBoxModel", err)
	}
	if err := decode(raw, &box); err != nil {
		return wrapCDP("DOM.getBoxModel", err)
	}
	if box.Model == nil || len(box.Model.Content) < 8 {
		return &ElementNotFoundError{BackendNodeID: backendNodeID}
	}

	xs := []float64{box.Model.Content[0], box.Model.Content[2], box.Model.Content[4], box.Model.Content[6]}
	ys := []float64{box.Model.Content[1], box.Model.Content[3], box.Model.Content[5], box.Model.Content[7]}
	cx := stat.Mean(xs, nil)
	cy := stat.Mean(ys, nil)

	if err := s.dispatchMouse(ctx, "mousePressed", cx, cy, 0, 0); err != nil {
		return err
	}
	return s.dispatchMouse(ctx, "mouseReleased", cx, cy, 0, 0)
}

// Fill implements fill(backendNodeId, value) (§4.2): focus the
// element, select-all, delete, then insert the new value.
func (s *Session) Fill(ctx context.Context, backendNodeID int, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transport == nil {
		return ErrNotConnected
	}

	if _, err := s.pageCall(ctx, "DOM.enable", nil); err != nil {
		return wrapCDP("DOM.enable", err)
	}
	if _, err := s.pageCall(ctx, "DOM.focus", map[string]any{"backendNodeId": backendNodeID}); err != nil {
		return wrapCDP("DOM.focus", err)
	}

	// Ctrl+A: select all.
	if err := s.dispatchKeyPair(ctx, "a", "KeyA", 2, 65); err != nil {
		return err
	}
	// Backspace: delete selection.
	if err := s.dispatchKeyPair(ctx, "Backspace", "Backspace", 0, 8); err != nil {
		return err
	}

	if _, err := s.pageCall(ctx, "Input.insertText", map[string]any{"text": value}); err != nil {
		return wrapCDP("Input.insertText", err)
	}
	return nil
}

func (s *Session) dispatchKeyPair(ctx context.Context, key, code string, flags, vk int) error {
	for _, eventType := range []string{"keyDown", "keyUp"} {
		_, err := s.pageCall(ctx, "Input.dispatchKeyEvent", map[string]any{
			"type":                  eventType,
			"key":                   key,
			"code":                  code,
			"modifiers":             flags,
			"windowsVirtualKeyCode": vk,
			"nativeVirtualKeyCode":  vk,
		})
		if err != nil {
			return wrapCDP("Input.dispatchKeyEvent", err)
		}
	}
	return nil
}
