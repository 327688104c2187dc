package session

import (
	"context"
	"unicode/utf8"

	"github.com/browsermux/mediator/internal/keymap"
)

// ClickAt dispatches a press+release at (x, y) (§4.2 pointer input).
func (s *Session) ClickAt(ctx context.Context, x, y float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transport == nil {
		return ErrNotConnected
	}
	if err := s.dispatchMouse(ctx, "mousePressed", x, y, 0, 0); err != nil {
		return err
	}
	return s.dispatchMouse(ctx, "mouseReleased", x, y, 0, 0)
}

// MouseMove dispatches a single mouseMoved event.
func (s *Session) MouseMove(ctx context.Context, x, y float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transport == nil {
		return ErrNotConnected
	}
	return s.dispatchMouse(ctx, "mouseMoved", x, y, 0, 0)
}

// Scroll dispatches a mouseWheel event at (x, y) with the given deltas.
func (s *Session) Scroll(ctx context.Context, x, y, dx, dy float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transport == nil {
		return ErrNotConnected
	}
	return s.dispatchMouse(ctx, "mouseWheel", x, y, dx, dy)
}

func (s *Session) dispatchMouse(ctx context.Context, eventType string, x, y, dx, dy float64) error {
	params := map[string]any{"type": eventType, "x": x, "y": y}
	if eventType == "mousePressed" || eventType == "mouseReleased" {
		params["button"] = "left"
		params["clickCount"] = 1
	}
	if eventType == "mouseWheel" {
		params["deltaX"] = dx
		params["deltaY"] = dy
	}
	if _, err := s.pageCall(ctx, "Input.dispatchMouseEvent", params); err != nil {
		return wrapCDP("Input.dispatchMouseEvent", err)
	}
	return nil
}

// Modifiers mirrors keymap.Modifiers for the session's public API so
// callers in internal/ws need not import internal/keymap directly.
type Modifiers = keymap.Modifiers

var modifierOrderDown = []string{"ctrl", "alt", "shift"}
var modifierOrderUp = []string{"shift", "alt", "ctrl"}

type syntheticModifier struct {
	trackedAs string
	key       keymap.Synthetic
}

func syntheticFor(name string) syntheticModifier {
	switch name {
	case "ctrl":
		return syntheticModifier{trackedAs: "ctrl", key: keymap.ControlKey}
	case "alt":
		return syntheticModifier{trackedAs: "alt", key: keymap.AltKey}
	case "shift":
		return syntheticModifier{trackedAs: "shift", key: keymap.ShiftKey}
	}
	return syntheticModifier{}
}

func wants(m Modifiers, name string) bool {
	switch name {
	case "ctrl":
		return m.Ctrl || m.Meta
	case "alt":
		return m.Alt
	case "shift":
		return m.Shift
	}
	return false
}

// flagsFor computes modifierFlags for the subset of pressedModifiers
// named true in the `pressed` set, following keymap.Flags' bit layout.
func flagsFor(pressed map[string]bool) int {
	return keymap.Flags(Modifiers{
		Ctrl:  pressed["ctrl"],
		Alt:   pressed["alt"],
		Shift: pressed["shift"],
	})
}

// KeyDown implements the modifier-discipline keydown sequence (§4.2).
func (s *Session) KeyDown(ctx context.Context, key, code string, modifiers Modifiers) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transport == nil {
		return ErrNotConnected
	}

	for _, name := range modifierOrderDown {
		if wants(modifiers, name) && !s.pressedModifiers[name] {
			sm := syntheticFor(name)
			flags := flagsFor(s.pressedModifiers)
			if _, err := s.pageCall(ctx, "Input.dispatchKeyEvent", map[string]any{
				"type":                  "keyDown",
				"key":                   sm.key.Key,
				"code":                  sm.key.Code,
				"modifiers":             flags,
				"windowsVirtualKeyCode": sm.key.VirtualKeyCode,
				"nativeVirtualKeyCode":  sm.key.VirtualKeyCode,
			}); err != nil {
				return wrapCDP("Input.dispatchKeyEvent", err)
			}
			s.pressedModifiers[name] = true
		}
	}

	flags := keymap.Flags(modifiers)
	vk := keymap.VirtualKeyCode(key, code)
	if _, err := s.pageCall(ctx, "Input.dispatchKeyEvent", map[string]any{
		"type":                  "keyDown",
		"key":                   key,
		"code":                  code,
		"modifiers":             flags,
		"windowsVirtualKeyCode": vk,
		"nativeVirtualKeyCode":  vk,
	}); err != nil {
		return wrapCDP("Input.dispatchKeyEvent", err)
	}

	if utf8.RuneCountInString(key) == 1 {
		if _, err := s.pageCall(ctx, "Input.dispatchKeyEvent", map[string]any{
			"type":      "char",
			"text":      key,
			"modifiers": flags,
		}); err != nil {
			return wrapCDP("Input.dispatchKeyEvent", err)
		}
	}
	return nil
}

// KeyUp implements the modifier-discipline keyup sequence (§4.2).
func (s *Session) KeyUp(ctx context.Context, key, code string, modifiers Modifiers) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transport == nil {
		return ErrNotConnected
	}

	flags := keymap.Flags(modifiers)
	vk := keymap.VirtualKeyCode(key, code)
	if _, err := s.pageCall(ctx, "Input.dispatchKeyEvent", map[string]any{
		"type":                  "keyUp",
		"key":                   key,
		"code":                  code,
		"modifiers":             flags,
		"windowsVirtualKeyCode": vk,
		"nativeVirtualKeyCode":  vk,
	}); err != nil {
		return wrapCDP("Input.dispatchKeyEvent", err)
	}

	for _, name := range modifierOrderUp {
		if s.pressedModifiers[name] && !wants(modifiers, name) {
			delete(s.pressedModifiers, name)
			sm := syntheticFor(name)
			releaseFlags := flagsFor(s.pressedModifiers)
			if _, err := s.pageCall(ctx, "Input.dispatchKeyEvent", map[string]any{
				"type":                  "keyUp",
				"key":                   sm.key.Key,
				"code":                  sm.key.Code,
				"modifiers":             releaseFlags,
				"windowsVirtualKeyCode": sm.key.VirtualKeyCode,
				"nativeVirtualKeyCode":  sm.key.VirtualKeyCode,
			}); err != nil {
				return wrapCDP("Input.dispatchKeyEvent", err)
			}
		}
	}
	return nil
}

// IMESetComposition forwards to Input.imeSetComposition.
func (s *Session) IMESetComposition(ctx context.Context, text string, selectionStart, selectionEnd int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transport == nil {
		return ErrNotConnected
	}
	_, err := s.pageCall(ctx, "Input.imeSetComposition", map[string]any{
		"text":           text,
		"selectionStart": selectionStart,
		"selectionEnd":   selectionEnd,
	})
	if err != nil {
		return wrapCDP("Input.imeSetComposition", err)
	}
	return nil
}

// IMECommitComposition forwards to Input.insertText.
func (s *Session) IMECommitComposition(ctx context.Context, text string) error {
	return s.InsertText(ctx, text)
}

// InsertText forwards to Input.insertText.
func (s *Session) InsertText(ctx context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transport == nil {
		return ErrNotConnected
	}
	if _, err := s.pageCall(ctx, "Input.insertText", map[string]any{"text": text}); err != nil {
		return wrapCDP("Input.insertText", err)
	}
	return nil
}
