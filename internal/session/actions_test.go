package session

import (
	"context"
	"errors"
	"testing"
)

func TestClickDispatchesAtBoxModelCentroid(t *testing.T) {
	s, ft := connectedSession(t)
	ft.respond("DOM.getBoxModel", map[string]any{
		"model": map[string]any{
			"content": []float64{0, 0, 10, 0, 10, 10, 0, 10},
		},
	})

	if err := s.Click(context.Background(), 42); err != nil {
		t.Fatalf("Click: %v", err)
	}

	events := ft.callsTo("Input.dispatchMouseEvent")
	if len(events) != 2 {
		t.Fatalf("expected 2 mouse events, got %d", len(events))
	}
	params := events[0].Params.(map[string]any)
	if params["x"] != 5.0 || params["y"] != 5.0 {
		t.Fatalf("click centroid = (%v, %v), want (5, 5)", params["x"], params["y"])
	}
}

func TestClickReturnsElementNotFoundWhenNoBoxModel(t *testing.T) {
	s, ft := connectedSession(t)
	ft.respond("DOM.getBoxModel", map[string]any{"model": nil})

	err := s.Click(context.Background(), 42)
	var notFound *ElementNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Click err = %v, want *ElementNotFoundError", err)
	}
	if notFound.BackendNodeID != 42 {
		t.Fatalf("BackendNodeID = %d, want 42", notFound.BackendNodeID)
	}
}

func TestFillSelectsAllThenInsertsText(t *testing.T) {
	s, ft := connectedSession(t)

	if err := s.Fill(context.Background(), 7, "hello"); err != nil {
		t.Fatalf("Fill: %v", err)
	}

	insertCalls := ft.callsTo("Input.insertText")
	if len(insertCalls) != 1 {
		t.Fatalf("expected 1 Input.insertText call, got %d", len(insertCalls))
	}
	if insertCalls[0].Params.(map[string]any)["text"] != "hello" {
		t.Fatalf("inserted text = %v, want hello", insertCalls[0].Params.(map[string]any)["text"])
	}
	keyEvents := ft.callsTo("Input.dispatchKeyEvent")
	if len(keyEvents) != 4 { // Ctrl+A down/up, Backspace down/up
		t.Fatalf("expected 4 synthetic key events, got %d", len(keyEvents))
	}
}
