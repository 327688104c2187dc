package session

import (
	"errors"
	"fmt"
)

// ErrNotConnected is returned by any action issued against a Session
// whose transport is closed or was never connected.
var ErrNotConnected = errors.New("browser not connected")

// ErrNoPage is returned when no page target can be found or created.
var ErrNoPage = errors.New("no page available")

// CDPError wraps a CDP-originated failure (a *cdp.CallError or a
// transport error) with the action that triggered it, so callers can
// errors.Is/As through to the underlying cause while logging/broadcast
// text stays consistent end-to-end (§7 propagation policy).
type CDPError struct {
	Action string
	Err    error
}

func (e *CDPError) Error() string {
	return fmt.Sprintf("%s: %s", e.Action, e.Err)
}

func (e *CDPError) Unwrap() error { return e.Err }

// ElementNotFoundError is returned by click(backendNodeId) when the box
// model is missing or empty (§4.2, §7).
type ElementNotFoundError struct {
	BackendNodeID int
}

func (e *ElementNotFoundError) Error() string {
	return fmt.Sprintf("Element with backendNodeId %d not found or has no box model", e.BackendNodeID)
}

func wrapCDP(action string, err error) error {
	if err == nil {
		return nil
	}
	return &CDPError{Action: action, Err: err}
}
