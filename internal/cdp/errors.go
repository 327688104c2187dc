package cdp

import (
	"errors"
	"fmt"
)

// ErrTransportClosed is returned by Call for any call outstanding at the
// moment the transport is closed, and by every Call issued afterward.
var ErrTransportClosed = errors.New("transport closed")

// CallError wraps a CDP-reported error reply: {"error": {"code", "message"}}.
// It is returned from Call verbatim so a caller can match on Code via
// errors.As without string-matching Message.
type CallError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *CallError) Error() string {
	return fmt.Sprintf("cdp error %d: %s", e.Code, e.Message)
}
