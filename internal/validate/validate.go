// Package validate guards inbound client messages (§6.2) so one
// misbehaving client cannot stall or crash the shared process: oversized
// payloads, malformed tokens/ids, and out-of-range pointer coordinates are
// rejected before they ever reach a Session.
package validate

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

// Size limits, in bytes.
const (
	MaxMessageSize = 64 * 1024 // single client->core frame
	MaxTextSize    = 16 * 1024 // insertText/fill payload
	MaxURLLength   = 8 * 1024
)

// Coordinate bounds. The spec's default viewport is 1280x720, but clients
// may run a larger one; these are generous backstops against garbage
// input (negative numbers, NaN-derived overflow), not a tight fit to any
// one viewport.
const (
	MinCoordinate = 0
	MaxCoordinate = 16384
)

var (
	// TokenPattern allows what the upstream browser pool actually hands
	// out: alphanumeric, hyphens, underscores.
	TokenPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,128}$`)
	// TargetIDPattern matches CDP target/session ids, which are opaque
	// lowercase hex strings in practice but are treated generously here.
	TargetIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,128}$`)
)

// Token validates an opaque session token.
func Token(token string) error {
	if token == "" {
		return fmt.Errorf("token is required")
	}
	if !TokenPattern.MatchString(token) {
		return fmt.Errorf("token contains invalid characters")
	}
	return nil
}

// TargetID validates a CDP target or session id.
func TargetID(id, field string) error {
	if id == "" {
		return fmt.Errorf("%s is required", field)
	}
	if !TargetIDPattern.MatchString(id) {
		return fmt.Errorf("%s contains invalid characters", field)
	}
	return nil
}

// URL validates a navigation URL's length; scheme/host validity is left
// to the browser, which is the authority on what it can navigate to.
func URL(url string) error {
	if url == "" {
		return fmt.Errorf("url is required")
	}
	if utf8.RuneCountInString(url) > MaxURLLength {
		return fmt.Errorf("url exceeds maximum length of %d", MaxURLLength)
	}
	return nil
}

// Coordinate validates a single pointer coordinate component.
func Coordinate(v float64, field string) error {
	if v < MinCoordinate || v > MaxCoordinate {
		return fmt.Errorf("%s %.0f out of range [%d, %d]", field, v, MinCoordinate, MaxCoordinate)
	}
	return nil
}

// Text validates a text payload destined for insertText/fill.
func Text(value string) error {
	if utf8.RuneCountInString(value) > MaxTextSize {
		return fmt.Errorf("text exceeds maximum length of %d", MaxTextSize)
	}
	return nil
}

// Message validates the size of a raw inbound client frame before it is
// even decoded, so a client cannot force expensive JSON parsing of an
// arbitrarily large payload.
func Message(data []byte) error {
	if len(data) > MaxMessageSize {
		return fmt.Errorf("message size %d exceeds maximum %d bytes", len(data), MaxMessageSize)
	}
	return nil
}

// BackendNodeID validates a backendDOMNodeId supplied by a client for
// click/fill; CDP node ids are non-negative integers.
func BackendNodeID(id int) error {
	if id < 0 {
		return fmt.Errorf("backendNodeId must be non-negative, got %d", id)
	}
	return nil
}
