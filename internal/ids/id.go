// Package ids provides centralized ULID generation for the mediator.
//
// It offers type-safe ULID generation with:
//   - Lexicographic sortability: client/session churn can be read back in
//     creation order without a separate timestamp column.
//   - Prefixed types: type-specific prefixes for debugging (client_*, sock_*).
//   - Type safety: separate types prevent a ClientID being passed where a
//     SocketID is expected.
//   - Zero conflicts: guaranteed uniqueness across every attach.
package ids

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ClientID identifies one attached WebSocket client (viewer or API).
type ClientID string

// SocketID identifies the underlying transport-level socket a client is
// attached through; distinct from ClientID so the two cannot be mixed up.
// internal/ws mints one per WebSocket connection and the Registry indexes
// attachments by it.
type SocketID string

const (
	ClientPrefix = "client"
	SocketPrefix = "sock"
)

// Generator generates ULIDs with optional prefixes.
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance.
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a new ULID generator with cryptographically secure entropy.
func NewGenerator() *Generator {
	return &Generator{entropy: rand.Reader}
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source,
// useful for deterministic ids in tests.
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy}
}

// Generate creates a new ULID.
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateString creates a new ULID as a string.
func (g *Generator) GenerateString() string {
	return g.Generate().String()
}

// GenerateWithPrefix creates a prefixed ULID string, e.g. "client_01H...".
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.GenerateString())
}

// NewClientID generates a new client id.
func NewClientID() ClientID {
	return ClientID(Default().GenerateWithPrefix(ClientPrefix))
}

// NewSocketID generates a new socket id.
func NewSocketID() SocketID {
	return SocketID(Default().GenerateWithPrefix(SocketPrefix))
}

func (id ClientID) String() string { return string(id) }
func (id SocketID) String() string { return string(id) }

// IsValid reports whether id is a well-formed ULID (ignoring any prefix).
func IsValid(id string) bool {
	_, err := ulid.Parse(stripPrefix(id))
	return err == nil
}

func stripPrefix(id string) string {
	for i := len(id) - 1; i >= 0; i-- {
		if id[i] == '_' {
			return id[i+1:]
		}
	}
	return id
}
