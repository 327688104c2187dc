package monitoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecordCDPCallUpdatesSnapshot(t *testing.T) {
	m := NewMetrics()

	m.RecordCDPCall("Page.navigate", 5*time.Millisecond, "ok")
	m.RecordCDPCall("Page.navigate", 5*time.Millisecond, "error")

	snap := m.Snapshot()
	assert.EqualValues(t, 2, snap.CDPCallsTotal)
	assert.EqualValues(t, 1, snap.CDPErrorsTotal)
}

func TestSetSessionsActiveUpdatesSnapshot(t *testing.T) {
	m := NewMetrics()

	m.SetSessionsActive(3)

	snap := m.Snapshot()
	assert.EqualValues(t, 3, snap.SessionsActive)
}

func TestSetClientsActiveUpdatesSnapshot(t *testing.T) {
	m := NewMetrics()

	m.SetClientsActive("viewer", 2)

	snap := m.Snapshot()
	assert.EqualValues(t, 2, snap.ClientsActive)
}

func TestIndependentInstancesDoNotCollide(t *testing.T) {
	// Constructing two Metrics must not panic from duplicate collector
	// registration, since each owns its own registry.
	a := NewMetrics()
	b := NewMetrics()

	a.IncSessionsCreated()
	b.IncSessionsCreated()

	assert.NotSame(t, a.Registry, b.Registry)
}

func TestRecordCDPEventAndClientMessage(t *testing.T) {
	m := NewMetrics()

	m.RecordCDPEvent("Page.frameNavigated")
	m.RecordClientMessage("click", "ok")
	m.IncScreencastFrames()
	m.SetScreencastsActive(1)
	m.IncSessionsClosed("client_request")

	// These collectors don't feed the snapshot; exercising them here
	// guards against a panic from a mislabeled Vec.
}
