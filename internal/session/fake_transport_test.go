package session

import (
	"context"
	"sync"

	"github.com/browsermux/mediator/internal/cdp"
	"github.com/bytedance/sonic"
)

// fakeCall records one invocation of fakeTransport.Call.
type fakeCall struct {
	Method    string
	Params    any
	SessionID string
}

// fakeTransport is a Transport stand-in driven entirely by a per-method
// response table, so Session tests never open a real WebSocket.
type fakeTransport struct {
	mu        sync.Mutex
	responses map[string]any  // method -> value to marshal as the result
	errors    map[string]error
	calls     []fakeCall
	handler   cdp.EventHandler
	closed    bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		responses: make(map[string]any),
		errors:    make(map[string]error),
	}
}

func (f *fakeTransport) respond(method string, value any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[method] = value
}

func (f *fakeTransport) fail(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors[method] = err
}

func (f *fakeTransport) Call(ctx context.Context, method string, params any, sessionID string) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fakeCall{Method: method, Params: params, SessionID: sessionID})
	if err, ok := f.errors[method]; ok {
		f.mu.Unlock()
		return nil, err
	}
	value, ok := f.responses[method]
	f.mu.Unlock()
	if !ok {
		return []byte("{}"), nil
	}
	return sonic.Marshal(value)
}

func (f *fakeTransport) On(handler cdp.EventHandler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = handler
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeTransport) emit(e cdp.Event) {
	f.mu.Lock()
	h := f.handler
	f.mu.Unlock()
	if h != nil {
		h(e)
	}
}

func (f *fakeTransport) callsTo(method string) []fakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []fakeCall
	for _, c := range f.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func newFakeDialer(ft *fakeTransport) Dialer {
	return func(ctx context.Context, token string) (Transport, error) {
		return ft, nil
	}
}
