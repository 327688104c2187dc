package pool

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/browsermux/mediator/internal/resilience"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBreaker() *resilience.Breaker {
	return resilience.New("pool-test", resilience.Settings{})
}

func TestStartReturnsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/start", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"token":"tok-123"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, newTestBreaker())
	token, err := c.Start(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)
}

func TestStartFailurePropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"success":false,"message":"no capacity"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, newTestBreaker())
	_, err := c.Start(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no capacity")
}

func TestStopSendsToken(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stop", r.URL.Path)
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = string(buf)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	c := New(srv.URL, newTestBreaker())
	err := c.Stop(context.Background(), "tok-123")

	require.NoError(t, err)
	assert.Contains(t, gotBody, "tok-123")
}

func TestListReturnsBrowsers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/list", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"browsers":["a","b"]}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, newTestBreaker())
	tokens, err := c.List(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tokens)
}
