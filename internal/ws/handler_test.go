package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/browsermux/mediator/internal/cdp"
	"github.com/browsermux/mediator/internal/registry"
	"github.com/browsermux/mediator/internal/session"
	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type stubTransport struct{}

func (stubTransport) Call(ctx context.Context, method string, params any, sessionID string) ([]byte, error) {
	switch method {
	case "Target.getTargets":
		return sonic.Marshal(map[string]any{
			"targetInfos": []map[string]any{
				{"targetId": "target-1", "type": "page", "url": "https://example.com"},
			},
		})
	case "Target.attachToTarget":
		return sonic.Marshal(map[string]any{"sessionId": "sess-1"})
	case "Page.getFrameTree":
		return sonic.Marshal(map[string]any{
			"frameTree": map[string]any{"frame": map[string]any{"url": "https://example.com"}},
		})
	case "Runtime.evaluate":
		return sonic.Marshal(map[string]any{"result": map[string]any{"value": "visible"}})
	}
	return []byte("{}"), nil
}
func (stubTransport) On(cdp.EventHandler) {}
func (stubTransport) Close() error        { return nil }

func stubDialer(ctx context.Context, token string) (session.Transport, error) {
	return stubTransport{}, nil
}

func newTestServer(t *testing.T) (string, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	reg := registry.New(session.DefaultConfig(), stubDialer, nil, nil)
	handler := NewHandler(reg, nil, nil)

	router := gin.New()
	router.GET("/ws", handler.HandleConnection)
	srv := httptest.NewServer(router)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	return url, srv.Close
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func readReply(t *testing.T, conn *websocket.Conn) pushFrame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame pushFrame
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	return frame
}

func TestConnectRejectsInvalidToken(t *testing.T) {
	url, closeSrv := newTestServer(t)
	defer closeSrv()
	conn := dial(t, url)
	defer conn.Close()

	conn.WriteJSON(inboundMessage{Type: "browser:connect", Token: "has a space"})
	frame := readReply(t, conn)

	data := frame.Data.(map[string]any)
	if data["success"] != false {
		t.Fatalf("expected success=false for invalid token, got %+v", data)
	}
}

func TestConnectAndNavigateHappyPath(t *testing.T) {
	url, closeSrv := newTestServer(t)
	defer closeSrv()
	conn := dial(t, url)
	defer conn.Close()

	conn.WriteJSON(inboundMessage{Type: "browser:connect", Token: "tok-1", ClientType: "api"})
	reply1 := readReply(t, conn)
	data1 := reply1.Data.(map[string]any)
	if data1["success"] != true {
		t.Fatalf("expected successful connect, got %+v", data1)
	}

	conn.WriteJSON(inboundMessage{Type: "browser:navigate", URL: "https://example.com/new"})
	reply2 := readReply(t, conn)
	data2 := reply2.Data.(map[string]any)
	if data2["success"] != true {
		t.Fatalf("expected successful navigate, got %+v", data2)
	}
}

func TestActionWithoutSessionFails(t *testing.T) {
	url, closeSrv := newTestServer(t)
	defer closeSrv()
	conn := dial(t, url)
	defer conn.Close()

	conn.WriteJSON(inboundMessage{Type: "browser:navigate", URL: "https://example.com"})
	frame := readReply(t, conn)
	data := frame.Data.(map[string]any)
	if data["success"] != false || data["message"] != "No browser session" {
		t.Fatalf("expected No browser session failure, got %+v", data)
	}
}

func TestClickRequiresAPIClient(t *testing.T) {
	url, closeSrv := newTestServer(t)
	defer closeSrv()
	conn := dial(t, url)
	defer conn.Close()

	conn.WriteJSON(inboundMessage{Type: "browser:connect", Token: "tok-2", ClientType: "viewer"})
	readReply(t, conn) // connect reply

	conn.WriteJSON(inboundMessage{Type: "browser:click", BackendNodeID: 1})
	frame := readReply(t, conn)
	data := frame.Data.(map[string]any)
	if data["success"] != false {
		t.Fatalf("expected viewer client to be rejected from browser:click, got %+v", data)
	}
}
