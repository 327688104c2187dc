package ws

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/browsermux/mediator/internal/ids"
	"github.com/browsermux/mediator/internal/logging"
	"github.com/browsermux/mediator/internal/registry"
	"github.com/browsermux/mediator/internal/session"
	"github.com/browsermux/mediator/internal/validate"
	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is enforced at the HTTP layer (internal/middleware), not here.
	},
}

// actionTimeout bounds a single request-reply action dispatch (§5); the
// in-flight Session call is not cancelled when it fires, only its result
// is discarded.
const actionTimeout = 10 * time.Second

// outboundQueueSize bounds how many push events/replies can be buffered
// for one client before its writer goroutine falls behind (§5): frames
// are generated faster than they can be encoded onto a slow socket only
// in pathological cases, and a bounded channel turns that into a visible
// backpressure point rather than unbounded memory growth.
const outboundQueueSize = 256

// MessageRecorder receives per-message client protocol telemetry (§6.2:
// "counters for client messages, by type and by outcome").
// internal/monitoring.Metrics satisfies this structurally.
type MessageRecorder interface {
	RecordClientMessage(msgType, outcome string)
}

type nopMessageRecorder struct{}

func (nopMessageRecorder) RecordClientMessage(string, string) {}

// Handler upgrades HTTP connections to WebSocket and realizes the
// client-facing message protocol (§6.2) over the Registry.
type Handler struct {
	registry *registry.Registry
	logger   *logging.Logger
	metrics  MessageRecorder
}

// NewHandler constructs a Handler bound to reg. metrics may be nil, in
// which case client message telemetry is simply discarded.
func NewHandler(reg *registry.Registry, logger *logging.Logger, metrics MessageRecorder) *Handler {
	if logger == nil {
		logger = logging.NewDefault()
	}
	if metrics == nil {
		metrics = nopMessageRecorder{}
	}
	return &Handler{registry: reg, logger: logger, metrics: metrics}
}

// HandleConnection upgrades the request and runs the per-connection read
// loop until the client disconnects or a read error occurs.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	socket := ids.NewSocketID()
	connLogger := h.logger.WithSocket(socket)
	outbound := make(chan pushFrame, outboundQueueSize)
	writerDone := make(chan struct{})
	go h.writeLoop(conn, outbound, writerDone)

	defer func() {
		connLogger.Debug("connection closed")
		h.registry.OnSocketDisconnect(context.Background(), socket)
		close(outbound)
		<-writerDone
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if err := validate.Message(data); err != nil {
			h.metrics.RecordClientMessage("unknown", "error")
			h.sendReply(outbound, false, nil, err.Error())
			continue
		}

		var msg inboundMessage
		if err := sonic.Unmarshal(data, &msg); err != nil {
			h.metrics.RecordClientMessage("unknown", "error")
			h.sendReply(outbound, false, nil, "malformed message")
			continue
		}

		h.dispatch(socket, outbound, msg)
	}
}

// writeLoop is the single writer goroutine per client (§5): it drains
// outbound in generation order so the event-demux path never blocks on a
// slow client's network write.
func (h *Handler) writeLoop(conn *websocket.Conn, outbound <-chan pushFrame, done chan<- struct{}) {
	defer close(done)
	for frame := range outbound {
		if err := conn.WriteJSON(frame); err != nil {
			return
		}
	}
}

func (h *Handler) sendReply(outbound chan<- pushFrame, success bool, data any, message string) {
	select {
	case outbound <- pushFrame{Type: "browser:reply", Data: reply{Success: success, Data: data, Message: message}}:
	default:
		h.logger.Warn("dropped reply: outbound queue full")
	}
}

func (h *Handler) sendPush(outbound chan<- pushFrame, event string, payload any) {
	select {
	case outbound <- pushFrame{Type: "browser:" + event, Data: payload}:
	default:
		h.logger.Warn("dropped push event: outbound queue full", zap.String("event", event))
	}
}

// dispatch routes one decoded inbound message to the Registry/Session,
// per the action tables in §6.2.
func (h *Handler) dispatch(socket ids.SocketID, outbound chan pushFrame, msg inboundMessage) {
	if msg.Type == "browser:connect" {
		h.handleConnect(socket, outbound, msg)
		return
	}
	if msg.Type == "browser:disconnect" {
		h.registry.Detach(context.Background(), socket)
		h.metrics.RecordClientMessage(msg.Type, "ok")
		h.sendReply(outbound, true, nil, "")
		return
	}

	sess, kind, ok := h.registry.Session(socket)
	if !ok {
		h.metrics.RecordClientMessage(msg.Type, "error")
		h.replyIfRequestReply(outbound, msg.Type, false, nil, "No browser session")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
	defer cancel()

	switch msg.Type {
	case "browser:navigate":
		h.runAction(outbound, msg.Type, func() (any, error) {
			if err := validate.URL(msg.URL); err != nil {
				return nil, err
			}
			return nil, sess.Navigate(ctx, msg.URL)
		})
	case "browser:goBack":
		h.runAction(outbound, msg.Type, func() (any, error) { return nil, sess.GoBack(ctx) })
	case "browser:goForward":
		h.runAction(outbound, msg.Type, func() (any, error) { return nil, sess.GoForward(ctx) })
	case "browser:reload":
		h.runAction(outbound, msg.Type, func() (any, error) { return nil, sess.Reload(ctx) })
	case "browser:switchPage":
		h.runAction(outbound, msg.Type, func() (any, error) {
			if err := validate.TargetID(msg.TargetID, "targetId"); err != nil {
				return nil, err
			}
			return nil, sess.SwitchToPage(ctx, msg.TargetID)
		})
	case "browser:newPage":
		h.runAction(outbound, msg.Type, func() (any, error) { return nil, sess.CreateNewPage(ctx, msg.URL) })
	case "browser:closePage":
		h.runAction(outbound, msg.Type, func() (any, error) {
			if err := validate.TargetID(msg.TargetID, "targetId"); err != nil {
				return nil, err
			}
			return nil, sess.ClosePage(ctx, msg.TargetID)
		})
	case "browser:clickAt":
		h.runAction(outbound, msg.Type, func() (any, error) {
			if err := validateCoordinates(msg.X, msg.Y); err != nil {
				return nil, err
			}
			return nil, sess.ClickAt(ctx, msg.X, msg.Y)
		})
	case "browser:click":
		h.runAPIAction(outbound, msg.Type, kind, func() (any, error) {
			if err := validate.BackendNodeID(msg.BackendNodeID); err != nil {
				return nil, err
			}
			return nil, sess.Click(ctx, msg.BackendNodeID)
		})
	case "browser:fill":
		h.runAPIAction(outbound, msg.Type, kind, func() (any, error) {
			if err := validate.BackendNodeID(msg.BackendNodeID); err != nil {
				return nil, err
			}
			if err := validate.Text(msg.Value); err != nil {
				return nil, err
			}
			return nil, sess.Fill(ctx, msg.BackendNodeID, msg.Value)
		})
	case "browser:getSnapshot":
		h.runAPIAction(outbound, msg.Type, kind, func() (any, error) {
			return sess.GetSnapshot(ctx, msg.InterestingOnly, msg.Compressed)
		})
	case "browser:getScreenshot":
		h.runAPIAction(outbound, msg.Type, kind, func() (any, error) {
			return sess.GetScreenshot(ctx, msg.Format, msg.Quality, msg.FullPage)
		})

	// Fire-and-forget input (viewer only, no reply — §6.2).
	case "browser:mouseMove":
		h.runFireAndForget(msg.Type, kind, func() error {
			if err := validateCoordinates(msg.X, msg.Y); err != nil {
				return err
			}
			return sess.MouseMove(ctx, msg.X, msg.Y)
		})
	case "browser:scroll":
		h.runFireAndForget(msg.Type, kind, func() error {
			if err := validateCoordinates(msg.X, msg.Y); err != nil {
				return err
			}
			return sess.Scroll(ctx, msg.X, msg.Y, msg.DeltaX, msg.DeltaY)
		})
	case "browser:keyDown":
		h.runFireAndForget(msg.Type, kind, func() error { return sess.KeyDown(ctx, msg.Key, msg.Code, msg.Modifiers) })
	case "browser:keyUp":
		h.runFireAndForget(msg.Type, kind, func() error { return sess.KeyUp(ctx, msg.Key, msg.Code, msg.Modifiers) })
	case "browser:imeSetComposition":
		h.runFireAndForget(msg.Type, kind, func() error {
			if err := validate.Text(msg.Text); err != nil {
				return err
			}
			return sess.IMESetComposition(ctx, msg.Text, msg.SelectionStart, msg.SelectionEnd)
		})
	case "browser:imeCommitComposition":
		h.runFireAndForget(msg.Type, kind, func() error {
			if err := validate.Text(msg.Text); err != nil {
				return err
			}
			return sess.IMECommitComposition(ctx, msg.Text)
		})
	case "browser:insertText":
		h.runFireAndForget(msg.Type, kind, func() error {
			if err := validate.Text(msg.Text); err != nil {
				return err
			}
			return sess.InsertText(ctx, msg.Text)
		})

	default:
		h.metrics.RecordClientMessage(msg.Type, "error")
		h.sendReply(outbound, false, nil, "unknown message type")
	}
}

func (h *Handler) handleConnect(socket ids.SocketID, outbound chan pushFrame, msg inboundMessage) {
	if err := validate.Token(msg.Token); err != nil {
		h.metrics.RecordClientMessage(msg.Type, "error")
		h.sendReply(outbound, false, nil, err.Error())
		return
	}
	kind := session.KindViewer
	if msg.ClientType == "api" {
		kind = session.KindAPI
	}

	sink := func(event string, payload any) { h.sendPush(outbound, event, payload) }

	ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
	defer cancel()
	reused, postReply, err := h.registry.Attach(ctx, socket, msg.Token, kind, sink)
	if err != nil {
		h.metrics.RecordClientMessage(msg.Type, "error")
		h.sendReply(outbound, false, nil, errorMessage(err))
		return
	}
	h.metrics.RecordClientMessage(msg.Type, "ok")
	h.sendReply(outbound, true, map[string]any{"reused": reused}, "")
	if postReply != nil {
		postReply()
	}
}

// runAction executes a request-reply action, records its outcome, and
// writes its reply.
func (h *Handler) runAction(outbound chan pushFrame, msgType string, fn func() (any, error)) {
	data, err := fn()
	if err != nil {
		h.metrics.RecordClientMessage(msgType, "error")
		h.sendReply(outbound, false, nil, errorMessage(err))
		return
	}
	h.metrics.RecordClientMessage(msgType, "ok")
	h.sendReply(outbound, true, data, "")
}

// runAPIAction is runAction guarded by the "(API only)" restriction some
// actions carry in §6.2.
func (h *Handler) runAPIAction(outbound chan pushFrame, msgType string, kind session.ClientKind, fn func() (any, error)) {
	if kind != session.KindAPI {
		h.metrics.RecordClientMessage(msgType, "error")
		h.sendReply(outbound, false, nil, "this action requires an API client")
		return
	}
	h.runAction(outbound, msgType, fn)
}

// runFireAndForget executes a viewer-only input action without sending a
// reply; any error is only logged (§6.2 lists these as server-push-free).
func (h *Handler) runFireAndForget(msgType string, kind session.ClientKind, fn func() error) {
	if kind != session.KindViewer {
		return
	}
	if err := fn(); err != nil {
		h.metrics.RecordClientMessage(msgType, "error")
		h.logger.Debug("fire-and-forget input action failed", zap.Error(err))
		return
	}
	h.metrics.RecordClientMessage(msgType, "ok")
}

// replyIfRequestReply writes a failure reply for any message type except
// the fire-and-forget input actions, which never reply even on failure.
func (h *Handler) replyIfRequestReply(outbound chan pushFrame, msgType string, success bool, data any, message string) {
	switch msgType {
	case "browser:mouseMove", "browser:scroll", "browser:keyDown", "browser:keyUp",
		"browser:imeSetComposition", "browser:imeCommitComposition", "browser:insertText":
		return
	}
	h.sendReply(outbound, success, data, message)
}

func validateCoordinates(x, y float64) error {
	if err := validate.Coordinate(x, "x"); err != nil {
		return err
	}
	return validate.Coordinate(y, "y")
}

// errorMessage translates a Session/CDP error into client-facing text,
// keeping a logged error and its browser:error push in sync (§7).
func errorMessage(err error) string {
	if errors.Is(err, session.ErrNotConnected) {
		return "Browser not connected"
	}
	var notFound *session.ElementNotFoundError
	if errors.As(err, &notFound) {
		return notFound.Error()
	}
	var cdpErr *session.CDPError
	if errors.As(err, &cdpErr) {
		return cdpErr.Error()
	}
	return err.Error()
}
