package session

import (
	"context"

	"github.com/browsermux/mediator/internal/cdp"
	"go.uber.org/zap"
)

// handleEvent is registered as the transport's sole event handler
// (§4.2 flattened event demux). It runs on the transport's reader
// goroutine, so it must never block on a slow client — broadcastViewers
// only enqueues onto each client's buffered outbound channel (§5).
func (s *Session) handleEvent(e cdp.Event) {
	switch e.Method {
	case "Page.frameNavigated":
		s.onFrameNavigated(e)
	case "Page.screencastFrame":
		s.onScreencastFrame(e)
	case "Page.screencastVisibilityChanged":
		// Ignored except for diagnostics (§4.2).
	case "Target.targetCreated":
		s.onTargetCreated(e)
	case "Target.targetDestroyed":
		s.onTargetDestroyed(e)
	case "Target.targetInfoChanged":
		s.onTargetInfoChanged(e)
	}
}

func (s *Session) onFrameNavigated(e cdp.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.SessionID != s.activeSessionID {
		return
	}
	var payload frameNavigatedEvent
	if err := decode(e.Params, &payload); err != nil {
		s.logger.Warn("failed to decode frameNavigated", zap.Error(err))
		return
	}
	if payload.Frame.ParentID != nil {
		return // only top-level navigations update currentUrl
	}
	s.currentURL = payload.Frame.URL
	s.broadcastViewers("urlChanged", s.currentURL)
}

func (s *Session) onScreencastFrame(e cdp.Event) {
	s.mu.Lock()
	if e.SessionID != s.activeSessionID {
		s.mu.Unlock()
		return
	}
	var payload screencastFrameEvent
	if err := decode(e.Params, &payload); err != nil {
		s.logger.Warn("failed to decode screencastFrame", zap.Error(err))
		s.mu.Unlock()
		return
	}
	s.broadcastViewers("frame", payload.Data)
	s.metrics.IncScreencastFrames()
	s.mu.Unlock()

	// Acknowledge fire-and-forget (§5): error, if any, is only logged,
	// never propagated — CDP stops sending frames otherwise.
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	if _, err := s.transport.Call(ctx, "Page.screencastFrameAck", map[string]any{"sessionId": payload.SessionID}, ""); err != nil {
		s.logger.Warn("failed to ack screencast frame", zap.Error(err))
	}
}

func (s *Session) onTargetCreated(e cdp.Event) {
	var payload targetEvent
	if err := decode(e.Params, &payload); err != nil {
		s.logger.Warn("failed to decode targetCreated", zap.Error(err))
		return
	}
	if payload.TargetInfo.Type != "page" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	if err := s.doSwitchToPageLocked(ctx, payload.TargetInfo.TargetID); err != nil {
		s.logger.Warn("failed to switch to newly created page", zap.Error(err))
		return
	}
	s.broadcastViewers("pageCreated", map[string]any{
		"targetId": payload.TargetInfo.TargetID,
		"url":      payload.TargetInfo.URL,
		"title":    payload.TargetInfo.Title,
	})
	s.broadcastPageListLocked(ctx)
}

func (s *Session) onTargetDestroyed(e cdp.Event) {
	var payload targetDestroyedEvent
	if err := decode(e.Params, &payload); err != nil {
		s.logger.Warn("failed to decode targetDestroyed", zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.broadcastViewers("pageDestroyed", map[string]any{"targetId": payload.TargetID})

	if payload.TargetID != s.activeTargetID {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	var result getTargetsResult
	raw, err := s.call(ctx, "Target.getTargets", nil)
	if err == nil {
		_ = decode(raw, &result)
	}

	var replacement string
	for _, t := range result.TargetInfos {
		if t.Type == "page" {
			replacement = t.TargetID
			break
		}
	}
	if replacement == "" {
		replacement, err = s.createBlankPageLocked(ctx)
		if err != nil {
			s.logger.Warn("failed to create replacement page", zap.Error(err))
			s.activeSessionID = ""
			s.activeTargetID = ""
			return
		}
	}

	// Route through the same teardown/attach/screencast-restart sequence
	// an explicit SwitchToPage uses (§4.2): the destroyed target's own
	// CDP session is already gone, so the stop-screencast/detach
	// teardown calls doSwitchToPageLocked issues against it are expected
	// to fail and are only logged, never fatal — the point is that
	// screencastRunning gets reset and, if viewers remain, restarted
	// against the replacement page rather than left silently stale.
	if err := s.doSwitchToPageLocked(ctx, replacement); err != nil {
		s.logger.Warn("failed to reattach after active target destroyed", zap.Error(err))
		s.activeSessionID = ""
		s.activeTargetID = ""
		return
	}
	s.broadcastViewers("pageSwitched", map[string]any{"targetId": s.activeTargetID, "url": s.currentURL})
	s.broadcastPageListLocked(ctx)
}

func (s *Session) onTargetInfoChanged(e cdp.Event) {
	var payload targetEvent
	if err := decode(e.Params, &payload); err != nil {
		s.logger.Warn("failed to decode targetInfoChanged", zap.Error(err))
		return
	}
	if payload.TargetInfo.Type != "page" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.broadcastViewers("pageInfoChanged", map[string]any{
		"targetId": payload.TargetInfo.TargetID,
		"url":      payload.TargetInfo.URL,
		"title":    payload.TargetInfo.Title,
	})
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	s.broadcastPageListLocked(ctx)
}
