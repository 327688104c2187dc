package session

import (
	"context"
	"fmt"

	"github.com/browsermux/mediator/internal/ids"
	"github.com/bytedance/sonic"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

func decode(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return sonic.Unmarshal(data, v)
}

func (s *Session) call(ctx context.Context, method string, params any) ([]byte, error) {
	return s.transport.Call(ctx, method, params, "")
}

func (s *Session) pageCall(ctx context.Context, method string, params any) ([]byte, error) {
	return s.transport.Call(ctx, method, params, s.activeSessionID)
}

// Connect runs the attach protocol (§4.2 steps 1-8): dial the transport,
// enable target discovery, elect an active page, attach to it, and
// start screencast if viewers are already attached.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	transport, err := s.dial(ctx, s.Token)
	if err != nil {
		return fmt.Errorf("dial browser: %w", err)
	}
	s.transport = transport
	s.transport.On(s.handleEvent)

	if _, err := s.call(ctx, "Target.setDiscoverTargets", map[string]any{"discover": true}); err != nil {
		return wrapCDP("Target.setDiscoverTargets", err)
	}

	targetID, err := s.findActiveTargetLocked(ctx)
	if err != nil {
		return err
	}

	if err := s.attachToTargetLocked(ctx, targetID); err != nil {
		return err
	}

	if len(s.viewers) > 0 {
		s.startScreencastLocked(ctx)
	}

	s.metrics.IncSessionsCreated()
	s.broadcastViewers("connected", map[string]any{"url": s.currentURL, "targetId": s.activeTargetID})
	s.broadcastPageListLocked(ctx)
	return nil
}

// attachToTargetLocked performs attach-protocol steps 5-7 against
// targetID: attach (flatten), enable Page/Runtime, read the URL, apply
// the default viewport. Caller holds s.mu.
func (s *Session) attachToTargetLocked(ctx context.Context, targetID string) error {
	var attach attachToTargetResult
	raw, err := s.call(ctx, "Target.attachToTarget", map[string]any{"targetId": targetID, "flatten": true})
	if err != nil {
		return wrapCDP("Target.attachToTarget", err)
	}
	if err := decode(raw, &attach); err != nil {
		return wrapCDP("Target.attachToTarget", err)
	}

	s.activeSessionID = attach.SessionID
	s.activeTargetID = targetID

	if _, err := s.pageCall(ctx, "Page.enable", nil); err != nil {
		return wrapCDP("Page.enable", err)
	}
	if _, err := s.pageCall(ctx, "Runtime.enable", nil); err != nil {
		return wrapCDP("Runtime.enable", err)
	}

	var tree frameTreeResult
	raw, err = s.pageCall(ctx, "Page.getFrameTree", nil)
	if err != nil {
		return wrapCDP("Page.getFrameTree", err)
	}
	if err := decode(raw, &tree); err != nil {
		return wrapCDP("Page.getFrameTree", err)
	}
	s.currentURL = tree.FrameTree.Frame.URL

	viewport := s.cfg.Viewport
	_, err = s.pageCall(ctx, "Emulation.setDeviceMetricsOverride", map[string]any{
		"width":             viewport.Width,
		"height":            viewport.Height,
		"deviceScaleFactor": viewport.Scale,
		"mobile":            viewport.Mobile,
	})
	if err != nil {
		return wrapCDP("Emulation.setDeviceMetricsOverride", err)
	}
	return nil
}

// startScreencastLocked starts the CDP screencast if not already
// running. Caller holds s.mu.
func (s *Session) startScreencastLocked(ctx context.Context) {
	if s.screencastRunning {
		return
	}
	_, err := s.pageCall(ctx, "Page.startScreencast", map[string]any{
		"format":        "jpeg",
		"quality":       s.cfg.Screencast.Quality,
		"maxWidth":      s.cfg.Viewport.Width,
		"maxHeight":     s.cfg.Viewport.Height,
		"everyNthFrame": s.cfg.Screencast.EveryNthFrame,
	})
	if err != nil {
		s.logger.Warn("failed to start screencast", zap.Error(err))
		return
	}
	s.screencastRunning = true
	s.metrics.SetScreencastsActive(1)
}

// stopScreencastLocked stops the CDP screencast if running. Caller
// holds s.mu. Errors are swallowed per §4.2/§5 (background operation).
func (s *Session) stopScreencastLocked(ctx context.Context) {
	if !s.screencastRunning {
		return
	}
	if _, err := s.pageCall(ctx, "Page.stopScreencast", nil); err != nil {
		s.logger.Warn("failed to stop screencast", zap.Error(err))
	}
	s.screencastRunning = false
	s.metrics.SetScreencastsActive(0)
}

// AddClient attaches a client to the session, starting screencast if
// this is the first viewer and the session is already connected (§4.2
// screencast on-demand). On a session not yet connected, Connect starts
// screencast once it has attached to a page.
func (s *Session) AddClient(ctx context.Context, c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch c.Kind {
	case KindViewer:
		wasEmpty := len(s.viewers) == 0
		s.viewers[c.ID] = c
		if wasEmpty && s.transport != nil {
			s.startScreencastLocked(ctx)
		}
	case KindAPI:
		s.apiClients[c.ID] = c
	}
}

// RemoveClient detaches a client, stopping screencast if it was the
// last viewer. Returns the number of clients remaining.
func (s *Session) RemoveClient(ctx context.Context, id ids.ClientID, kind ClientKind) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch kind {
	case KindViewer:
		delete(s.viewers, id)
		if len(s.viewers) == 0 {
			s.stopScreencastLocked(ctx)
		}
	case KindAPI:
		delete(s.apiClients, id)
	}
	return len(s.viewers) + len(s.apiClients)
}

// Close runs the disconnect protocol (§3 Session lifecycle): stop
// screencast if running, detach from the page, close the transport.
// Safe to call more than once.
func (s *Session) Close(reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.transport == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	var errs error
	if s.screencastRunning {
		if _, err := s.pageCall(ctx, "Page.stopScreencast", nil); err != nil {
			errs = multierr.Append(errs, err)
		}
		s.screencastRunning = false
	}
	if s.activeSessionID != "" {
		if _, err := s.call(ctx, "Target.detachFromTarget", map[string]any{"sessionId": s.activeSessionID}); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	if err := s.transport.Close(); err != nil {
		errs = multierr.Append(errs, err)
	}

	s.metrics.IncSessionsClosed(reason)
	if errs != nil {
		s.logger.Warn("errors during session close", zap.Error(errs))
	}
	return errs
}

// Info returns a point-in-time snapshot of this session's public state
// for the Registry's admin snapshot (§4.4, §6.5).
func (s *Session) Info() (url string, activeTargetID string, clientCount int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentURL, s.activeTargetID, len(s.viewers) + len(s.apiClients)
}

// broadcastViewers sends a push event to every attached viewer. Caller
// holds s.mu (or has already released it where ordering doesn't
// require the lock, e.g. within the event-demux path where it is
// re-acquired per call site).
func (s *Session) broadcastViewers(event string, payload any) {
	for _, c := range s.viewers {
		c.Send(event, payload)
	}
}

func (s *Session) broadcastPageListLocked(ctx context.Context) {
	var result getTargetsResult
	raw, err := s.call(ctx, "Target.getTargets", nil)
	if err != nil {
		s.logger.Warn("failed to refresh page list", zap.Error(err))
		return
	}
	if err := decode(raw, &result); err != nil {
		s.logger.Warn("failed to decode page list", zap.Error(err))
		return
	}

	pages := make([]map[string]any, 0, len(result.TargetInfos))
	for _, t := range result.TargetInfos {
		if t.Type != "page" {
			continue
		}
		pages = append(pages, map[string]any{
			"targetId": t.TargetID,
			"url":      t.URL,
			"title":    t.Title,
		})
	}
	s.broadcastViewers("pageList", map[string]any{
		"pages":          pages,
		"activeTargetId": s.activeTargetID,
	})
}
