package session

import (
	"context"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// SwitchToPage implements the page switch state machine (§4.2).
func (s *Session) SwitchToPage(ctx context.Context, targetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.transport == nil {
		return ErrNotConnected
	}
	if err := s.doSwitchToPageLocked(ctx, targetID); err != nil {
		return err
	}
	s.broadcastViewers("pageSwitched", map[string]any{"targetId": s.activeTargetID, "url": s.currentURL})
	s.broadcastPageListLocked(ctx)
	return nil
}

// doSwitchToPageLocked performs steps 2-6 of the switch sequence; the
// pageSwitched/pageList broadcast (step 7) is the caller's
// responsibility since onTargetCreated broadcasts pageCreated instead.
// Caller holds s.mu.
func (s *Session) doSwitchToPageLocked(ctx context.Context, newTargetID string) error {
	if newTargetID == s.activeTargetID {
		return nil
	}

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
	if errs != nil {
		s.logger.Debug("non-fatal errors during page switch teardown", zap.Error(errs))
	}

	if _, err := s.call(ctx, "Target.activateTarget", map[string]any{"targetId": newTargetID}); err != nil {
		s.logger.Debug("activateTarget failed, continuing switch", zap.Error(err))
	}

	if err := s.attachToTargetLocked(ctx, newTargetID); err != nil {
		return err
	}

	if len(s.viewers) > 0 {
		s.startScreencastLocked(ctx)
	}

	// Initial push: capture one still frame so the new page doesn't
	// appear stuck until the next screencast frame (§4.2 step 6).
	var shot captureScreenshotResult
	raw, err := s.pageCall(ctx, "Page.captureScreenshot", map[string]any{"format": "jpeg", "quality": 60})
	if err != nil {
		s.logger.Warn("failed to capture initial switch frame", zap.Error(err))
	} else if err := decode(raw, &shot); err != nil {
		s.logger.Warn("failed to decode initial switch frame", zap.Error(err))
	} else {
		s.broadcastViewers("frame", shot.Data)
	}

	return nil
}

// Navigate issues Page.navigate.
func (s *Session) Navigate(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transport == nil {
		return ErrNotConnected
	}
	if _, err := s.pageCall(ctx, "Page.navigate", map[string]any{"url": url}); err != nil {
		return wrapCDP("Page.navigate", err)
	}
	return nil
}

// Reload issues Page.reload.
func (s *Session) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transport == nil {
		return ErrNotConnected
	}
	if _, err := s.pageCall(ctx, "Page.reload", nil); err != nil {
		return wrapCDP("Page.reload", err)
	}
	return nil
}

// GoBack navigates to the previous history entry, if any.
func (s *Session) GoBack(ctx context.Context) error {
	return s.navigateHistory(ctx, -1)
}

// GoForward navigates to the next history entry, if any.
func (s *Session) GoForward(ctx context.Context) error {
	return s.navigateHistory(ctx, 1)
}

func (s *Session) navigateHistory(ctx context.Context, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transport == nil {
		return ErrNotConnected
	}

	var history navigationHistoryResult
	raw, err := s.pageCall(ctx, "Page.getNavigationHistory", nil)
	if err != nil {
		return wrapCDP("Page.getNavigationHistory", err)
	}
	if err := decode(raw, &history); err != nil {
		return wrapCDP("Page.getNavigationHistory", err)
	}

	target := history.CurrentIndex + delta
	if target < 0 || target >= len(history.Entries) {
		return nil // at a history boundary; no-op
	}

	entryID := history.Entries[target].ID
	if _, err := s.pageCall(ctx, "Page.navigateToHistoryEntry", map[string]any{"entryId": entryID}); err != nil {
		return wrapCDP("Page.navigateToHistoryEntry", err)
	}
	return nil
}

// CreateNewPage creates a new page target at url (default about:blank).
// Its lifecycle fan-out (switch, pageCreated, pageList) is handled by
// the subsequent Target.targetCreated event.
func (s *Session) CreateNewPage(ctx context.Context, url string) error {
	if url == "" {
		url = "about:blank"
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transport == nil {
		return ErrNotConnected
	}
	if _, err := s.call(ctx, "Target.createTarget", map[string]any{"url": url}); err != nil {
		return wrapCDP("Target.createTarget", err)
	}
	return nil
}

// ClosePage closes the given page target. Its lifecycle fan-out is
// handled by the subsequent Target.targetDestroyed event.
func (s *Session) ClosePage(ctx context.Context, targetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transport == nil {
		return ErrNotConnected
	}
	if _, err := s.call(ctx, "Target.closeTarget", map[string]any{"targetId": targetID}); err != nil {
		return wrapCDP("Target.closeTarget", err)
	}
	return nil
}
