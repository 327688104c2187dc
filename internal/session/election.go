package session

import (
	"context"
	"fmt"

	"github.com/dop251/goja"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// visibilityExpr is the fixed literal probed on every candidate target.
// validateExpr exists for a future caller that accepts an expression
// from configuration; today it only ever validates this one constant.
const visibilityExpr = "document.visibilityState"

// validateExpr syntax-checks a Runtime.evaluate expression locally
// before it is ever sent over CDP (§4.2), so a malformed expression
// fails fast with a Go error instead of round-tripping to the browser.
func validateExpr(expr string) error {
	if _, err := goja.Parse("expr.js", expr); err != nil {
		return fmt.Errorf("invalid expression %q: %w", expr, err)
	}
	return nil
}

// findActiveTargetLocked implements active-page election (§4.2):
// enumerate page targets, probe document.visibilityState concurrently,
// and pick the first "visible" one in enumeration order, falling back to the first
// non-blank page, then any page, then creating a new blank page.
// Caller holds s.mu; the concurrent probes run with the lock released
// since they operate on candidate targets, not yet on activeTargetID.
func (s *Session) findActiveTargetLocked(ctx context.Context) (string, error) {
	if err := validateExpr(visibilityExpr); err != nil {
		return "", err
	}

	var result getTargetsResult
	raw, err := s.call(ctx, "Target.getTargets", nil)
	if err != nil {
		return "", wrapCDP("Target.getTargets", err)
	}
	if err := decode(raw, &result); err != nil {
		return "", wrapCDP("Target.getTargets", err)
	}

	var pages []targetInfo
	for _, t := range result.TargetInfos {
		if t.Type == "page" {
			pages = append(pages, t)
		}
	}
	if len(pages) == 0 {
		return s.createBlankPageLocked(ctx)
	}

	var candidates []targetInfo
	for _, p := range pages {
		if p.URL != "about:blank" {
			candidates = append(candidates, p)
		}
	}

	if len(candidates) > 0 {
		visible, err := s.probeForVisibleLocked(ctx, candidates)
		if err != nil {
			s.logger.Warn("active target probing failed", zap.Error(err))
		} else if visible != "" {
			return visible, nil
		}
		return candidates[0].TargetID, nil
	}

	return pages[0].TargetID, nil
}

// probeForVisibleLocked probes document.visibilityState on each
// candidate concurrently (bounded to len(candidates)), waits for every
// probe to finish, and returns the first candidate, in candidate order,
// that reported "visible" ("" if none did). The session lock is released for the
// duration of the probes (§5): they attach/evaluate/detach against
// candidate targets only, never touching activeSessionID/activeTargetID.
func (s *Session) probeForVisibleLocked(ctx context.Context, candidates []targetInfo) (string, error) {
	s.mu.Unlock()
	defer s.mu.Lock()

	// Probes run concurrently via errgroup, each issuing its own
	// attach/evaluate/detach against a candidate target; every probe's
	// CDP calls run to completion against the caller-supplied ctx
	// regardless of a sibling probe's result; no probe is cancelled on
	// account of another (§4.2).
	g, _ := errgroup.WithContext(ctx)
	visible := make([]bool, len(candidates))

	for i, candidate := range candidates {
		i, targetID := i, candidate.TargetID
		g.Go(func() error {
			ok, err := s.probeVisibility(ctx, targetID)
			if err != nil {
				return nil // a single failed probe doesn't fail election
			}
			visible[i] = ok
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return "", err
	}
	for i, ok := range visible {
		if ok {
			return candidates[i].TargetID, nil
		}
	}
	return "", nil
}

// probeVisibility attaches to targetID, evaluates visibilityExpr, and
// detaches. It issues its own CDP calls through s.transport directly
// (not s.call/s.pageCall, which assume the active page session).
func (s *Session) probeVisibility(ctx context.Context, targetID string) (bool, error) {
	var attach attachToTargetResult
	raw, err := s.transport.Call(ctx, "Target.attachToTarget", map[string]any{"targetId": targetID, "flatten": true}, "")
	if err != nil {
		return false, err
	}
	if err := decode(raw, &attach); err != nil {
		return false, err
	}
	probeSessionID := attach.SessionID

	defer func() {
		_, _ = s.transport.Call(ctx, "Target.detachFromTarget", map[string]any{"sessionId": probeSessionID}, "")
	}()

	if _, err := s.transport.Call(ctx, "Runtime.enable", nil, probeSessionID); err != nil {
		return false, err
	}

	var evalResult evaluateResult
	raw, err = s.transport.Call(ctx, "Runtime.evaluate", map[string]any{"expression": visibilityExpr}, probeSessionID)
	if err != nil {
		return false, err
	}
	if err := decode(raw, &evalResult); err != nil {
		return false, err
	}

	value, _ := evalResult.Result.Value.(string)
	return value == "visible", nil
}

// createBlankPageLocked creates a new about:blank page target. Caller
// holds s.mu.
func (s *Session) createBlankPageLocked(ctx context.Context) (string, error) {
	var result createTargetResult
	raw, err := s.call(ctx, "Target.createTarget", map[string]any{"url": "about:blank"})
	if err != nil {
		return "", wrapCDP("Target.createTarget", err)
	}
	if err := decode(raw, &result); err != nil {
		return "", wrapCDP("Target.createTarget", err)
	}
	return result.TargetID, nil
}
