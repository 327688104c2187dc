package session

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
)

// Screenshot is the result of GetScreenshot.
type Screenshot struct {
	Data   string // base64-encoded
	Format string
}

// GetScreenshot implements getScreenshot (§4.2). format defaults to
// "png"; quality only applies to non-png formats; fullPage clips to
// the page's full content size.
func (s *Session) GetScreenshot(ctx context.Context, format string, quality int, fullPage bool) (*Screenshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transport == nil {
		return nil, ErrNotConnected
	}
	if format == "" {
		format = "png"
	}

	params := map[string]any{"format": format}
	if format != "png" {
		params["quality"] = quality
	}

	if fullPage {
		var metrics layoutMetricsResult
		raw, err := s.pageCall(ctx, "Page.getLayoutMetrics", nil)
		if err != nil {
			return nil, wrapCDP("Page.getLayoutMetrics", err)
		}
		if err := decode(raw, &metrics); err != nil {
			return nil, wrapCDP("Page.getLayoutMetrics", err)
		}
		params["clip"] = map[string]any{
			"x": 0, "y": 0,
			"width": metrics.ContentSize.Width, "height": metrics.ContentSize.Height,
			"scale": 1,
		}
		params["captureBeyondViewport"] = true
	}

	var result captureScreenshotResult
	raw, err := s.pageCall(ctx, "Page.captureScreenshot", params)
	if err != nil {
		return nil, wrapCDP("Page.captureScreenshot", err)
	}
	if err := decode(raw, &result); err != nil {
		return nil, wrapCDP("Page.captureScreenshot", err)
	}

	if err := verifyFormat(result.Data, format); err != nil {
		return nil, err
	}

	return &Screenshot{Data: result.Data, Format: format}, nil
}

// verifyFormat decodes the base64 payload and checks its sniffed MIME
// type matches the requested format, surfacing a CDP-side encoding bug
// (or an unexpected format) as a typed error rather than a silently
// mislabeled blob (§4.2).
func verifyFormat(base64Data, format string) error {
	raw, err := base64.StdEncoding.DecodeString(base64Data)
	if err != nil {
		return fmt.Errorf("screenshot payload is not valid base64: %w", err)
	}

	detected := mimetype.Detect(raw)
	want := "image/" + format
	if format == "jpg" {
		want = "image/jpeg"
	}
	if !detected.Is(want) {
		return fmt.Errorf("screenshot format mismatch: requested %q, detected %q", format, detected.String())
	}
	return nil
}
