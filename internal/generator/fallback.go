package generator

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/verte-zerg/keykids/internal/logging"
)

// HomeRowLine is used when neither the source nor the level has any text.
const HomeRowLine = "asdf jkl; asdf jkl; fdsa ;lkj"

type result struct {
	text string
	err  error
}

// WithFallback asks src for text but never waits longer than timeout. On
// error, timeout or empty output it returns Fallback(req).
func WithFallback(ctx context.Context, src Source, req Request, timeout time.Duration, logger *slog.Logger) string {
	if logger == nil {
		logger = logging.Discard()
	}
	if src == nil {
		return Fallback(req)
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	done := make(chan result, 1)
	go func() {
		text, err := src.Generate(ctx, req)
		done <- result{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		logger.Warn("text source timed out, using fallback",
			"level", req.Level.ID, "mode", string(req.Mode), "err", ctx.Err())
		return Fallback(req)
	case res := <-done:
		if res.err != nil {
			logger.Warn("text source failed, using fallback",
				"level", req.Level.ID, "mode", string(req.Mode), "err", res.err)
			return Fallback(req)
		}
		if strings.TrimSpace(res.text) == "" {
			logger.Warn("text source returned empty text, using fallback",
				"level", req.Level.ID, "mode", string(req.Mode))
			return Fallback(req)
		}
		return res.text
	}
}

// Fallback returns deterministic text for req.
func Fallback(req Request) string {
	for _, sample := range req.Level.TextSamples {
		if strings.TrimSpace(sample) != "" {
			return sample
		}
	}
	return HomeRowLine
}
