// Package delivery posts a rendered report to its channel: the summary
// first, then each service detail as a threaded reply under it, preserving
// summary row order.
package delivery

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"costwatch/pkg/logger"
	"costwatch/pkg/report"
)

// Transport sends one message and returns its identifier, usable as the
// thread parent for subsequent replies. Retry of transient failures lives
// inside the transport; callers only see the final outcome.
type Transport interface {
	PostMessage(ctx context.Context, channel, text, threadTS string) (string, error)
}

// Coordinator drives ordered delivery over a Transport
type Coordinator struct {
	transport Transport
}

// NewCoordinator builds a Coordinator over a transport
func NewCoordinator(t Transport) *Coordinator {
	return &Coordinator{transport: t}
}

// Result summarizes one channel's delivery
type Result struct {
	Channel     string
	SummaryTS   string
	RepliesSent int
}

// Deliver posts the summary, then the detail blocks as threaded replies in
// order. Replies are sent strictly sequentially so thread order matches
// summary row order. Any failure aborts the rest of this channel only.
func (c *Coordinator) Deliver(ctx context.Context, channel string, rendered *report.Rendered) (*Result, error) {
	result := &Result{Channel: channel}

	ts, err := c.transport.PostMessage(ctx, channel, rendered.Summary, "")
	if err != nil {
		return result, fmt.Errorf("post summary to %s: %w", channel, err)
	}
	result.SummaryTS = ts

	for _, detail := range rendered.Details {
		if _, err := c.transport.PostMessage(ctx, channel, detail.Text, ts); err != nil {
			logger.Error("detail reply failed, aborting channel",
				zap.String("channel", channel),
				zap.String("service", detail.Service),
				zap.Int("replies_sent", result.RepliesSent),
				zap.Error(err))
			return result, fmt.Errorf("post %s detail to %s: %w", detail.Service, channel, err)
		}
		result.RepliesSent++
	}

	return result, nil
}
