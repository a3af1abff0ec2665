package backend

import (
	"context"
	"time"

	"ai-chat-client/internal/domain/ports/adapter"
	"ai-chat-client/internal/infra/metrics"
)

var _ adapter.ReplyGenerator = (*limitedReplies)(nil)

type limitedReplies struct {
	inner adapter.ReplyGenerator
	sem   chan struct{}
}

// NewLimitedReplies bounds concurrent reply generation and records call
// latency. maxConcurrent <= 0 returns the inner generator unchanged.
func NewLimitedReplies(inner adapter.ReplyGenerator, maxConcurrent int) adapter.ReplyGenerator {
	if maxConcurrent <= 0 {
		return inner
	}
	return &limitedReplies{inner: inner, sem: make(chan struct{}, maxConcurrent)}
}

func (l *limitedReplies) GenerateReply(ctx context.Context, message string) (string, error) {
	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	defer func() { <-l.sem }()

	start := time.Now()
	reply, err := l.inner.GenerateReply(ctx, message)
	metrics.ObserveBackendCall("generate_reply", int(time.Since(start).Milliseconds()), err == nil)
	return reply, err
}
