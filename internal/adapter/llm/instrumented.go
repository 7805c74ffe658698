package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/alanyang/project-chat/internal/domain/conversation"
	"github.com/alanyang/project-chat/internal/metrics"
	portllm "github.com/alanyang/project-chat/internal/port/llm"
)

var _ portllm.Provider = (*Instrumented)(nil)

// Instrumented records latency and outcome of every call on the wrapped
// provider and logs failures. Results pass through untouched.
type Instrumented struct {
	name    string
	next    portllm.Provider
	metrics *metrics.Metrics
}

func Instrument(name string, next portllm.Provider, m *metrics.Metrics) *Instrumented {
	return &Instrumented{name: name, next: next, metrics: m}
}

func (i *Instrumented) CreateChatCompletion(ctx context.Context, turns []conversation.Turn) (string, error) {
	start := time.Now()
	text, err := i.next.CreateChatCompletion(ctx, turns)
	elapsed := time.Since(start)

	i.metrics.RecordProviderCall(i.name, err, elapsed)
	if err != nil {
		slog.ErrorContext(ctx, "completion failed", "provider", i.name, "turns", len(turns), "duration", elapsed, "error", err)
	}
	return text, err
}
