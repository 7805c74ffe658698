//go:build integration

package testutil

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/alanyang/project-chat/internal/domain/event"
	porteventbus "github.com/alanyang/project-chat/internal/port/eventbus"
)

// CaptureBus is an EventBus test double that records every published event.
// Subscriptions are accepted and never fire. Safe for concurrent use.
type CaptureBus struct {
	mu     sync.Mutex
	Events []event.Event
}

var _ porteventbus.EventBus = (*CaptureBus)(nil)

func (b *CaptureBus) Publish(_ context.Context, e event.Event) error {
	b.mu.Lock()
	b.Events = append(b.Events, e)
	b.mu.Unlock()
	return nil
}

func (b *CaptureBus) Subscribe(context.Context, event.Channel, porteventbus.Handler) (porteventbus.Subscription, error) {
	return noopSubscription{}, nil
}

// ForProject returns the events recorded for projectID of type t.
func (b *CaptureBus) ForProject(projectID uuid.UUID, t event.Type) []event.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []event.Event
	for _, e := range b.Events {
		if e.ProjectID == projectID && e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func (b *CaptureBus) Reset() {
	b.mu.Lock()
	b.Events = nil
	b.mu.Unlock()
}

type noopSubscription struct{}

func (noopSubscription) Unsubscribe() {}
