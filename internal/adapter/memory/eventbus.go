package memory

import (
	"context"
	"sync"

	"github.com/alanyang/project-chat/internal/domain/event"
	porteventbus "github.com/alanyang/project-chat/internal/port/eventbus"
)

var _ porteventbus.EventBus = (*EventBus)(nil)

// EventBus delivers events within one process. Each subscription owns a
// buffered queue drained by its own goroutine; when the queue is full the
// event is dropped rather than blocking the publisher.
type EventBus struct {
	buffer int

	mu   sync.RWMutex
	subs map[event.Channel]map[*subscription]struct{}
}

func NewEventBus(buffer int) *EventBus {
	if buffer <= 0 {
		buffer = 64
	}
	return &EventBus{
		buffer: buffer,
		subs:   make(map[event.Channel]map[*subscription]struct{}),
	}
}

func (eb *EventBus) Publish(_ context.Context, e event.Event) error {
	ch := event.ChannelFor(e.Type)

	eb.mu.RLock()
	defer eb.mu.RUnlock()
	for s := range eb.subs[ch] {
		select {
		case s.queue <- e:
		default:
		}
	}
	return nil
}

func (eb *EventBus) Subscribe(ctx context.Context, ch event.Channel, handler porteventbus.Handler) (porteventbus.Subscription, error) {
	subCtx, cancel := context.WithCancel(ctx)
	s := &subscription{
		queue:  make(chan event.Event, eb.buffer),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	eb.mu.Lock()
	if eb.subs[ch] == nil {
		eb.subs[ch] = make(map[*subscription]struct{})
	}
	eb.subs[ch][s] = struct{}{}
	eb.mu.Unlock()

	go func() {
		defer func() {
			eb.mu.Lock()
			delete(eb.subs[ch], s)
			eb.mu.Unlock()
			close(s.done)
		}()
		for {
			select {
			case <-subCtx.Done():
				return
			case e := <-s.queue:
				handler(subCtx, e)
			}
		}
	}()

	return s, nil
}

type subscription struct {
	queue  chan event.Event
	cancel context.CancelFunc
	done   chan struct{}
}

func (s *subscription) Unsubscribe() {
	s.cancel()
	<-s.done
}
