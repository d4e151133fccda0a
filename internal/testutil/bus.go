package testutil

import (
	"context"
	"sync"

	"github.com/HerbHall/pricescout/internal/event"
)

var _ event.Bus = (*MockBus)(nil)

// MockBus records every published event and delivers it synchronously to
// subscribers, PublishAsync included, so tests never have to wait.
type MockBus struct {
	mu     sync.Mutex
	events []event.Event
	nextID int
	subs   map[int]sub
}

type sub struct {
	topic   string // empty matches every topic
	handler event.Handler
}

func NewMockBus() *MockBus {
	return &MockBus{subs: make(map[int]sub)}
}

func (b *MockBus) Publish(ctx context.Context, e event.Event) error {
	b.mu.Lock()
	b.events = append(b.events, e)
	var handlers []event.Handler
	for id := 1; id <= b.nextID; id++ {
		if s, ok := b.subs[id]; ok && (s.topic == "" || s.topic == e.Topic) {
			handlers = append(handlers, s.handler)
		}
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(ctx, e)
	}
	return nil
}

func (b *MockBus) PublishAsync(ctx context.Context, e event.Event) {
	_ = b.Publish(ctx, e)
}

func (b *MockBus) Subscribe(topic string, h event.Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.subs[id] = sub{topic: topic, handler: h}
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

func (b *MockBus) SubscribeAll(h event.Handler) func() {
	return b.Subscribe("", h)
}

// Events returns a copy of the recorded events in publish order.
func (b *MockBus) Events() []event.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]event.Event, len(b.events))
	copy(out, b.events)
	return out
}

// Topics returns the topic of each recorded event in publish order.
func (b *MockBus) Topics() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.events))
	for _, e := range b.events {
		out = append(out, e.Topic)
	}
	return out
}

// Payloads returns the payloads published on topic.
func (b *MockBus) Payloads(topic string) []any {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []any
	for _, e := range b.events {
		if e.Topic == topic {
			out = append(out, e.Payload)
		}
	}
	return out
}
