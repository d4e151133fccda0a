// Package event provides an in-process publish/subscribe bus used to
// decouple collaborators such as the auth session from the controllers
// that react to it.
package event

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Topics published on the bus.
const (
	TopicLogin         = "auth.login"
	TopicLogout        = "auth.logout"
	TopicCatalogLoaded = "catalog.loaded"
	TopicCatalogFailed = "catalog.failed"
	TopicSourceFailed  = "catalog.source_failed"
	TopicFiltersApply  = "filters.applied"
)

// Event is a message delivered to subscribers.
type Event struct {
	Topic     string
	Source    string
	Timestamp time.Time
	Payload   any
}

// Handler receives events.
type Handler func(ctx context.Context, e Event)

// Publisher is the publishing side of the bus.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	PublishAsync(ctx context.Context, e Event)
}

// Subscriber is the subscribing side of the bus.
type Subscriber interface {
	Subscribe(topic string, h Handler) (unsubscribe func())
	SubscribeAll(h Handler) (unsubscribe func())
}

// Bus is both a Publisher and a Subscriber.
type Bus interface {
	Publisher
	Subscriber
}

type subscription struct {
	id      uint64
	handler Handler
}

// MemoryBus is a synchronous in-memory Bus. Handler panics are recovered
// and logged so one faulty subscriber cannot break delivery to others.
type MemoryBus struct {
	logger *zap.Logger

	mu     sync.RWMutex
	nextID uint64
	topics map[string][]subscription
	all    []subscription
}

var _ Bus = (*MemoryBus)(nil)

// NewBus creates an empty bus.
func NewBus(logger *zap.Logger) *MemoryBus {
	return &MemoryBus{
		logger: logger.Named("event"),
		topics: make(map[string][]subscription),
	}
}

// Subscribe registers h for one topic.
func (b *MemoryBus) Subscribe(topic string, h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.topics[topic] = append(b.topics[topic], subscription{id: id, handler: h})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.topics[topic] = remove(b.topics[topic], id)
	}
}

// SubscribeAll registers h for every topic.
func (b *MemoryBus) SubscribeAll(h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.all = append(b.all, subscription{id: id, handler: h})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.all = remove(b.all, id)
	}
}

// Publish delivers e to every matching handler before returning.
func (b *MemoryBus) Publish(ctx context.Context, e Event) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	for _, h := range b.handlers(e.Topic) {
		b.invoke(ctx, h, e)
	}
	return nil
}

// PublishAsync delivers e to each handler on its own goroutine.
func (b *MemoryBus) PublishAsync(ctx context.Context, e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	for _, h := range b.handlers(e.Topic) {
		go b.invoke(ctx, h, e)
	}
}

func (b *MemoryBus) handlers(topic string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Handler, 0, len(b.topics[topic])+len(b.all))
	for _, s := range b.topics[topic] {
		out = append(out, s.handler)
	}
	for _, s := range b.all {
		out = append(out, s.handler)
	}
	return out
}

func (b *MemoryBus) invoke(ctx context.Context, h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				zap.String("topic", e.Topic),
				zap.Any("panic", r),
			)
		}
	}()
	h(ctx, e)
}

func remove(subs []subscription, id uint64) []subscription {
	out := subs[:0:0]
	for _, s := range subs {
		if s.id != id {
			out = append(out, s)
		}
	}
	return out
}
