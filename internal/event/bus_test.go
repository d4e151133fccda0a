package event

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// recorder collects the topics a handler saw.
type recorder struct {
	mu     sync.Mutex
	topics []string
}

func (r *recorder) handle(_ context.Context, e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.topics = append(r.topics, e.Topic)
}

func (r *recorder) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.topics...)
}

func TestMemoryBus_Routing(t *testing.T) {
	tests := []struct {
		name      string
		subscribe func(b *MemoryBus, r *recorder) func()
		publish   []string
		unsubAt   int // unsubscribe after this many publishes; -1 never
		want      []string
	}{
		{
			name: "topic subscriber sees only its topic",
			subscribe: func(b *MemoryBus, r *recorder) func() {
				return b.Subscribe(TopicLogin, r.handle)
			},
			publish: []string{TopicLogin, TopicCatalogLoaded, TopicLogin},
			unsubAt: -1,
			want:    []string{TopicLogin, TopicLogin},
		},
		{
			name: "wildcard subscriber sees everything",
			subscribe: func(b *MemoryBus, r *recorder) func() {
				return b.SubscribeAll(r.handle)
			},
			publish: []string{TopicCatalogLoaded, TopicSourceFailed, TopicFiltersApply},
			unsubAt: -1,
			want:    []string{TopicCatalogLoaded, TopicSourceFailed, TopicFiltersApply},
		},
		{
			name: "unsubscribe stops delivery",
			subscribe: func(b *MemoryBus, r *recorder) func() {
				return b.Subscribe(TopicCatalogLoaded, r.handle)
			},
			publish: []string{TopicCatalogLoaded, TopicCatalogLoaded},
			unsubAt: 1,
			want:    []string{TopicCatalogLoaded},
		},
		{
			name: "wildcard unsubscribe stops delivery",
			subscribe: func(b *MemoryBus, r *recorder) func() {
				return b.SubscribeAll(r.handle)
			},
			publish: []string{TopicLogout, TopicLogin},
			unsubAt: 1,
			want:    []string{TopicLogout},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := NewBus(zaptest.NewLogger(t))
			r := &recorder{}
			unsub := tt.subscribe(bus, r)
			for i, topic := range tt.publish {
				if i == tt.unsubAt {
					unsub()
				}
				require.NoError(t, bus.Publish(context.Background(), Event{Topic: topic}))
			}
			require.Equal(t, tt.want, r.seen())
		})
	}
}

func TestMemoryBus_PublishDeliversPayloadAndTimestamp(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t))
	var got Event
	bus.Subscribe(TopicLogin, func(_ context.Context, e Event) { got = e })

	require.NoError(t, bus.Publish(context.Background(), Event{Topic: TopicLogin, Source: "auth", Payload: "user-1"}))
	require.Equal(t, "user-1", got.Payload)
	require.Equal(t, "auth", got.Source)
	require.False(t, got.Timestamp.IsZero())

	// An explicit timestamp is kept.
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, bus.Publish(context.Background(), Event{Topic: TopicLogin, Timestamp: at}))
	require.Equal(t, at, got.Timestamp)
}

func TestMemoryBus_PublishAsync(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t))
	var wg sync.WaitGroup
	wg.Add(2)
	r := &recorder{}
	handler := func(ctx context.Context, e Event) {
		defer wg.Done()
		r.handle(ctx, e)
	}
	bus.Subscribe(TopicSourceFailed, handler)
	bus.SubscribeAll(handler)

	bus.PublishAsync(context.Background(), Event{Topic: TopicSourceFailed})
	wg.Wait()
	require.Equal(t, []string{TopicSourceFailed, TopicSourceFailed}, r.seen())
}

func TestMemoryBus_RecoversFromPanickingHandler(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t))
	r := &recorder{}
	bus.Subscribe(TopicLogout, func(context.Context, Event) { panic("boom") })
	bus.Subscribe(TopicLogout, r.handle)

	require.NotPanics(t, func() {
		_ = bus.Publish(context.Background(), Event{Topic: TopicLogout})
	})
	require.Equal(t, []string{TopicLogout}, r.seen())
}

func TestMemoryBus_UnsubscribeFromInsideHandler(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t))
	calls := 0
	var unsub func()
	unsub = bus.Subscribe(TopicLogin, func(context.Context, Event) {
		calls++
		unsub()
	})

	_ = bus.Publish(context.Background(), Event{Topic: TopicLogin})
	_ = bus.Publish(context.Background(), Event{Topic: TopicLogin})
	require.Equal(t, 1, calls)
}

func TestMemoryBus_NoSubscribers(t *testing.T) {
	bus := NewBus(zaptest.NewLogger(t))
	require.NoError(t, bus.Publish(context.Background(), Event{Topic: "unused.topic"}))
}
