package billing

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// EventKind names a committed document mutation.
type EventKind string

const (
	EventCreated   EventKind = "created"
	EventUpdated   EventKind = "updated"
	EventDeleted   EventKind = "deleted"
	EventConverted EventKind = "converted"
)

// Event is emitted after a mutation has been committed.
type Event struct {
	Kind         EventKind    `json:"kind"`
	DocumentType DocumentType `json:"documentType"`
	DocumentID   string       `json:"documentId"`
	Number       string       `json:"number,omitempty"`
	At           time.Time    `json:"at"`
}

// Notifier receives committed mutations. Notify must not block for long and
// has no way to fail the mutation.
type Notifier interface {
	Notify(ctx context.Context, event Event)
}

// NotifierFunc adapts a function into a Notifier.
type NotifierFunc func(ctx context.Context, event Event)

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, event Event) {
	f(ctx, event)
}

// MultiNotifier fans an event out to every notifier in order.
type MultiNotifier []Notifier

// Notify forwards the event.
func (m MultiNotifier) Notify(ctx context.Context, event Event) {
	for _, n := range m {
		if n != nil {
			n.Notify(ctx, event)
		}
	}
}

// Broadcaster delivers events to in-process subscribers. Slow subscribers
// miss events instead of stalling writers.
type Broadcaster struct {
	mu     sync.RWMutex
	subs   map[int]chan Event
	nextID int
}

// NewBroadcaster constructs an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]chan Event)}
}

// Subscribe registers a listener with the given buffer. The returned function
// unsubscribes and closes the channel.
func (b *Broadcaster) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer < 0 {
		buffer = 0
	}
	ch := make(chan Event, buffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Notify delivers the event without blocking.
func (b *Broadcaster) Notify(_ context.Context, event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// DefaultEventChannel is the Redis channel document events are published on.
const DefaultEventChannel = "billing.documents"

// RedisNotifier publishes events as JSON over Redis pub/sub.
type RedisNotifier struct {
	client  *redis.Client
	channel string
	logger  *slog.Logger
}

// NewRedisNotifier constructs a publisher. An empty channel selects
// DefaultEventChannel.
func NewRedisNotifier(client *redis.Client, channel string, logger *slog.Logger) *RedisNotifier {
	if channel == "" {
		channel = DefaultEventChannel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisNotifier{client: client, channel: channel, logger: logger}
}

// Notify publishes the event. Failures are logged.
func (n *RedisNotifier) Notify(ctx context.Context, event Event) {
	if n == nil || n.client == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		n.logger.Warn("encode document event", slog.Any("error", err))
		return
	}
	if err := n.client.Publish(ctx, n.channel, payload).Err(); err != nil {
		n.logger.Warn("publish document event", slog.String("channel", n.channel), slog.Any("error", err))
	}
}
