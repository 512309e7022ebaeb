// Package eventbus is the in-process publish/subscribe channel shared by all
// live views. Dispatch is synchronous on the publisher's goroutine.
package eventbus

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// HandlerFunc receives the payload of a published event.
type HandlerFunc func(payload any)

// Bus dispatches published payloads to the handlers subscribed to a topic.
type Bus struct {
	mu     sync.Mutex
	subs   map[string][]*Subscription
	nextID atomic.Int64
	log    zerolog.Logger
}

// New creates an empty Bus.
func New(log zerolog.Logger) *Bus {
	return &Bus{
		subs: make(map[string][]*Subscription),
		log:  log.With().Str("component", "event_bus").Logger(),
	}
}

// Subscription is the token returned by Subscribe. Releasing it with
// Unsubscribe stops further deliveries.
type Subscription struct {
	ID      string
	Topic   string
	bus     *Bus
	handler HandlerFunc
	active  atomic.Bool
}

// Unsubscribe releases the subscription. Safe to call more than once and
// from inside a handler.
func (s *Subscription) Unsubscribe() {
	if s == nil || !s.active.CompareAndSwap(true, false) {
		return
	}
	s.bus.remove(s)
}

// Active reports whether the subscription still receives events.
func (s *Subscription) Active() bool {
	return s != nil && s.active.Load()
}

// Subscribe registers handler for topic.
func (b *Bus) Subscribe(topic string, handler HandlerFunc) *Subscription {
	sub := &Subscription{
		ID:      fmt.Sprintf("%s-%d", topic, b.nextID.Add(1)),
		Topic:   topic,
		bus:     b,
		handler: handler,
	}
	sub.active.Store(true)

	b.mu.Lock()
	// Copy-on-write so in-flight dispatches keep their snapshot.
	current := b.subs[topic]
	next := make([]*Subscription, len(current), len(current)+1)
	copy(next, current)
	b.subs[topic] = append(next, sub)
	b.mu.Unlock()

	b.log.Debug().Str("topic", topic).Str("subscription", sub.ID).Msg("subscribed")
	return sub
}

// Publish delivers payload to every handler subscribed to topic, in
// subscription order, and returns the number of handlers invoked.
func (b *Bus) Publish(topic string, payload any) int {
	return b.publish(topic, payload, nil)
}

// publish dispatches like Publish but never invokes skip.
func (b *Bus) publish(topic string, payload any, skip *Subscription) int {
	b.mu.Lock()
	snapshot := b.subs[topic]
	b.mu.Unlock()

	delivered := 0
	for _, sub := range snapshot {
		// A handler earlier in this dispatch may have released it.
		if sub == skip || !sub.active.Load() {
			continue
		}
		sub.handler(payload)
		delivered++
	}
	return delivered
}

// SubscriberCount returns the number of active subscriptions for topic.
func (b *Bus) SubscriberCount(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[topic])
}

func (b *Bus) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	current := b.subs[sub.Topic]
	next := make([]*Subscription, 0, len(current))
	for _, s := range current {
		if s != sub {
			next = append(next, s)
		}
	}
	if len(next) == 0 {
		delete(b.subs, sub.Topic)
	} else {
		b.subs[sub.Topic] = next
	}

	b.log.Debug().Str("topic", sub.Topic).Str("subscription", sub.ID).Msg("unsubscribed")
}

// Publish is the typed form of Bus.Publish.
func Publish[T any](b *Bus, topic string, payload T) int {
	return b.Publish(topic, payload)
}

// Subscribe registers a typed handler. Payloads of any other type are
// skipped and logged at debug level.
func Subscribe[T any](b *Bus, topic string, handler func(T)) *Subscription {
	return b.Subscribe(topic, func(payload any) {
		typed, ok := payload.(T)
		if !ok {
			b.log.Debug().
				Str("topic", topic).
				Str("got", fmt.Sprintf("%T", payload)).
				Str("want", fmt.Sprintf("%T", *new(T))).
				Msg("payload type mismatch, skipping")
			return
		}
		handler(typed)
	})
}
