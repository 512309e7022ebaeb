package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const publishTimeout = 5 * time.Second

// Envelope is the wire form of a bridged event.
type Envelope struct {
	Topic   string          `json:"topic"`
	Origin  string          `json:"origin"`
	Payload json.RawMessage `json:"payload"`
}

// DecodeFunc turns a bridged JSON payload back into the value published locally.
type DecodeFunc func(raw []byte) (any, error)

// RedisBridge carries bus topics across processes over Redis Pub/Sub. The
// Redis channel is named after the topic.
type RedisBridge struct {
	rdb    *redis.Client
	bus    *Bus
	origin string
	log    zerolog.Logger

	mu      sync.Mutex
	exports map[string]*Subscription
}

// NewRedisBridge creates a bridge with a fresh origin id.
func NewRedisBridge(rdb *redis.Client, bus *Bus, log zerolog.Logger) *RedisBridge {
	return &RedisBridge{
		rdb:     rdb,
		bus:     bus,
		origin:  uuid.New().String(),
		exports: make(map[string]*Subscription),
		log:     log.With().Str("component", "redis_bridge").Logger(),
	}
}

// Origin identifies messages exported by this bridge.
func (b *RedisBridge) Origin() string {
	return b.origin
}

// Export forwards every local publication on topic to Redis. Release the
// returned subscription to stop forwarding.
func (b *RedisBridge) Export(topic string) *Subscription {
	sub := b.bus.Subscribe(topic, func(payload any) {
		msg, err := b.encode(topic, payload)
		if err != nil {
			b.log.Error().Err(err).Str("topic", topic).Msg("encode event")
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := b.rdb.Publish(ctx, topic, msg).Err(); err != nil {
			b.log.Error().Err(err).Str("topic", topic).Msg("publish event to redis")
		}
	})

	b.mu.Lock()
	b.exports[topic] = sub
	b.mu.Unlock()
	return sub
}

// Import republishes messages from the Redis channel topic on the local bus.
// Messages exported by this bridge are skipped. Blocks until ctx is done.
func (b *RedisBridge) Import(ctx context.Context, topic string, decode DecodeFunc) error {
	pubsub := b.rdb.Subscribe(ctx, topic)
	defer pubsub.Close()

	// Wait for the subscription confirmation so no message is lost after return.
	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}

	b.log.Info().Str("topic", topic).Msg("importing events from redis")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.deliver(topic, []byte(msg.Payload), decode)
		}
	}
}

func (b *RedisBridge) encode(topic string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return json.Marshal(Envelope{Topic: topic, Origin: b.origin, Payload: raw})
}

func (b *RedisBridge) deliver(topic string, msg []byte, decode DecodeFunc) {
	var env Envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		b.log.Warn().Err(err).Str("topic", topic).Msg("malformed bridged event")
		return
	}
	if env.Origin == b.origin {
		return
	}

	payload, err := decode(env.Payload)
	if err != nil {
		b.log.Warn().Err(err).Str("topic", topic).Msg("decode bridged payload")
		return
	}
	// Never re-export an imported event.
	b.mu.Lock()
	export := b.exports[topic]
	b.mu.Unlock()
	b.bus.publish(topic, payload, export)
}
