package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("events")

// Bus publishes and subscribes to task events over Redis Pub/Sub.
type Bus struct {
	rdb *redis.Client
}

// NewBus creates a Redis-backed event bus.
func NewBus(rdb *redis.Client) *Bus {
	return &Bus{rdb: rdb}
}

// Publish sends event to the channel of userID.
func (b *Bus) Publish(ctx context.Context, userID int64, event Event) error {
	ctx, span := tracer.Start(ctx, "Bus.Publish", trace.WithAttributes(
		attribute.Int64("user.id", userID),
		attribute.String("event.type", event.Type),
	))
	defer span.End()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := b.rdb.Publish(ctx, UserChannel(userID), data).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Subscription streams the events of one user's channel.
type Subscription struct {
	pubsub *redis.PubSub
	events chan Event
}

// Subscribe listens on userID's channel until ctx is done or Close is called.
// The subscription is confirmed before Subscribe returns, so events published
// afterwards are not missed.
func (b *Bus) Subscribe(ctx context.Context, userID int64) (*Subscription, error) {
	pubsub := b.rdb.Subscribe(ctx, UserChannel(userID))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", UserChannel(userID), err)
	}

	sub := &Subscription{pubsub: pubsub, events: make(chan Event)}
	go sub.forward(ctx)
	return sub, nil
}

// Events returns the channel of decoded events. It is closed when the subscription ends.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Close ends the subscription.
func (s *Subscription) Close() error {
	return s.pubsub.Close()
}

func (s *Subscription) forward(ctx context.Context) {
	defer close(s.events)

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-s.pubsub.Channel():
			if !ok {
				return
			}
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				slog.WarnContext(ctx, "dropping malformed event", "channel", msg.Channel, "error", err)
				continue
			}
			select {
			case s.events <- event:
			case <-ctx.Done():
				return
			}
		}
	}
}
