package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// AlertChannel is the Redis channel alerts are published on.
const AlertChannel = "sales.alerts"

// Sink receives alerts produced by a poll.
type Sink interface {
	Publish(ctx context.Context, alerts []Alert) error
}

// Sinks fans alerts out to every sink in order and joins their errors.
type Sinks []Sink

// Publish implements Sink.
func (s Sinks) Publish(ctx context.Context, alerts []Alert) error {
	var errs []error
	for _, sink := range s {
		if sink == nil {
			continue
		}
		if err := sink.Publish(ctx, alerts); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RedisPublisher publishes every alert as JSON on a Redis channel.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

// NewRedisPublisher returns a publisher on AlertChannel. A nil client yields a
// nil publisher, which is a valid no-op sink.
func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	if client == nil {
		return nil
	}
	return &RedisPublisher{client: client, channel: AlertChannel}
}

// Publish implements Sink.
func (p *RedisPublisher) Publish(ctx context.Context, alerts []Alert) error {
	if p == nil {
		return nil
	}
	for _, alert := range alerts {
		payload, err := json.Marshal(alert)
		if err != nil {
			return fmt.Errorf("live: marshal alert: %w", err)
		}
		if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
			return fmt.Errorf("live: publish alert: %w", err)
		}
	}
	return nil
}

// Subscribe decodes alerts from the channel and passes them to fn until ctx is done.
func (p *RedisPublisher) Subscribe(ctx context.Context, fn func(Alert)) error {
	if p == nil {
		return nil
	}
	sub := p.client.Subscribe(ctx, p.channel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("live: subscribe: %w", err)
	}
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var alert Alert
			if err := json.Unmarshal([]byte(msg.Payload), &alert); err != nil {
				continue
			}
			fn(alert)
		}
	}
}
