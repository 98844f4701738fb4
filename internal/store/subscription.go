package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/minu803/redis-chatbot/internal/models"
)

// confirmTimeout bounds the wait for (un)subscribe acknowledgements.
const confirmTimeout = 5 * time.Second

// redisSubscription tracks the channels the server confirmed. Messages that
// arrive while waiting for a confirmation are queued for Poll.
type redisSubscription struct {
	pubsub  *redis.PubSub
	timeout time.Duration
	active  map[string]struct{}
	pending []models.Message
}

// Subscribe subscribes to every channel not already live.
func (s *redisSubscription) Subscribe(ctx context.Context, channels ...string) error {
	missing := s.filter(channels, false)
	if len(missing) == 0 {
		return nil
	}

	if err := s.pubsub.Subscribe(ctx, missing...); err != nil {
		return wrapErr(err)
	}

	if err := s.await(ctx, "subscribe", missing); err != nil {
		// Drop the channels from the client's resubscribe set as well.
		_ = s.pubsub.Unsubscribe(context.WithoutCancel(ctx), missing...)
		return err
	}

	for _, ch := range missing {
		s.active[ch] = struct{}{}
	}
	return nil
}

// Unsubscribe unsubscribes from every channel currently live.
func (s *redisSubscription) Unsubscribe(ctx context.Context, channels ...string) error {
	present := s.filter(channels, true)
	if len(present) == 0 {
		return nil
	}

	if err := s.pubsub.Unsubscribe(ctx, present...); err != nil {
		s.restore(ctx, present)
		return wrapErr(err)
	}

	if err := s.await(ctx, "unsubscribe", present); err != nil {
		s.restore(ctx, present)
		return err
	}

	for _, ch := range present {
		delete(s.active, ch)
	}
	return nil
}

// restore puts channels back into the client's resubscribe set after a
// failed unsubscribe, so a reconnect subscribes to every channel still
// reported as live.
func (s *redisSubscription) restore(ctx context.Context, channels []string) {
	// The set is updated even when the command itself cannot be sent.
	_ = s.pubsub.Subscribe(context.WithoutCancel(ctx), channels...)
}

// Poll returns the next queued or received message.
func (s *redisSubscription) Poll(ctx context.Context) (models.Message, bool, error) {
	if len(s.pending) > 0 {
		msg := s.pending[0]
		s.pending = s.pending[1:]
		return msg, true, nil
	}

	if len(s.active) == 0 {
		return models.Message{}, false, nil
	}

	for {
		received, err := s.pubsub.ReceiveTimeout(ctx, s.timeout)
		if err != nil {
			if isTimeout(err) {
				return models.Message{}, false, nil
			}
			return models.Message{}, false, wrapErr(err)
		}

		// Late acknowledgements and pongs are skipped.
		if msg, ok := received.(*redis.Message); ok {
			return models.Message{Channel: msg.Channel, Payload: msg.Payload}, true, nil
		}
	}
}

// Channels returns the live subscriptions, sorted.
func (s *redisSubscription) Channels() []string {
	channels := make([]string, 0, len(s.active))
	for ch := range s.active {
		channels = append(channels, ch)
	}
	sort.Strings(channels)
	return channels
}

// Close releases the pub/sub connection.
func (s *redisSubscription) Close() error {
	s.active = make(map[string]struct{})
	s.pending = nil
	return wrapErr(s.pubsub.Close())
}

// filter returns the distinct channels whose live state equals live.
func (s *redisSubscription) filter(channels []string, live bool) []string {
	seen := make(map[string]bool, len(channels))
	out := make([]string, 0, len(channels))
	for _, ch := range channels {
		if seen[ch] {
			continue
		}
		seen[ch] = true
		if _, ok := s.active[ch]; ok == live {
			out = append(out, ch)
		}
	}
	return out
}

// await reads replies until the server acknowledged kind for every channel.
func (s *redisSubscription) await(ctx context.Context, kind string, channels []string) error {
	want := make(map[string]bool, len(channels))
	for _, ch := range channels {
		want[ch] = true
	}

	deadline := time.Now().Add(confirmTimeout)
	for len(want) > 0 {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return fmt.Errorf("%w: %s not acknowledged", ErrUnavailable, kind)
		}

		received, err := s.pubsub.ReceiveTimeout(ctx, remaining)
		if err != nil {
			return wrapErr(err)
		}

		switch msg := received.(type) {
		case *redis.Subscription:
			if msg.Kind == kind {
				delete(want, msg.Channel)
			}
		case *redis.Message:
			s.pending = append(s.pending, models.Message{Channel: msg.Channel, Payload: msg.Payload})
		}
	}
	return nil
}
