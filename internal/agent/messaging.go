package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/minu803/redis-chatbot/internal/metrics"
	"github.com/minu803/redis-chatbot/internal/models"
	"github.com/minu803/redis-chatbot/internal/session"
	"github.com/minu803/redis-chatbot/internal/store"
)

// Messaging publishes channel broadcasts and private messages.
type Messaging struct {
	store        store.Store
	logger       zerolog.Logger
	historyLimit int64

	// Serializes publish+append so history order matches publish order.
	mu sync.Mutex
}

// NewMessaging creates a router. historyLimit caps each channel history to
// its newest entries; 0 keeps everything.
func NewMessaging(s store.Store, logger zerolog.Logger, historyLimit int64) *Messaging {
	return &Messaging{store: s, logger: logger, historyLimit: historyLimit}
}

// Broadcast publishes message to channel and appends it to the channel history.
func (m *Messaging) Broadcast(ctx context.Context, channel, message string) error {
	// History entries are JSON strings
	entry, err := json.Marshal(message)
	if err != nil {
		return err
	}

	key := store.HistoryKey(channel)

	m.mu.Lock()
	defer m.mu.Unlock()

	receivers, err := m.store.Publish(ctx, channel, message)
	if err != nil {
		return fmt.Errorf("broadcast %s: %w", channel, err)
	}

	if err := m.store.ListPushBack(ctx, key, string(entry)); err != nil {
		return fmt.Errorf("record history %s: %w", channel, err)
	}

	if m.historyLimit > 0 {
		if err := m.store.ListTrim(ctx, key, -m.historyLimit, -1); err != nil {
			return fmt.Errorf("trim history %s: %w", channel, err)
		}
	}

	metrics.MessagesPublished.WithLabelValues("broadcast").Inc()
	m.logger.Debug().
		Str("channel", channel).
		Int64("receivers", receivers).
		Msg("message broadcast")
	return nil
}

// SendPrivate publishes a {from, message} envelope on the channel named
// after the recipient. Delivery is fire-and-forget.
func (m *Messaging) SendPrivate(ctx context.Context, from, to, message string) error {
	if from == "" {
		return ErrNotIdentified
	}

	envelope, err := json.Marshal(models.PrivateMessage{From: from, Message: message})
	if err != nil {
		return err
	}

	receivers, err := m.store.Publish(ctx, to, string(envelope))
	if err != nil {
		return fmt.Errorf("private message to %s: %w", to, err)
	}

	metrics.MessagesPublished.WithLabelValues("private").Inc()
	m.logger.Debug().
		Str("from", from).
		Str("to", to).
		Int64("receivers", receivers).
		Msg("private message sent")
	return nil
}

// ReadHistory returns the channel's messages in insertion order.
func (m *Messaging) ReadHistory(ctx context.Context, channel string) ([]string, error) {
	entries, err := m.store.ListRange(ctx, store.HistoryKey(channel), 0, -1)
	if err != nil {
		return nil, fmt.Errorf("read history %s: %w", channel, err)
	}

	messages := make([]string, 0, len(entries))
	for _, entry := range entries {
		var msg string
		if err := json.Unmarshal([]byte(entry), &msg); err != nil {
			// Written by something other than Broadcast; keep it verbatim.
			msg = entry
		}
		messages = append(messages, msg)
	}

	return messages, nil
}

// PollNext returns one pending message from any of the session's channels
// without blocking. The boolean is false when nothing is pending.
func (m *Messaging) PollNext(ctx context.Context, sess *session.Session) (models.Message, bool, error) {
	msg, ok, err := sess.Subscription().Poll(ctx)
	if err != nil {
		return models.Message{}, false, fmt.Errorf("poll: %w", err)
	}
	return msg, ok, nil
}
