package store

import (
	"context"
	"errors"

	"github.com/minu803/redis-chatbot/internal/models"
)

// ErrUnavailable is returned when the backing store cannot be reached.
var ErrUnavailable = errors.New("store unavailable")

// Store defines the capability set the chat agent needs from the shared
// key-value / pub-sub backend. A missing key is never an error: lookups
// report absence through their boolean result or an empty value.
// RedisStore implements this interface.
type Store interface {
	// Connection management
	Ping(ctx context.Context) error
	Close() error

	// Key-value
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error

	// Hash records
	HashSetFields(ctx context.Context, key string, fields map[string]string) error
	HashGetAll(ctx context.Context, key string) (map[string]string, error)

	// Sets. The boolean reports whether the set changed.
	SetAdd(ctx context.Context, key, member string) (bool, error)
	SetRemove(ctx context.Context, key, member string) (bool, error)
	SetMembers(ctx context.Context, key string) ([]string, error)

	// Lists
	ListPushFront(ctx context.Context, key string, values ...string) error
	ListPushBack(ctx context.Context, key string, values ...string) error
	ListPopFront(ctx context.Context, key string) (string, bool, error)
	ListRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	ListTrim(ctx context.Context, key string, start, stop int64) error
	ListDelete(ctx context.Context, key string) error

	// ListRotate moves the head of the list to its tail in one server-side
	// step and returns the moved value.
	ListRotate(ctx context.Context, key string) (string, bool, error)

	// ListReplace atomically swaps the list contents for values.
	ListReplace(ctx context.Context, key string, values ...string) error

	// Pub/Sub
	Publish(ctx context.Context, channel, payload string) (int64, error)
	NewSubscription(ctx context.Context) Subscription
}

// Subscription is the live pub/sub state of one session. Subscribe and
// Unsubscribe return once the server acknowledged the change and skip
// channels already in the requested state. A failed Unsubscribe leaves the
// channels live, including across a reconnect. Implementations are not safe
// for concurrent use.
type Subscription interface {
	Subscribe(ctx context.Context, channels ...string) error
	Unsubscribe(ctx context.Context, channels ...string) error

	// Poll returns at most one pending message without blocking beyond the
	// configured poll timeout. The boolean is false when nothing is pending.
	Poll(ctx context.Context) (models.Message, bool, error)

	// Channels returns the live subscriptions, sorted.
	Channels() []string
	Close() error
}
