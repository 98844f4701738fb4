package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultPollTimeout = 50 * time.Millisecond

// RedisStore implements Store on top of a go-redis client.
type RedisStore struct {
	client      *redis.Client
	pollTimeout time.Duration
}

// NewRedisStore connects to redisURL and verifies the connection.
func NewRedisStore(ctx context.Context, redisURL string, pollTimeout time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	s := NewRedisStoreWithClient(redis.NewClient(opts), pollTimeout)

	if err := s.Ping(ctx); err != nil {
		_ = s.client.Close()
		return nil, err
	}

	return s, nil
}

// NewRedisStoreWithClient wraps an existing client. Command latency is
// recorded through a client hook.
func NewRedisStoreWithClient(client *redis.Client, pollTimeout time.Duration) *RedisStore {
	if pollTimeout <= 0 {
		pollTimeout = defaultPollTimeout
	}
	client.AddHook(metricsHook{})
	return &RedisStore{client: client, pollTimeout: pollTimeout}
}

// Client exposes the underlying client.
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return wrapErr(s.client.Ping(ctx).Err())
}

// Get returns the string stored at key.
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, wrapErr(err)
	}
	return val, true, nil
}

// Set stores value at key without expiry.
func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	return wrapErr(s.client.Set(ctx, key, value, 0).Err())
}

// HashSetFields writes fields into the hash at key, overwriting existing ones.
func (s *RedisStore) HashSetFields(ctx context.Context, key string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	args := make([]interface{}, 0, len(fields)*2)
	for field, value := range fields {
		args = append(args, field, value)
	}
	return wrapErr(s.client.HSet(ctx, key, args...).Err())
}

// HashGetAll returns every field of the hash at key. A missing key yields an empty map.
func (s *RedisStore) HashGetAll(ctx context.Context, key string) (map[string]string, error) {
	fields, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, wrapErr(err)
	}
	return fields, nil
}

// SetAdd adds member to the set at key.
func (s *RedisStore) SetAdd(ctx context.Context, key, member string) (bool, error) {
	n, err := s.client.SAdd(ctx, key, member).Result()
	if err != nil {
		return false, wrapErr(err)
	}
	return n > 0, nil
}

// SetRemove removes member from the set at key.
func (s *RedisStore) SetRemove(ctx context.Context, key, member string) (bool, error) {
	n, err := s.client.SRem(ctx, key, member).Result()
	if err != nil {
		return false, wrapErr(err)
	}
	return n > 0, nil
}

// SetMembers returns the members of the set at key.
func (s *RedisStore) SetMembers(ctx context.Context, key string) ([]string, error) {
	members, err := s.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, wrapErr(err)
	}
	return members, nil
}

// ListPushFront prepends values to the list at key.
func (s *RedisStore) ListPushFront(ctx context.Context, key string, values ...string) error {
	if len(values) == 0 {
		return nil
	}
	return wrapErr(s.client.LPush(ctx, key, toArgs(values)...).Err())
}

// ListPushBack appends values to the list at key.
func (s *RedisStore) ListPushBack(ctx context.Context, key string, values ...string) error {
	if len(values) == 0 {
		return nil
	}
	return wrapErr(s.client.RPush(ctx, key, toArgs(values)...).Err())
}

// ListPopFront removes and returns the head of the list at key.
func (s *RedisStore) ListPopFront(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.LPop(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, wrapErr(err)
	}
	return val, true, nil
}

// ListRange returns the elements between start and stop, inclusive.
func (s *RedisStore) ListRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	vals, err := s.client.LRange(ctx, key, start, stop).Result()
	if err != nil {
		return nil, wrapErr(err)
	}
	return vals, nil
}

// ListTrim keeps only the elements between start and stop, inclusive.
func (s *RedisStore) ListTrim(ctx context.Context, key string, start, stop int64) error {
	return wrapErr(s.client.LTrim(ctx, key, start, stop).Err())
}

// ListDelete removes the list at key.
func (s *RedisStore) ListDelete(ctx context.Context, key string) error {
	return wrapErr(s.client.Del(ctx, key).Err())
}

// ListRotate moves the head of the list to the tail with a single LMOVE.
func (s *RedisStore) ListRotate(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.LMove(ctx, key, key, "LEFT", "RIGHT").Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, wrapErr(err)
	}
	return val, true, nil
}

// ListReplace deletes the list and pushes values inside one MULTI/EXEC.
func (s *RedisStore) ListReplace(ctx context.Context, key string, values ...string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(values) > 0 {
			pipe.RPush(ctx, key, toArgs(values)...)
		}
		return nil
	})
	return wrapErr(err)
}

// Publish sends payload to channel and returns the number of receivers.
func (s *RedisStore) Publish(ctx context.Context, channel, payload string) (int64, error) {
	n, err := s.client.Publish(ctx, channel, payload).Result()
	if err != nil {
		return 0, wrapErr(err)
	}
	return n, nil
}

// NewSubscription opens a pub/sub handle. No connection is made until the
// first channel is subscribed.
func (s *RedisStore) NewSubscription(ctx context.Context) Subscription {
	return &redisSubscription{
		pubsub:  s.client.Subscribe(ctx),
		timeout: s.pollTimeout,
		active:  make(map[string]struct{}),
	}
}

func toArgs(values []string) []interface{} {
	args := make([]interface{}, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

// wrapErr marks connectivity failures with ErrUnavailable.
func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	if isUnavailable(err) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}

func isUnavailable(err error) bool {
	switch {
	case errors.Is(err, redis.ErrClosed),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET):
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
