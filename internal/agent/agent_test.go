package agent

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/minu803/redis-chatbot/internal/models"
	"github.com/minu803/redis-chatbot/internal/session"
	"github.com/minu803/redis-chatbot/internal/store"
)

func newStore(t *testing.T, mr *miniredis.Miniredis) *store.RedisStore {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), Protocol: 2})
	s := store.NewRedisStoreWithClient(client, 20*time.Millisecond)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestAgent(t *testing.T) (*miniredis.Miniredis, *Agent) {
	t.Helper()
	mr := miniredis.RunT(t)
	return mr, New(newStore(t, mr), zerolog.Nop(), Options{HistoryLimit: 1000})
}

func newTestSession(t *testing.T, a *Agent) *session.Session {
	t.Helper()
	sess := a.NewSession(context.Background())
	t.Cleanup(func() { _ = sess.Close() })
	return sess
}

func identify(t *testing.T, a *Agent, sess *session.Session, username string) {
	t.Helper()
	require.NoError(t, a.Identity.Identify(context.Background(), sess, models.UserProfile{
		Username: username,
		Age:      "30",
		Gender:   "F",
		Location: "NYC",
	}))
}

// pollUntil polls sess until a message arrives or the deadline passes.
func pollUntil(t *testing.T, a *Agent, sess *session.Session) (models.Message, bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		msg, ok, err := a.Messaging.PollNext(context.Background(), sess)
		require.NoError(t, err)
		if ok {
			return msg, true
		}
	}
	return models.Message{}, false
}
