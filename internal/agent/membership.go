package agent

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/minu803/redis-chatbot/internal/metrics"
	"github.com/minu803/redis-chatbot/internal/session"
	"github.com/minu803/redis-chatbot/internal/store"
)

// Membership keeps a user's recorded channel set and the session's live
// subscriptions in lockstep.
type Membership struct {
	store  store.Store
	logger zerolog.Logger
}

// NewMembership creates a membership synchronizer.
func NewMembership(s store.Store, logger zerolog.Logger) *Membership {
	return &Membership{store: s, logger: logger}
}

// Join records channel for the session's user and subscribes to it. When the
// subscription fails the set insertion is undone; if that fails as well a
// *MembershipDriftError is returned.
func (m *Membership) Join(ctx context.Context, sess *session.Session, channel string) error {
	if !sess.Identified() {
		return ErrNotIdentified
	}

	username := sess.Username()
	key := store.ChannelKey(username)

	added, err := m.store.SetAdd(ctx, key, channel)
	if err != nil {
		return fmt.Errorf("join %s: %w", channel, err)
	}

	if err := sess.Subscription().Subscribe(ctx, channel); err != nil {
		if added {
			if _, rerr := m.store.SetRemove(context.WithoutCancel(ctx), key, channel); rerr != nil {
				return m.drift(sess, "join", channel, err, rerr)
			}
		}
		return fmt.Errorf("join %s: %w", channel, err)
	}

	metrics.MembershipChanges.WithLabelValues("join").Inc()
	sess.Logger().Debug().Str("channel", channel).Bool("new", added).Msg("joined channel")
	return nil
}

// Leave removes channel from the session's user and unsubscribes. A failed
// unsubscribe restores the set member.
func (m *Membership) Leave(ctx context.Context, sess *session.Session, channel string) error {
	if !sess.Identified() {
		return ErrNotIdentified
	}

	username := sess.Username()
	key := store.ChannelKey(username)

	removed, err := m.store.SetRemove(ctx, key, channel)
	if err != nil {
		return fmt.Errorf("leave %s: %w", channel, err)
	}

	if err := sess.Subscription().Unsubscribe(ctx, channel); err != nil {
		if removed {
			if _, rerr := m.store.SetAdd(context.WithoutCancel(ctx), key, channel); rerr != nil {
				return m.drift(sess, "leave", channel, err, rerr)
			}
		}
		return fmt.Errorf("leave %s: %w", channel, err)
	}

	metrics.MembershipChanges.WithLabelValues("leave").Inc()
	sess.Logger().Debug().Str("channel", channel).Bool("was_member", removed).Msg("left channel")
	return nil
}

// Channels returns the recorded membership of username, sorted.
func (m *Membership) Channels(ctx context.Context, username string) ([]string, error) {
	channels, err := m.store.SetMembers(ctx, store.ChannelKey(username))
	if err != nil {
		return nil, fmt.Errorf("channels %s: %w", username, err)
	}
	sort.Strings(channels)
	return channels, nil
}

// Sync subscribes to recorded channels missing from the session and drops
// live subscriptions the user no longer records. Call it after switching
// users or reconnecting.
func (m *Membership) Sync(ctx context.Context, sess *session.Session) error {
	if !sess.Identified() {
		return ErrNotIdentified
	}

	recorded, err := m.Channels(ctx, sess.Username())
	if err != nil {
		return err
	}

	sub := sess.Subscription()
	live := sub.Channels()

	toJoin := difference(recorded, live)
	toLeave := difference(live, recorded)

	if err := sub.Subscribe(ctx, toJoin...); err != nil {
		return m.drift(sess, "sync", fmt.Sprint(toJoin), err, nil)
	}
	if err := sub.Unsubscribe(ctx, toLeave...); err != nil {
		return m.drift(sess, "sync", fmt.Sprint(toLeave), err, nil)
	}

	sess.Logger().Debug().
		Strs("subscribed", toJoin).
		Strs("unsubscribed", toLeave).
		Msg("membership synced")
	return nil
}

func (m *Membership) drift(sess *session.Session, op, channel string, cause, compensation error) error {
	metrics.MembershipDrift.WithLabelValues(op).Inc()

	err := &MembershipDriftError{
		Op:              op,
		Username:        sess.Username(),
		Channel:         channel,
		Cause:           cause,
		CompensationErr: compensation,
	}
	sess.Logger().Error().Err(err).Str("channel", channel).Str("op", op).Msg("membership drift")
	return err
}

// difference returns the elements of a missing from b, in a's order.
func difference(a, b []string) []string {
	exclude := make(map[string]struct{}, len(b))
	for _, v := range b {
		exclude[v] = struct{}{}
	}
	out := make([]string, 0, len(a))
	for _, v := range a {
		if _, ok := exclude[v]; !ok {
			out = append(out, v)
		}
	}
	return out
}
