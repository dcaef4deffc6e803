package badge

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/hub-activity-api/internal/domain"
	"golang.org/x/sync/errgroup"
)

// fanOutLimit bounds concurrent per-membership count queries so a user with
// hundreds of channels cannot exhaust the connection pool.
const fanOutLimit = 8

type Service interface {
	// Refresh computes a point-in-time unread snapshot for (hub, user).
	Refresh(ctx context.Context, hubID, userID string) (domain.BadgeCounts, error)
}

type membershipStore interface {
	ListChannels(ctx context.Context, hubID, userID string) ([]domain.ChannelMembership, error)
	ListGroups(ctx context.Context, hubID, userID string) ([]domain.GroupMembership, error)
}

type contentStore interface {
	CountChannelMessages(ctx context.Context, channelID string, after time.Time, excludeAuthorID string) (int, error)
	CountGroupPosts(ctx context.Context, groupID string, after time.Time) (int, error)
	CountEventsBetween(ctx context.Context, hubID string, from, to time.Time) (int, error)
}

type notificationStore interface {
	CountUnread(ctx context.Context, hubID, userID string, only []domain.NotificationType) (int, error)
}

type service struct {
	memberships   membershipStore
	content       contentStore
	notifications notificationStore
	now           func() time.Time
}

func NewService(memberships membershipStore, content contentStore, notifications notificationStore) Service {
	return &service{
		memberships:   memberships,
		content:       content,
		notifications: notifications,
		now:           time.Now,
	}
}

// Refresh scatters one count query per membership plus the event and
// notification counts, then joins on all of them. Every sub-query failure is
// isolated: logged and counted as zero, so one broken stream never blinds the
// whole badge. The only returned error is context cancellation.
func (s *service) Refresh(ctx context.Context, hubID, userID string) (domain.BadgeCounts, error) {
	var (
		unreadMessages int64
		unreadGroups   int64
		eventsToday    int64
		hasMore        atomic.Bool
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		channels, err := s.memberships.ListChannels(ctx, hubID, userID)
		if err != nil {
			slog.Warn("badge: channel memberships unavailable", "hub", hubID, "user", userID, "err", err)
			return nil
		}
		sum := s.sumChannelCounts(ctx, channels, userID)
		atomic.AddInt64(&unreadMessages, sum)
		return nil
	})

	g.Go(func() error {
		groups, err := s.memberships.ListGroups(ctx, hubID, userID)
		if err != nil {
			slog.Warn("badge: group memberships unavailable", "hub", hubID, "user", userID, "err", err)
			return nil
		}
		sum := s.sumGroupCounts(ctx, groups)
		atomic.AddInt64(&unreadGroups, sum)
		return nil
	})

	g.Go(func() error {
		todayStart := s.todayStart()
		n, err := s.content.CountEventsBetween(ctx, hubID, todayStart, todayStart.Add(24*time.Hour))
		if err != nil {
			slog.Warn("badge: event count unavailable", "hub", hubID, "err", err)
			return nil
		}
		atomic.AddInt64(&eventsToday, int64(n))
		return nil
	})

	g.Go(func() error {
		n, err := s.notifications.CountUnread(ctx, hubID, userID, nil)
		if err != nil {
			slog.Warn("badge: notification count unavailable", "hub", hubID, "user", userID, "err", err)
			return nil
		}
		hasMore.Store(n > 0)
		return nil
	})

	if err := g.Wait(); err != nil {
		return domain.BadgeCounts{}, err
	}
	if err := ctx.Err(); err != nil {
		return domain.BadgeCounts{}, err
	}

	return domain.BadgeCounts{
		UnreadMessages:       int(atomic.LoadInt64(&unreadMessages)),
		UnreadGroups:         int(atomic.LoadInt64(&unreadGroups)),
		UpcomingEventsToday:  int(atomic.LoadInt64(&eventsToday)),
		HasMoreNotifications: hasMore.Load(),
		RefreshedAt:          s.now().UTC(),
	}, nil
}

// sumChannelCounts fans out one count query per channel membership. Own
// messages never count; a missing cursor counts from the epoch. Zero
// memberships issue zero queries.
func (s *service) sumChannelCounts(ctx context.Context, channels []domain.ChannelMembership, userID string) int64 {
	if len(channels) == 0 {
		return 0
	}
	var sum int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(fanOutLimit)
	for _, m := range channels {
		g.Go(func() error {
			n, err := s.content.CountChannelMessages(ctx, m.ChannelID, m.LastReadAt, userID)
			if err != nil {
				slog.Warn("badge: channel count failed", "channel", m.ChannelID, "err", err)
				return nil
			}
			atomic.AddInt64(&sum, int64(n))
			return nil
		})
	}
	_ = g.Wait()
	return sum
}

func (s *service) sumGroupCounts(ctx context.Context, groups []domain.GroupMembership) int64 {
	if len(groups) == 0 {
		return 0
	}
	var sum int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(fanOutLimit)
	for _, m := range groups {
		g.Go(func() error {
			n, err := s.content.CountGroupPosts(ctx, m.GroupID, m.LastViewedAt)
			if err != nil {
				slog.Warn("badge: group count failed", "group", m.GroupID, "err", err)
				return nil
			}
			atomic.AddInt64(&sum, int64(n))
			return nil
		})
	}
	_ = g.Wait()
	return sum
}

func (s *service) todayStart() time.Time {
	now := s.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
