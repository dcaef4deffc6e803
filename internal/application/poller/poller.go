package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hub-activity-api/internal/domain"
)

type badgeRefresher interface {
	Refresh(ctx context.Context, hubID, userID string) (domain.BadgeCounts, error)
}

type unreadCounter interface {
	UnreadCount(ctx context.Context, hubID, userID string) (int, error)
}

// Poller drives badge refreshes for active (hub, user) sessions: once
// immediately on Watch, then on a fixed interval until Unwatch or Close.
// Re-watching the same pair (e.g. the user switched hubs and back) cancels
// the old interval and starts fresh, so no stale cross-hub count lingers.
//
// A refresh that outlives its session is allowed to finish; its result is
// discarded at apply time when the session generation has moved on.
type Poller struct {
	badges   badgeRefresher
	feed     unreadCounter
	interval time.Duration

	mu        sync.Mutex
	watches   map[string]*watch
	snapshots map[string]domain.BadgeCounts
}

type watch struct {
	cancel     context.CancelFunc
	generation uint64
}

func New(badges badgeRefresher, feed unreadCounter, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Poller{
		badges:    badges,
		feed:      feed,
		interval:  interval,
		watches:   make(map[string]*watch),
		snapshots: make(map[string]domain.BadgeCounts),
	}
}

func key(hubID, userID string) string { return userID + "#" + hubID }

// Watch starts (or restarts) polling for (hub, user).
func (p *Poller) Watch(hubID, userID string) {
	k := key(hubID, userID)

	p.mu.Lock()
	var gen uint64
	if old, ok := p.watches[k]; ok {
		old.cancel()
		gen = old.generation + 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.watches[k] = &watch{cancel: cancel, generation: gen}
	p.mu.Unlock()

	go p.run(ctx, hubID, userID, gen)
}

// Unwatch stops polling for (hub, user) and drops its snapshot.
func (p *Poller) Unwatch(hubID, userID string) {
	k := key(hubID, userID)
	p.mu.Lock()
	if w, ok := p.watches[k]; ok {
		w.cancel()
		delete(p.watches, k)
	}
	delete(p.snapshots, k)
	p.mu.Unlock()
}

// Snapshot returns the most recently applied counts for (hub, user).
func (p *Poller) Snapshot(hubID, userID string) (domain.BadgeCounts, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	counts, ok := p.snapshots[key(hubID, userID)]
	return counts, ok
}

// Close cancels every active watch.
func (p *Poller) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for k, w := range p.watches {
		w.cancel()
		delete(p.watches, k)
		delete(p.snapshots, k)
	}
}

func (p *Poller) run(ctx context.Context, hubID, userID string, gen uint64) {
	p.tick(ctx, hubID, userID, gen)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx, hubID, userID, gen)
		}
	}
}

func (p *Poller) tick(ctx context.Context, hubID, userID string, gen uint64) {
	counts, err := p.badges.Refresh(ctx, hubID, userID)
	if err != nil {
		// Cancellation lands here between teardown and the ticker stopping.
		if ctx.Err() == nil {
			slog.Warn("poller: badge refresh failed", "hub", hubID, "user", userID, "err", err)
		}
		return
	}
	if _, err := p.feed.UnreadCount(ctx, hubID, userID); err != nil && ctx.Err() == nil {
		slog.Warn("poller: unread count refresh failed", "hub", hubID, "user", userID, "err", err)
	}
	p.apply(hubID, userID, gen, counts)
}

// apply installs a snapshot only if the session that produced it is still the
// current one. Two overlapping refreshes of the same generation both apply;
// last writer wins, which is safe because counts are idempotent point-in-time
// snapshots, not increments.
func (p *Poller) apply(hubID, userID string, gen uint64, counts domain.BadgeCounts) {
	k := key(hubID, userID)
	p.mu.Lock()
	defer p.mu.Unlock()
	w, ok := p.watches[k]
	if !ok || w.generation != gen {
		return
	}
	p.snapshots[k] = counts
}
