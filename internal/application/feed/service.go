package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hub-activity-api/internal/domain"
)

// DefaultPageSize is the fixed feed page length.
const DefaultPageSize = 20

// Page is one slice of the notification feed.
type Page struct {
	Records []domain.Notification `json:"records"`
	HasMore bool                  `json:"has_more"`
}

// Service is the read-state-aware, preference-filtered view over the
// notification feed. It owns per-(hub,user) session state: the accumulated
// page list, the store cursor, and the cached unread counter. State is scoped
// to an explicit session key, never process-global, so concurrent sessions
// for different users (or the same user in different hubs) cannot interfere.
type Service interface {
	// List returns the next feed page. reset=true restarts at the top and
	// replaces the session's accumulated records; reset=false appends.
	List(ctx context.Context, hubID, userID string, reset bool) (Page, error)
	// UnreadCount returns the number of unread records, independent of the
	// paged listing state.
	UnreadCount(ctx context.Context, hubID, userID string) (int, error)
	// MarkRead marks one record read. Idempotent, scoped to the owning user,
	// and fail-closed: no local state changes unless the store write landed.
	MarkRead(ctx context.Context, notificationID, userID string) error
	// MarkAllRead marks every unread record for (hub, user) read.
	MarkAllRead(ctx context.Context, hubID, userID string) error
	// Records returns a copy of the session's accumulated records.
	Records(hubID, userID string) []domain.Notification
	// Drop releases the session state for (hub, user).
	Drop(hubID, userID string)
}

type notificationStore interface {
	ListPage(ctx context.Context, hubID, userID string, only []domain.NotificationType, limit int, cursor string) ([]domain.Notification, string, error)
	CountUnread(ctx context.Context, hubID, userID string, only []domain.NotificationType) (int, error)
	ListUnread(ctx context.Context, hubID, userID string) ([]domain.Notification, error)
	Get(ctx context.Context, notificationID string) (*domain.Notification, error)
	MarkRead(ctx context.Context, notificationID, userID string) error
}

type preferenceStore interface {
	Get(ctx context.Context, hubID, userID string) (*domain.NotificationPreferences, error)
}

// session is the per-(hub,user) feed state. generation guards overlapping
// fetches: a slower, older in-flight reset is discarded once a newer one has
// bumped the counter.
type session struct {
	mu         sync.Mutex
	generation uint64
	records    []domain.Notification
	cursor     string
	exhausted  bool
	unread     int
}

type service struct {
	repo     notificationStore
	prefs    preferenceStore
	pageSize int

	mu       sync.Mutex
	sessions map[string]*session
}

func NewService(repo notificationStore, prefs preferenceStore, pageSize int) Service {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &service{
		repo:     repo,
		prefs:    prefs,
		pageSize: pageSize,
		sessions: make(map[string]*session),
	}
}

func sessionKey(hubID, userID string) string { return userID + "#" + hubID }

func (s *service) session(hubID, userID string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := sessionKey(hubID, userID)
	st, ok := s.sessions[key]
	if !ok {
		st = &session{}
		s.sessions[key] = st
	}
	return st
}

func (s *service) List(ctx context.Context, hubID, userID string, reset bool) (Page, error) {
	st := s.session(hubID, userID)

	st.mu.Lock()
	if reset {
		st.generation++
	}
	gen := st.generation
	cursor := st.cursor
	exhausted := st.exhausted
	if reset {
		cursor = ""
		exhausted = false
	}
	st.mu.Unlock()

	if exhausted {
		// The probe fetch after an exactly-full final page.
		return Page{Records: nil, HasMore: false}, nil
	}

	only := s.typeFilter(ctx, hubID, userID)
	records, next, err := s.repo.ListPage(ctx, hubID, userID, only, s.pageSize, cursor)
	if err != nil {
		return Page{}, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if st.generation != gen {
		// A newer reset started while this fetch was in flight; its state is
		// fresher than this response. Serve the session's current view.
		return Page{
			Records: append([]domain.Notification(nil), st.records...),
			HasMore: !st.exhausted,
		}, nil
	}
	if reset {
		st.records = append([]domain.Notification(nil), records...)
	} else {
		st.records = append(st.records, records...)
	}
	st.cursor = next
	st.exhausted = next == ""
	return Page{
		Records: append([]domain.Notification(nil), records...),
		HasMore: len(records) == s.pageSize,
	}, nil
}

func (s *service) UnreadCount(ctx context.Context, hubID, userID string) (int, error) {
	only := s.typeFilter(ctx, hubID, userID)
	n, err := s.repo.CountUnread(ctx, hubID, userID, only)
	if err != nil {
		return 0, err
	}
	st := s.session(hubID, userID)
	st.mu.Lock()
	st.unread = n
	st.mu.Unlock()
	return n, nil
}

func (s *service) MarkRead(ctx context.Context, notificationID, userID string) error {
	n, err := s.repo.Get(ctx, notificationID)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return fmt.Errorf("notification %s: %w", notificationID, domain.ErrForbidden)
	}
	// Store first; local state only mutates after the write lands (fail-closed).
	if err := s.repo.MarkRead(ctx, notificationID, userID); err != nil {
		return err
	}
	if n.IsRead {
		// Second call on an already-read record: no double decrement.
		return nil
	}
	st := s.session(n.HubID, userID)
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.unread > 0 {
		st.unread--
	}
	for i := range st.records {
		if st.records[i].NotificationID == notificationID {
			st.records[i].IsRead = true
			break
		}
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, hubID, userID string) error {
	unread, err := s.repo.ListUnread(ctx, hubID, userID)
	if err != nil {
		return err
	}
	for _, n := range unread {
		if err := s.repo.MarkRead(ctx, n.NotificationID, userID); err != nil {
			// Fail-closed: the remainder stays unread and the local counter
			// keeps its last value.
			return fmt.Errorf("mark all read: %w", err)
		}
	}
	st := s.session(hubID, userID)
	st.mu.Lock()
	defer st.mu.Unlock()
	st.unread = 0
	for i := range st.records {
		st.records[i].IsRead = true
	}
	return nil
}

func (s *service) Records(hubID, userID string) []domain.Notification {
	st := s.session(hubID, userID)
	st.mu.Lock()
	defer st.mu.Unlock()
	return append([]domain.Notification(nil), st.records...)
}

func (s *service) Drop(hubID, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionKey(hubID, userID))
}

// typeFilter computes the store-level type restriction from the user's
// preferences. Only a strict, non-empty subset restricts the query; all
// enabled or none enabled yields no restriction, so a filtering defect can
// never fully hide the feed (fail-open). Preference read failures likewise
// fall open to no restriction.
func (s *service) typeFilter(ctx context.Context, hubID, userID string) []domain.NotificationType {
	p, err := s.prefs.Get(ctx, hubID, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			slog.Warn("feed: preferences unavailable, filtering disabled", "hub", hubID, "user", userID, "err", err)
		}
		return nil
	}
	enabled := p.EnabledTypes()
	if len(enabled) == 0 || len(enabled) == len(domain.AllNotificationTypes()) {
		return nil
	}
	return enabled
}
