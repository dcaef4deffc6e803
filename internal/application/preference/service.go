package preference

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hub-activity-api/internal/domain"
)

// Service is the per-(user,hub) notification preference registry.
type Service interface {
	// Get returns the stored preferences, or the all-enabled defaults when no
	// row exists (fail-open).
	Get(ctx context.Context, hubID, userID string) (domain.NotificationPreferences, error)
	// Set merges a partial update into the stored row (creating it with
	// defaults for absent fields) and returns the resulting preferences.
	// Toggles are applied optimistically: on a durable-write failure the
	// returned preferences are re-fetched server truth, not the optimistic
	// guess, alongside the error.
	Set(ctx context.Context, hubID, userID string, patch domain.PreferencesPatch) (domain.NotificationPreferences, error)
}

type preferenceStore interface {
	Get(ctx context.Context, hubID, userID string) (*domain.NotificationPreferences, error)
	Upsert(ctx context.Context, hubID, userID string, fields map[string]interface{}) error
}

type service struct {
	repo preferenceStore
}

func NewService(repo preferenceStore) Service {
	return &service{repo: repo}
}

func (s *service) Get(ctx context.Context, hubID, userID string) (domain.NotificationPreferences, error) {
	p, err := s.repo.Get(ctx, hubID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.DefaultPreferences(userID, hubID), nil
		}
		return domain.NotificationPreferences{}, err
	}
	return *p, nil
}

func (s *service) Set(ctx context.Context, hubID, userID string, patch domain.PreferencesPatch) (domain.NotificationPreferences, error) {
	// Optimistic local result: current (or default) state with the patch applied.
	current, err := s.Get(ctx, hubID, userID)
	if err != nil {
		// Read failure degrades to defaults; the upsert below still lands the
		// toggles the caller asked for.
		slog.Warn("preferences: read before set failed", "hub", hubID, "user", userID, "err", err)
		current = domain.DefaultPreferences(userID, hubID)
	}
	optimistic := current
	patch.Apply(&optimistic)

	fields := patch.Fields()
	if len(fields) == 0 {
		return current, nil
	}
	if err := s.repo.Upsert(ctx, hubID, userID, fields); err != nil {
		// Reconcile: overwrite the optimistic guess with server truth rather
		// than attempting a diff rollback — toggles are idempotent booleans.
		truth, getErr := s.Get(ctx, hubID, userID)
		if getErr != nil {
			return current, err
		}
		return truth, err
	}
	return optimistic, nil
}
