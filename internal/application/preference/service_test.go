package preference

import (
	"context"
	"errors"
	"testing"

	"github.com/hub-activity-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPreferenceStore struct{ mock.Mock }

func (m *mockPreferenceStore) Get(ctx context.Context, hubID, userID string) (*domain.NotificationPreferences, error) {
	args := m.Called(ctx, hubID, userID)
	if p, ok := args.Get(0).(*domain.NotificationPreferences); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPreferenceStore) Upsert(ctx context.Context, hubID, userID string, fields map[string]interface{}) error {
	args := m.Called(ctx, hubID, userID, fields)
	return args.Error(0)
}

func boolPtr(b bool) *bool { return &b }

func TestGet_MissingRowReturnsAllEnabledDefaults(t *testing.T) {
	repo := &mockPreferenceStore{}
	repo.On("Get", mock.Anything, "h1", "u1").Return(nil, domain.ErrNotFound)

	p, err := NewService(repo).Get(context.Background(), "h1", "u1")

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPreferences("u1", "h1"), p)
	for _, nt := range domain.AllNotificationTypes() {
		assert.True(t, p.PreferenceFor(nt), "type %s should default to enabled", nt)
	}
}

func TestGet_StoredRowWins(t *testing.T) {
	repo := &mockPreferenceStore{}
	stored := domain.DefaultPreferences("u1", "h1")
	stored.Messages = false
	repo.On("Get", mock.Anything, "h1", "u1").Return(&stored, nil)

	p, err := NewService(repo).Get(context.Background(), "h1", "u1")

	require.NoError(t, err)
	assert.False(t, p.Messages)
	assert.True(t, p.Posts)
}

func TestSet_MergesPatchOverDefaults(t *testing.T) {
	repo := &mockPreferenceStore{}
	repo.On("Get", mock.Anything, "h1", "u1").Return(nil, domain.ErrNotFound)
	repo.On("Upsert", mock.Anything, "h1", "u1", mock.MatchedBy(func(fields map[string]interface{}) bool {
		v, ok := fields["events"]
		return len(fields) == 1 && ok && v == false
	})).Return(nil)

	p, err := NewService(repo).Set(context.Background(), "h1", "u1", domain.PreferencesPatch{
		Events: boolPtr(false),
	})

	require.NoError(t, err)
	assert.False(t, p.Events)
	assert.True(t, p.Messages)
	repo.AssertExpectations(t)
}

func TestSet_EmptyPatchSkipsWrite(t *testing.T) {
	repo := &mockPreferenceStore{}
	repo.On("Get", mock.Anything, "h1", "u1").Return(nil, domain.ErrNotFound)

	p, err := NewService(repo).Set(context.Background(), "h1", "u1", domain.PreferencesPatch{})

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPreferences("u1", "h1"), p)
	repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSet_WriteFailureReturnsServerTruth(t *testing.T) {
	repo := &mockPreferenceStore{}
	truth := domain.DefaultPreferences("u1", "h1")
	truth.Scores = false

	// Read-before-set and the reconcile read both see server truth; the upsert
	// of the optimistic toggle fails in between.
	repo.On("Get", mock.Anything, "h1", "u1").Return(&truth, nil)
	repo.On("Upsert", mock.Anything, "h1", "u1", mock.Anything).Return(errors.New("throttled"))

	p, err := NewService(repo).Set(context.Background(), "h1", "u1", domain.PreferencesPatch{
		Messages: boolPtr(false),
	})

	require.Error(t, err)
	// The optimistic Messages=false guess is reverted to truth.
	assert.True(t, p.Messages)
	assert.False(t, p.Scores)
}
