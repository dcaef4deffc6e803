package push

import (
	"context"
	"errors"
	"testing"

	"github.com/hub-activity-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockTokenStore struct{ mock.Mock }

func (m *mockTokenStore) Upsert(ctx context.Context, t *domain.PushToken) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}
func (m *mockTokenStore) ListActive(ctx context.Context, userID string) ([]domain.PushToken, error) {
	args := m.Called(ctx, userID)
	var tokens []domain.PushToken
	if v, ok := args.Get(0).([]domain.PushToken); ok {
		tokens = v
	}
	return tokens, args.Error(1)
}
func (m *mockTokenStore) Deactivate(ctx context.Context, userID, token string) error {
	args := m.Called(ctx, userID, token)
	return args.Error(0)
}

type mockNotificationStore struct{ mock.Mock }

func (m *mockNotificationStore) Get(ctx context.Context, notificationID string) (*domain.Notification, error) {
	args := m.Called(ctx, notificationID)
	if n, ok := args.Get(0).(*domain.Notification); ok {
		return n, args.Error(1)
	}
	return nil, args.Error(1)
}

// stubPlatform is a hand-rolled push identity with scriptable outcomes.
type stubPlatform struct {
	supported  bool
	endpoint   string
	issueErr   error
	channelErr error
}

func (p stubPlatform) Supported() bool { return p.supported }
func (p stubPlatform) EnsureChannel(ctx context.Context) error {
	return p.channelErr
}
func (p stubPlatform) IssueEndpoint(ctx context.Context, token string, platform domain.PushPlatform) (string, error) {
	return p.endpoint, p.issueErr
}

func grantedRequest() RegisterRequest {
	return RegisterRequest{
		DeviceID:   "dev1",
		Physical:   true,
		Permission: PermissionGranted,
		Token:      "tok-abc",
		Platform:   domain.PlatformIOS,
	}
}

// --- tests ---

func TestRegister_NonPhysicalDeviceIsSilentNoOp(t *testing.T) {
	ts := &mockTokenStore{}
	svc := NewService(stubPlatform{supported: true, endpoint: "arn:ep"}, ts, &mockNotificationStore{})

	req := grantedRequest()
	req.Physical = false
	res, err := svc.Register(context.Background(), "u1", req)

	require.NoError(t, err)
	assert.Equal(t, StateUnregistered, res.State)
	assert.False(t, res.Registered)
	ts.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestRegister_UndeterminedPermissionStopsAtPrompt(t *testing.T) {
	ts := &mockTokenStore{}
	svc := NewService(stubPlatform{supported: true, endpoint: "arn:ep"}, ts, &mockNotificationStore{})

	req := grantedRequest()
	req.Permission = PermissionUndetermined
	req.Token = ""
	res, err := svc.Register(context.Background(), "u1", req)

	require.NoError(t, err)
	assert.Equal(t, StatePermissionRequested, res.State)
	assert.False(t, res.Registered)
	ts.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestRegister_DeniedIsTerminalUntilRegranted(t *testing.T) {
	ts := &mockTokenStore{}
	svc := NewService(stubPlatform{supported: true, endpoint: "arn:ep"}, ts, &mockNotificationStore{})

	denied := grantedRequest()
	denied.Permission = PermissionDenied
	denied.Token = ""
	res, err := svc.Register(context.Background(), "u1", denied)
	require.NoError(t, err)
	assert.Equal(t, StateDenied, res.State)

	// Still denied: recorded, not retried.
	res, err = svc.Register(context.Background(), "u1", denied)
	require.NoError(t, err)
	assert.Equal(t, StateDenied, res.State)
	assert.Equal(t, "permission previously denied", res.Reason)

	// A fresh grant from the same device goes all the way through.
	ts.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	res, err = svc.Register(context.Background(), "u1", grantedRequest())
	require.NoError(t, err)
	assert.Equal(t, StateActive, res.State)
	assert.True(t, res.Registered)
}

func TestRegister_MissingPlatformIdentityDegradesWithoutError(t *testing.T) {
	ts := &mockTokenStore{}
	svc := NewService(stubPlatform{supported: false}, ts, &mockNotificationStore{})

	res, err := svc.Register(context.Background(), "u1", grantedRequest())

	require.NoError(t, err)
	assert.Equal(t, StateGranted, res.State)
	assert.False(t, res.Registered)
	assert.Equal(t, "push identity not configured", res.Reason)
	ts.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestRegister_IssuanceFailureReportsNoToken(t *testing.T) {
	ts := &mockTokenStore{}
	svc := NewService(stubPlatform{supported: true, issueErr: errors.New("sns unavailable")}, ts, &mockNotificationStore{})

	res, err := svc.Register(context.Background(), "u1", grantedRequest())

	require.NoError(t, err)
	assert.Equal(t, StateGranted, res.State)
	assert.Equal(t, "no token", res.Reason)
	ts.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestRegister_GrantedFlowWritesActiveRow(t *testing.T) {
	ts := &mockTokenStore{}
	svc := NewService(stubPlatform{supported: true, endpoint: "arn:ep/1"}, ts, &mockNotificationStore{})

	ts.On("Upsert", mock.Anything, mock.MatchedBy(func(row *domain.PushToken) bool {
		return row.UserID == "u1" && row.Token == "tok-abc" &&
			row.EndpointARN == "arn:ep/1" && row.IsActive
	})).Return(nil)

	res, err := svc.Register(context.Background(), "u1", grantedRequest())

	require.NoError(t, err)
	assert.Equal(t, StateActive, res.State)
	assert.True(t, res.Registered)
	ts.AssertExpectations(t)
}

func TestRegister_SameTokenTwiceUpsertsTwice(t *testing.T) {
	ts := &mockTokenStore{}
	svc := NewService(stubPlatform{supported: true, endpoint: "arn:ep/1"}, ts, &mockNotificationStore{})

	ts.On("Upsert", mock.Anything, mock.Anything).Return(nil)

	for i := 0; i < 2; i++ {
		res, err := svc.Register(context.Background(), "u1", grantedRequest())
		require.NoError(t, err)
		assert.True(t, res.Registered)
	}
	// Re-registration is an upsert on the same (user, token) row.
	ts.AssertNumberOfCalls(t, "Upsert", 2)
}

func TestDeregister_DeactivatesHeldTokens(t *testing.T) {
	ts := &mockTokenStore{}
	svc := NewService(stubPlatform{supported: true, endpoint: "arn:ep/1"}, ts, &mockNotificationStore{})

	ts.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	_, err := svc.Register(context.Background(), "u1", grantedRequest())
	require.NoError(t, err)

	ts.On("Deactivate", mock.Anything, "u1", "tok-abc").Return(nil)
	require.NoError(t, svc.Deregister(context.Background(), "u1"))
	ts.AssertCalled(t, "Deactivate", mock.Anything, "u1", "tok-abc")
	ts.AssertNotCalled(t, "ListActive", mock.Anything, mock.Anything)
}

func TestDeregister_NoLocalStateFallsBackToStore(t *testing.T) {
	ts := &mockTokenStore{}
	svc := NewService(stubPlatform{supported: true}, ts, &mockNotificationStore{})

	ts.On("ListActive", mock.Anything, "u1").Return([]domain.PushToken{
		{UserID: "u1", Token: "old-token", IsActive: true},
	}, nil)
	ts.On("Deactivate", mock.Anything, "u1", "old-token").Return(nil)

	require.NoError(t, svc.Deregister(context.Background(), "u1"))
	ts.AssertExpectations(t)
}

func TestDeepLink_ResolvesOwnedNotification(t *testing.T) {
	ns := &mockNotificationStore{}
	svc := NewService(stubPlatform{}, &mockTokenStore{}, ns)

	ref := "ch42"
	ns.On("Get", mock.Anything, "n1").Return(&domain.Notification{
		NotificationID: "n1",
		UserID:         "u1",
		Type:           domain.TypeMessage,
		ReferenceID:    &ref,
	}, nil)

	link, err := svc.DeepLink(context.Background(), "n1", "u1")
	require.NoError(t, err)
	assert.Equal(t, "/chat/channels/ch42", link)
}

func TestDeepLink_ForeignNotificationForbidden(t *testing.T) {
	ns := &mockNotificationStore{}
	svc := NewService(stubPlatform{}, &mockTokenStore{}, ns)

	ns.On("Get", mock.Anything, "n1").Return(&domain.Notification{
		NotificationID: "n1",
		UserID:         "someone-else",
	}, nil)

	_, err := svc.DeepLink(context.Background(), "n1", "u1")
	require.ErrorIs(t, err, domain.ErrForbidden)
}
