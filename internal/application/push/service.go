package push

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hub-activity-api/internal/domain"
	"github.com/hub-activity-api/internal/infrastructure/sns"
)

// DeviceState is the per-device registration state machine:
//
//	Unregistered → PermissionRequested → {Granted, Denied}
//	Granted → TokenIssued → Active
//	Active → Deregistered
type DeviceState string

const (
	StateUnregistered        DeviceState = "unregistered"
	StatePermissionRequested DeviceState = "permission_requested"
	StateGranted             DeviceState = "granted"
	StateDenied              DeviceState = "denied"
	StateTokenIssued         DeviceState = "token_issued"
	StateActive              DeviceState = "active"
	StateDeregistered        DeviceState = "deregistered"
)

// PermissionStatus is the device-reported OS notification permission.
type PermissionStatus string

const (
	PermissionUndetermined PermissionStatus = "undetermined"
	PermissionGranted      PermissionStatus = "granted"
	PermissionDenied       PermissionStatus = "denied"
)

// RegisterRequest carries what the device knows at registration time.
type RegisterRequest struct {
	DeviceID   string                `json:"device_id" validate:"required"`
	Physical   bool                  `json:"physical"`
	Permission PermissionStatus      `json:"permission" validate:"required,oneof=undetermined granted denied"`
	Token      string                `json:"token"`
	Platform   domain.PushPlatform   `json:"platform" validate:"omitempty,oneof=ios android"`
}

// RegisterResult reports where the state machine landed. Registered is true
// only when a token row was written.
type RegisterResult struct {
	State      DeviceState `json:"state"`
	Registered bool        `json:"registered"`
	Reason     string      `json:"reason,omitempty"`
}

type Service interface {
	// Register runs the device through the registration state machine.
	// Registration failures caused by missing push identity are surfaced as
	// "no token", never as an error: the push feature degrades, the host
	// session does not.
	Register(ctx context.Context, userID string, req RegisterRequest) (RegisterResult, error)
	// Deregister soft-deletes the user's registered token rows and clears
	// in-memory device state. History is kept.
	Deregister(ctx context.Context, userID string) error
	// DeepLink resolves the navigation target for a tap on one of the user's
	// notifications. Total: unknown types land on the dashboard.
	DeepLink(ctx context.Context, notificationID, userID string) (string, error)
}

type tokenStore interface {
	Upsert(ctx context.Context, t *domain.PushToken) error
	ListActive(ctx context.Context, userID string) ([]domain.PushToken, error)
	Deactivate(ctx context.Context, userID, token string) error
}

type notificationStore interface {
	Get(ctx context.Context, notificationID string) (*domain.Notification, error)
}

// deviceEntry tracks one device's state plus its last issued token.
type deviceEntry struct {
	state DeviceState
	token string
}

type service struct {
	platform      sns.Platform
	tokens        tokenStore
	notifications notificationStore

	mu      sync.Mutex
	devices map[string]*deviceEntry // keyed userID|deviceID
}

func NewService(platform sns.Platform, tokens tokenStore, notifications notificationStore) Service {
	return &service{
		platform:      platform,
		tokens:        tokens,
		notifications: notifications,
		devices:       make(map[string]*deviceEntry),
	}
}

func deviceKey(userID, deviceID string) string { return userID + "|" + deviceID }

func (s *service) Register(ctx context.Context, userID string, req RegisterRequest) (RegisterResult, error) {
	// Simulators and web previews never register. Silent, by contract.
	if !req.Physical {
		return RegisterResult{State: StateUnregistered, Reason: "not a physical device"}, nil
	}

	entry := s.device(userID, req.DeviceID)

	s.mu.Lock()
	if entry.state == StateDenied && req.Permission != PermissionGranted {
		// Denied is terminal per device until the user re-initiates from a
		// granted permission state. Recorded, not retried.
		s.mu.Unlock()
		return RegisterResult{State: StateDenied, Reason: "permission previously denied"}, nil
	}
	s.mu.Unlock()

	if err := s.platform.EnsureChannel(ctx); err != nil {
		slog.Warn("push: channel registration failed", "user", userID, "err", err)
	}

	switch req.Permission {
	case PermissionUndetermined:
		s.setState(entry, StatePermissionRequested)
		return RegisterResult{State: StatePermissionRequested, Reason: "permission prompt required"}, nil
	case PermissionDenied:
		s.setState(entry, StateDenied)
		return RegisterResult{State: StateDenied, Reason: "permission denied"}, nil
	case PermissionGranted:
		s.setState(entry, StateGranted)
	default:
		return RegisterResult{}, fmt.Errorf("unknown permission %q: %w", req.Permission, domain.ErrBadRequest)
	}

	if !s.platform.Supported() {
		// Missing deployment push identity: fatal to registration only.
		slog.Warn("push: platform identity not configured, skipping token issuance", "user", userID)
		return RegisterResult{State: StateGranted, Reason: "push identity not configured"}, nil
	}
	if req.Token == "" {
		return RegisterResult{}, fmt.Errorf("token required once permission granted: %w", domain.ErrBadRequest)
	}

	endpoint, err := s.platform.IssueEndpoint(ctx, req.Token, req.Platform)
	if err != nil {
		slog.Error("push: token issuance failed", "user", userID, "err", err)
		return RegisterResult{State: StateGranted, Reason: "no token"}, nil
	}
	s.setState(entry, StateTokenIssued)

	// Upsert keyed (user, token): re-registering the same token updates the
	// row, so concurrent duplicate registrations are safe without locking.
	row := &domain.PushToken{
		UserID:      userID,
		Token:       req.Token,
		Platform:    req.Platform,
		EndpointARN: endpoint,
		IsActive:    true,
	}
	if err := s.tokens.Upsert(ctx, row); err != nil {
		return RegisterResult{State: StateTokenIssued, Reason: "store write failed"}, err
	}

	s.mu.Lock()
	entry.state = StateActive
	entry.token = req.Token
	s.mu.Unlock()
	return RegisterResult{State: StateActive, Registered: true}, nil
}

func (s *service) Deregister(ctx context.Context, userID string) error {
	prefix := userID + "|"

	s.mu.Lock()
	var held []string
	for key, entry := range s.devices {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix && entry.token != "" {
			held = append(held, entry.token)
		}
	}
	s.mu.Unlock()

	if len(held) == 0 {
		// No in-memory state (e.g. after a restart): fall back to the store.
		active, err := s.tokens.ListActive(ctx, userID)
		if err != nil {
			return err
		}
		for _, t := range active {
			held = append(held, t.Token)
		}
	}

	for _, token := range held {
		if err := s.tokens.Deactivate(ctx, userID, token); err != nil {
			return fmt.Errorf("deactivate token: %w", err)
		}
	}

	s.mu.Lock()
	for key := range s.devices {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(s.devices, key)
		}
	}
	s.mu.Unlock()
	return nil
}

func (s *service) DeepLink(ctx context.Context, notificationID, userID string) (string, error) {
	n, err := s.notifications.Get(ctx, notificationID)
	if err != nil {
		return "", err
	}
	if n.UserID != userID {
		return "", fmt.Errorf("notification %s: %w", notificationID, domain.ErrForbidden)
	}
	return n.DeepLink(), nil
}

func (s *service) device(userID, deviceID string) *deviceEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := deviceKey(userID, deviceID)
	entry, ok := s.devices[key]
	if !ok {
		entry = &deviceEntry{state: StateUnregistered}
		s.devices[key] = entry
	}
	return entry
}

func (s *service) setState(entry *deviceEntry, state DeviceState) {
	s.mu.Lock()
	entry.state = state
	s.mu.Unlock()
}
