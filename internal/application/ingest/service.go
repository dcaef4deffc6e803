package ingest

import (
	"context"
	"time"

	"github.com/hub-activity-api/internal/domain"
	"github.com/hub-activity-api/internal/pkg/id"
)

// CreateRequest is what an upstream producer supplies when appending a
// notification record. IDs and timestamps are assigned here.
type CreateRequest struct {
	UserID        string               `json:"user_id" validate:"required"`
	Type          string               `json:"type" validate:"required"`
	Title         string               `json:"title" validate:"required"`
	Body          *string              `json:"body,omitempty"`
	ActorID       *string              `json:"actor_id,omitempty"`
	ReferenceID   *string              `json:"reference_id,omitempty"`
	ReferenceType *string              `json:"reference_type,omitempty"`
	ActorProfile  *domain.ActorProfile `json:"actor_profile,omitempty"`
}

// Service is the producer-facing append path for the notification feed.
// The feed store is append-only: records created here are only ever mutated
// by the mark-read transition, never deleted.
type Service interface {
	Create(ctx context.Context, hubID string, req CreateRequest) (*domain.Notification, error)
}

type notificationStore interface {
	Put(ctx context.Context, n *domain.Notification) error
}

type service struct {
	repo notificationStore
	now  func() time.Time
}

func NewService(repo notificationStore) Service {
	return &service{repo: repo, now: time.Now}
}

func (s *service) Create(ctx context.Context, hubID string, req CreateRequest) (*domain.Notification, error) {
	n := &domain.Notification{
		NotificationID: id.New(),
		UserID:         req.UserID,
		HubID:          hubID,
		Type:           domain.ParseNotificationType(req.Type),
		Title:          req.Title,
		Body:           req.Body,
		ActorID:        req.ActorID,
		ReferenceID:    req.ReferenceID,
		ReferenceType:  req.ReferenceType,
		IsRead:         false,
		CreatedAt:      s.now().UTC(),
		ActorProfile:   req.ActorProfile,
	}
	if err := s.repo.Put(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}
