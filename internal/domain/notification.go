package domain

import "time"

// NotificationType is the closed set of notification categories. Adding a
// type is a compile-time-checked change: PreferenceFor and DeepLinkFor switch
// exhaustively over these values.
type NotificationType string

const (
	TypeMessage         NotificationType = "message"
	TypePost            NotificationType = "post"
	TypeEvent           NotificationType = "event"
	TypeCompetition     NotificationType = "competition"
	TypeScore           NotificationType = "score"
	TypeAssignment      NotificationType = "assignment"
	TypeMarketplaceItem NotificationType = "marketplace_item"
	TypeResource        NotificationType = "resource"
	TypeStaffTask       NotificationType = "staff_task"
	TypeStaffTimeOff    NotificationType = "staff_time_off"
	TypePrivateLesson   NotificationType = "private_lesson"

	// TypeUnknown covers records written with a type this build does not
	// recognise. Still routable: it resolves to the dashboard deep link.
	TypeUnknown NotificationType = ""
)

// AllNotificationTypes lists every recognised type, in a stable order.
func AllNotificationTypes() []NotificationType {
	return []NotificationType{
		TypeMessage, TypePost, TypeEvent, TypeCompetition, TypeScore,
		TypeAssignment, TypeMarketplaceItem, TypeResource, TypeStaffTask,
		TypeStaffTimeOff, TypePrivateLesson,
	}
}

// ParseNotificationType maps a stored string to a known type, or TypeUnknown.
func ParseNotificationType(s string) NotificationType {
	for _, t := range AllNotificationTypes() {
		if string(t) == s {
			return t
		}
	}
	return TypeUnknown
}

// ActorProfile is a denormalized snapshot of the acting user at write time,
// copied into the record by upstream producers so the feed renders without a
// roster lookup.
type ActorProfile struct {
	DisplayName string `json:"display_name" dynamodbav:"display_name"`
	AvatarURL   string `json:"avatar_url,omitempty" dynamodbav:"avatar_url,omitempty"`
}

// Notification is one durable feed record. Rows are appended by upstream
// producers and mutated here only via mark-read; they are never deleted.
type Notification struct {
	NotificationID string           `json:"id" dynamodbav:"notification_id"`
	UserID         string           `json:"user_id" dynamodbav:"user_id"`
	HubID          string           `json:"hub_id" dynamodbav:"hub_id"`
	Recipient      string           `json:"-" dynamodbav:"recipient"` // user_id#hub_id GSI hash
	Type           NotificationType `json:"type" dynamodbav:"type"`
	Title          string           `json:"title" dynamodbav:"title"`
	Body           *string          `json:"body,omitempty" dynamodbav:"body"`
	ActorID        *string          `json:"actor_id,omitempty" dynamodbav:"actor_id"`
	ReferenceID    *string          `json:"reference_id,omitempty" dynamodbav:"reference_id"`
	ReferenceType  *string          `json:"reference_type,omitempty" dynamodbav:"reference_type"`
	IsRead         bool             `json:"is_read" dynamodbav:"is_read"`
	CreatedAt      time.Time        `json:"created" dynamodbav:"created_at"`
	ActorProfile   *ActorProfile    `json:"actor_profile,omitempty" dynamodbav:"actor_profile"`
}

// RecipientKey builds the composite GSI hash used to scope feed queries to
// one user inside one hub.
func RecipientKey(userID, hubID string) string {
	return userID + "#" + hubID
}
