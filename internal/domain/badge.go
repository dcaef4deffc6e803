package domain

import "time"

// BadgeCounts is an ephemeral point-in-time unread snapshot for one
// (hub, user) pair. Never persisted; recomputed on every refresh.
type BadgeCounts struct {
	UnreadMessages       int       `json:"unread_messages"`
	UnreadGroups         int       `json:"unread_groups"`
	UpcomingEventsToday  int       `json:"upcoming_events_today"`
	HasMoreNotifications bool      `json:"has_more_notifications"`
	RefreshedAt          time.Time `json:"refreshed_at"`
}
