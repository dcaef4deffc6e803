package domain

import "time"

// ChannelMembership ties a user to a chat channel within a hub. LastReadAt is
// the read cursor: monotonic non-decreasing, advanced by external read flows.
// A zero value means the user has never opened the channel (treated as epoch).
type ChannelMembership struct {
	UserID     string    `json:"user_id" dynamodbav:"user_id"`
	ChannelID  string    `json:"channel_id" dynamodbav:"channel_id"`
	HubID      string    `json:"hub_id" dynamodbav:"hub_id"`
	LastReadAt time.Time `json:"last_read_at" dynamodbav:"last_read_at,omitempty"`
}

// GroupMembership ties a user to a group feed within a hub.
type GroupMembership struct {
	UserID       string    `json:"user_id" dynamodbav:"user_id"`
	GroupID      string    `json:"group_id" dynamodbav:"group_id"`
	HubID        string    `json:"hub_id" dynamodbav:"hub_id"`
	LastViewedAt time.Time `json:"last_viewed_at" dynamodbav:"last_viewed_at,omitempty"`
}
