package domain

import "time"

// PushPlatform identifies the device OS a token was issued for.
type PushPlatform string

const (
	PlatformIOS     PushPlatform = "ios"
	PlatformAndroid PushPlatform = "android"
)

// PushToken is one registered device token. Unique per (user, token) so a
// user may hold several active tokens (multi-device). Rows are soft-deleted
// on deregistration, never removed.
type PushToken struct {
	UserID      string       `json:"user_id" dynamodbav:"user_id"`
	Token       string       `json:"token" dynamodbav:"token"`
	Platform    PushPlatform `json:"platform" dynamodbav:"platform"`
	EndpointARN string       `json:"-" dynamodbav:"endpoint_arn"`
	IsActive    bool         `json:"is_active" dynamodbav:"is_active"`
	UpdatedAt   time.Time    `json:"updated" dynamodbav:"updated_at"`
}
