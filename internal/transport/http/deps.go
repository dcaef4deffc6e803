package http

import (
	"github.com/hub-activity-api/internal/application/badge"
	"github.com/hub-activity-api/internal/application/feed"
	"github.com/hub-activity-api/internal/application/poller"
	"github.com/hub-activity-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/hub-activity-api/internal/infrastructure/jwt"
	"github.com/hub-activity-api/internal/infrastructure/sns"
)

// Deps holds all dependencies for the router. BadgeSvc, FeedSvc and Poller
// are constructed in main rather than here because the poller shares them,
// and feed session state (cursors, unread counters) must be one instance.
type Deps struct {
	MembershipRepo   *dynamo.MembershipRepo
	ContentRepo      *dynamo.ContentRepo
	NotificationRepo *dynamo.NotificationRepo
	PreferenceRepo   *dynamo.PreferenceRepo
	PushTokenRepo    *dynamo.PushTokenRepo
	PushPlatform     sns.Platform
	JWTProvider      *jwtinfra.Provider

	BadgeSvc badge.Service
	FeedSvc  feed.Service
	Poller   *poller.Poller
}
