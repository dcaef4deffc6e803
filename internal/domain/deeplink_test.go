package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeepLinkFor_TotalOverAllTypes(t *testing.T) {
	ref := "ref-1"
	for _, nt := range AllNotificationTypes() {
		assert.NotEmpty(t, DeepLinkFor(nt, &ref), "type %s with ref", nt)
		assert.NotEmpty(t, DeepLinkFor(nt, nil), "type %s without ref", nt)
	}
}

func TestDeepLinkFor_ReferenceTargets(t *testing.T) {
	ref := "abc"
	tests := []struct {
		nt   NotificationType
		ref  *string
		want string
	}{
		{TypeMessage, &ref, "/chat/channels/abc"},
		{TypeMessage, nil, "/chat"},
		{TypePost, &ref, "/groups/abc"},
		{TypeEvent, &ref, "/calendar"},
		{TypeCompetition, &ref, "/competitions/abc"},
		{TypeScore, nil, "/scores"},
		{TypeAssignment, nil, "/assignments"},
		{TypeMarketplaceItem, nil, "/library"},
		{TypeResource, nil, "/library"},
		{TypeStaffTask, nil, "/staff"},
		{TypeStaffTimeOff, nil, "/staff"},
		{TypePrivateLesson, nil, "/private-lessons"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, DeepLinkFor(tc.nt, tc.ref))
	}
}

func TestDeepLinkFor_UnknownTypeLandsOnDashboard(t *testing.T) {
	assert.Equal(t, DashboardPath, DeepLinkFor(TypeUnknown, nil))
	assert.Equal(t, DashboardPath, DeepLinkFor(NotificationType("mystery"), nil))
}

func TestNotificationDeepLink(t *testing.T) {
	ref := "ch7"
	n := Notification{Type: TypeMessage, ReferenceID: &ref}
	assert.Equal(t, "/chat/channels/ch7", n.DeepLink())
}
