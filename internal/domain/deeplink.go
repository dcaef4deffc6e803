package domain

import "fmt"

// Deep-link targets for notification taps. The mapping is total: every type
// resolves to a non-empty path and unrecognised types land on the dashboard,
// so a tap never produces a dead navigation.

const DashboardPath = "/dashboard"

// DeepLinkFor resolves a notification type plus optional reference id to a
// navigation path. referenceID may be nil for types that route to a fixed view.
func DeepLinkFor(t NotificationType, referenceID *string) string {
	ref := ""
	if referenceID != nil {
		ref = *referenceID
	}
	switch t {
	case TypeMessage:
		if ref == "" {
			return "/chat"
		}
		return fmt.Sprintf("/chat/channels/%s", ref)
	case TypePost:
		if ref == "" {
			return "/groups"
		}
		return fmt.Sprintf("/groups/%s", ref)
	case TypeEvent:
		return "/calendar"
	case TypeCompetition:
		if ref == "" {
			return "/competitions"
		}
		return fmt.Sprintf("/competitions/%s", ref)
	case TypeScore:
		return "/scores"
	case TypeAssignment:
		return "/assignments"
	case TypeMarketplaceItem, TypeResource:
		return "/library"
	case TypeStaffTask, TypeStaffTimeOff:
		return "/staff"
	case TypePrivateLesson:
		return "/private-lessons"
	case TypeUnknown:
		return DashboardPath
	}
	return DashboardPath
}

// DeepLink resolves the navigation target for a tap on n.
func (n *Notification) DeepLink() string {
	return DeepLinkFor(n.Type, n.ReferenceID)
}
