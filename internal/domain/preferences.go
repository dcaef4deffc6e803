package domain

import "time"

// NotificationPreferences holds the per-(user,hub) visibility toggles, one
// fixed boolean per notification type. A missing row means all enabled.
type NotificationPreferences struct {
	UserID           string    `json:"user_id" dynamodbav:"user_id"`
	HubID            string    `json:"hub_id" dynamodbav:"hub_id"`
	Messages         bool      `json:"messages" dynamodbav:"messages"`
	Posts            bool      `json:"posts" dynamodbav:"posts"`
	Events           bool      `json:"events" dynamodbav:"events"`
	Competitions     bool      `json:"competitions" dynamodbav:"competitions"`
	Scores           bool      `json:"scores" dynamodbav:"scores"`
	Assignments      bool      `json:"assignments" dynamodbav:"assignments"`
	MarketplaceItems bool      `json:"marketplace_items" dynamodbav:"marketplace_items"`
	Resources        bool      `json:"resources" dynamodbav:"resources"`
	StaffTasks       bool      `json:"staff_tasks" dynamodbav:"staff_tasks"`
	StaffTimeOff     bool      `json:"staff_time_off" dynamodbav:"staff_time_off"`
	PrivateLessons   bool      `json:"private_lessons" dynamodbav:"private_lessons"`
	UpdatedAt        time.Time `json:"updated" dynamodbav:"updated_at"`
}

// DefaultPreferences returns the fail-open default: every type enabled.
func DefaultPreferences(userID, hubID string) NotificationPreferences {
	return NotificationPreferences{
		UserID:           userID,
		HubID:            hubID,
		Messages:         true,
		Posts:            true,
		Events:           true,
		Competitions:     true,
		Scores:           true,
		Assignments:      true,
		MarketplaceItems: true,
		Resources:        true,
		StaffTasks:       true,
		StaffTimeOff:     true,
		PrivateLessons:   true,
	}
}

// PreferenceFor reports whether notifications of the given type are visible
// under p. The switch is exhaustive over the closed type set; unknown types
// are visible (fail-open).
func (p NotificationPreferences) PreferenceFor(t NotificationType) bool {
	switch t {
	case TypeMessage:
		return p.Messages
	case TypePost:
		return p.Posts
	case TypeEvent:
		return p.Events
	case TypeCompetition:
		return p.Competitions
	case TypeScore:
		return p.Scores
	case TypeAssignment:
		return p.Assignments
	case TypeMarketplaceItem:
		return p.MarketplaceItems
	case TypeResource:
		return p.Resources
	case TypeStaffTask:
		return p.StaffTasks
	case TypeStaffTimeOff:
		return p.StaffTimeOff
	case TypePrivateLesson:
		return p.PrivateLessons
	case TypeUnknown:
		return true
	}
	return true
}

// EnabledTypes returns the subset of the closed type set that p allows.
func (p NotificationPreferences) EnabledTypes() []NotificationType {
	var enabled []NotificationType
	for _, t := range AllNotificationTypes() {
		if p.PreferenceFor(t) {
			enabled = append(enabled, t)
		}
	}
	return enabled
}

// PreferencesPatch is a partial update: nil fields are left untouched.
type PreferencesPatch struct {
	Messages         *bool `json:"messages,omitempty"`
	Posts            *bool `json:"posts,omitempty"`
	Events           *bool `json:"events,omitempty"`
	Competitions     *bool `json:"competitions,omitempty"`
	Scores           *bool `json:"scores,omitempty"`
	Assignments      *bool `json:"assignments,omitempty"`
	MarketplaceItems *bool `json:"marketplace_items,omitempty"`
	Resources        *bool `json:"resources,omitempty"`
	StaffTasks       *bool `json:"staff_tasks,omitempty"`
	StaffTimeOff     *bool `json:"staff_time_off,omitempty"`
	PrivateLessons   *bool `json:"private_lessons,omitempty"`
}

// Apply merges the patch into p.
func (patch PreferencesPatch) Apply(p *NotificationPreferences) {
	set := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	set(&p.Messages, patch.Messages)
	set(&p.Posts, patch.Posts)
	set(&p.Events, patch.Events)
	set(&p.Competitions, patch.Competitions)
	set(&p.Scores, patch.Scores)
	set(&p.Assignments, patch.Assignments)
	set(&p.MarketplaceItems, patch.MarketplaceItems)
	set(&p.Resources, patch.Resources)
	set(&p.StaffTasks, patch.StaffTasks)
	set(&p.StaffTimeOff, patch.StaffTimeOff)
	set(&p.PrivateLessons, patch.PrivateLessons)
}

// Fields returns the patch as a column->value map for partial upserts.
func (patch PreferencesPatch) Fields() map[string]interface{} {
	out := map[string]interface{}{}
	put := func(name string, v *bool) {
		if v != nil {
			out[name] = *v
		}
	}
	put("messages", patch.Messages)
	put("posts", patch.Posts)
	put("events", patch.Events)
	put("competitions", patch.Competitions)
	put("scores", patch.Scores)
	put("assignments", patch.Assignments)
	put("marketplace_items", patch.MarketplaceItems)
	put("resources", patch.Resources)
	put("staff_tasks", patch.StaffTasks)
	put("staff_time_off", patch.StaffTimeOff)
	put("private_lessons", patch.PrivateLessons)
	return out
}
