package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPreferences_AllEnabled(t *testing.T) {
	p := DefaultPreferences("u1", "h1")
	for _, nt := range AllNotificationTypes() {
		assert.True(t, p.PreferenceFor(nt), "type %s", nt)
	}
	assert.Len(t, p.EnabledTypes(), len(AllNotificationTypes()))
}

func TestPreferenceFor_UnknownTypeVisible(t *testing.T) {
	var p NotificationPreferences // everything disabled
	assert.True(t, p.PreferenceFor(TypeUnknown))
	assert.True(t, p.PreferenceFor(NotificationType("mystery")))
}

func TestPatchApply_OnlySetFieldsChange(t *testing.T) {
	p := DefaultPreferences("u1", "h1")
	off := false
	PreferencesPatch{Events: &off, StaffTasks: &off}.Apply(&p)

	assert.False(t, p.Events)
	assert.False(t, p.StaffTasks)
	assert.True(t, p.Messages)
	assert.True(t, p.PrivateLessons)
}

func TestPatchFields_OmitsNils(t *testing.T) {
	on, off := true, false
	fields := PreferencesPatch{Messages: &off, Scores: &on}.Fields()

	assert.Len(t, fields, 2)
	assert.Equal(t, false, fields["messages"])
	assert.Equal(t, true, fields["scores"])
}

func TestEnabledTypes_StrictSubset(t *testing.T) {
	p := DefaultPreferences("u1", "h1")
	p.Events = false
	enabled := p.EnabledTypes()

	assert.Len(t, enabled, len(AllNotificationTypes())-1)
	assert.NotContains(t, enabled, TypeEvent)
}
