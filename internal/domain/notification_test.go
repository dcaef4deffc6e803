package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNotificationType(t *testing.T) {
	assert.Equal(t, TypeMessage, ParseNotificationType("message"))
	assert.Equal(t, TypeStaffTimeOff, ParseNotificationType("staff_time_off"))
	assert.Equal(t, TypeUnknown, ParseNotificationType("telegram"))
	assert.Equal(t, TypeUnknown, ParseNotificationType(""))
}

func TestRecipientKey(t *testing.T) {
	assert.Equal(t, "u1#h1", RecipientKey("u1", "h1"))
}
