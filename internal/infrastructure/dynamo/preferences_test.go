package dynamo

import (
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hub-activity-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// partialItem builds the item a first Upsert materializes: the key plus only
// the patched toggles, nothing else.
func partialItem(t *testing.T, toggles map[string]bool) map[string]types.AttributeValue {
	t.Helper()
	item := map[string]types.AttributeValue{
		"user_id":    &types.AttributeValueMemberS{Value: "u1"},
		"hub_id":     &types.AttributeValueMemberS{Value: "h1"},
		"updated_at": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
	}
	for name, v := range toggles {
		item[name] = &types.AttributeValueMemberBOOL{Value: v}
	}
	return item
}

func TestDecodePreferences_AbsentTogglesStayEnabled(t *testing.T) {
	// A row created by patching a single toggle off: every unwritten toggle
	// must still read back enabled, not zero-valued.
	p, err := decodePreferences(partialItem(t, map[string]bool{"events": false}))
	require.NoError(t, err)

	assert.False(t, p.Events)
	assert.True(t, p.Messages)
	assert.True(t, p.Posts)
	assert.True(t, p.PrivateLessons)
	assert.Len(t, p.EnabledTypes(), len(domain.AllNotificationTypes())-1)
}

func TestDecodePreferences_ExplicitFalseIsKept(t *testing.T) {
	p, err := decodePreferences(partialItem(t, map[string]bool{
		"messages": false,
		"scores":   true,
	}))
	require.NoError(t, err)

	assert.False(t, p.Messages)
	assert.True(t, p.Scores)
	assert.Equal(t, "u1", p.UserID)
	assert.Equal(t, "h1", p.HubID)
}

func TestDecodePreferences_FullRowRoundTrip(t *testing.T) {
	stored := domain.DefaultPreferences("u1", "h1")
	stored.Competitions = false
	stored.StaffTimeOff = false
	item, err := attributevalue.MarshalMap(stored)
	require.NoError(t, err)

	p, err := decodePreferences(item)
	require.NoError(t, err)

	assert.False(t, p.Competitions)
	assert.False(t, p.StaffTimeOff)
	assert.True(t, p.Messages)
	assert.Len(t, p.EnabledTypes(), len(domain.AllNotificationTypes())-2)
}
