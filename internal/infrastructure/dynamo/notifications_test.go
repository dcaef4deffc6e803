package dynamo

import (
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hub-activity-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedCursorRoundTrip(t *testing.T) {
	n := &domain.Notification{
		NotificationID: "01HZXJ2K3M4N5P6Q7R8S9T0V1W",
		Recipient:      "u1#h1",
		CreatedAt:      time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC),
	}

	cursor, err := encodeFeedCursor(n)
	require.NoError(t, err)
	assert.NotEmpty(t, cursor)

	key, err := decodeFeedCursor(cursor)
	require.NoError(t, err)

	id, ok := key["notification_id"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, n.NotificationID, id.Value)

	recipient, ok := key["recipient"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, "u1#h1", recipient.Value)

	createdAt, ok := key["created_at"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	// Must match the stored range-key layout exactly, fixed-width nanoseconds
	// included, or the resume position drifts inside a shared second.
	assert.Equal(t, "2026-03-14T12:00:00.000000000Z", createdAt.Value)
}

func TestDecodeFeedCursor_RejectsGarbage(t *testing.T) {
	_, err := decodeFeedCursor("not base64!!")
	assert.Error(t, err)

	_, err = decodeFeedCursor("bm90LWpzb24")
	assert.Error(t, err)
}

func TestApplyTypeFilter(t *testing.T) {
	input := &dynamodb.QueryInput{
		FilterExpression:          aws.String("is_read = :unread"),
		ExpressionAttributeValues: map[string]types.AttributeValue{},
	}

	applyTypeFilter(input, []domain.NotificationType{domain.TypeMessage, domain.TypePost})

	require.NotNil(t, input.FilterExpression)
	assert.Equal(t, "is_read = :unread AND #ty IN (:ty0, :ty1)", *input.FilterExpression)
	assert.Equal(t, "type", input.ExpressionAttributeNames["#ty"])
	assert.Len(t, input.ExpressionAttributeValues, 2)
}

func TestApplyTypeFilter_EmptyRestrictionIsNoOp(t *testing.T) {
	input := &dynamodb.QueryInput{}
	applyTypeFilter(input, nil)
	assert.Nil(t, input.FilterExpression)
}
