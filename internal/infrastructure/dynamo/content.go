package dynamo

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ContentRepo issues server-side COUNT queries against the producer-owned
// content tables (messages, posts, events). Counts run with Select COUNT so
// no row data crosses the wire.
type ContentRepo struct {
	client        *dynamodb.Client
	messagesTable string
	postsTable    string
	eventsTable   string
}

func NewContentRepo(client *dynamodb.Client, messagesTable, postsTable, eventsTable string) *ContentRepo {
	return &ContentRepo{
		client:        client,
		messagesTable: messagesTable,
		postsTable:    postsTable,
		eventsTable:   eventsTable,
	}
}

// CountChannelMessages counts messages in a channel created after the read
// cursor, excluding the querying user's own messages.
func (r *ContentRepo) CountChannelMessages(ctx context.Context, channelID string, after time.Time, excludeAuthorID string) (int, error) {
	return r.count(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.messagesTable),
		IndexName:              aws.String("channel_id-created_at-index"),
		KeyConditionExpression: aws.String("channel_id = :c AND created_at > :after"),
		FilterExpression:       aws.String("author_id <> :me"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":c":     &types.AttributeValueMemberS{Value: channelID},
			":after": &types.AttributeValueMemberS{Value: after.UTC().Format(timeKeyFormat)},
			":me":    &types.AttributeValueMemberS{Value: excludeAuthorID},
		},
	})
}

// CountGroupPosts counts posts in a group created after the view cursor.
func (r *ContentRepo) CountGroupPosts(ctx context.Context, groupID string, after time.Time) (int, error) {
	return r.count(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.postsTable),
		IndexName:              aws.String("group_id-created_at-index"),
		KeyConditionExpression: aws.String("group_id = :g AND created_at > :after"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":g":     &types.AttributeValueMemberS{Value: groupID},
			":after": &types.AttributeValueMemberS{Value: after.UTC().Format(timeKeyFormat)},
		},
	})
}

// CountEventsBetween counts hub events with start_time in [from, to).
func (r *ContentRepo) CountEventsBetween(ctx context.Context, hubID string, from, to time.Time) (int, error) {
	// BETWEEN is inclusive on both ends; back off the upper bound.
	upper := to.Add(-time.Nanosecond)
	return r.count(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.eventsTable),
		IndexName:              aws.String("hub_id-start_time-index"),
		KeyConditionExpression: aws.String("hub_id = :h AND start_time BETWEEN :from AND :to"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":h":    &types.AttributeValueMemberS{Value: hubID},
			":from": &types.AttributeValueMemberS{Value: from.UTC().Format(timeKeyFormat)},
			":to":   &types.AttributeValueMemberS{Value: upper.UTC().Format(timeKeyFormat)},
		},
	})
}

// count runs a Select COUNT query, following LastEvaluatedKey so counts past
// the 1MB scan boundary are not truncated.
func (r *ContentRepo) count(ctx context.Context, input *dynamodb.QueryInput) (int, error) {
	input.Select = types.SelectCount
	total := 0
	for {
		out, err := r.client.Query(ctx, input)
		if err != nil {
			return 0, err
		}
		total += int(out.Count)
		if out.LastEvaluatedKey == nil {
			return total, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}
