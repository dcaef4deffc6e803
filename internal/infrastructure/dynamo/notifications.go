package dynamo

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hub-activity-api/internal/domain"
)

// NotificationRepo provides typed DynamoDB operations for the notifications
// table. Records are appended by upstream producers; the only mutation issued
// here is the false→true is_read transition.
type NotificationRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewNotificationRepo(client *dynamodb.Client, tableName string) *NotificationRepo {
	return &NotificationRepo{client: client, tableName: tableName}
}

func (r *NotificationRepo) Put(ctx context.Context, n *domain.Notification) error {
	n.Recipient = domain.RecipientKey(n.UserID, n.HubID)
	item, err := attributevalue.MarshalMap(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	// created_at is the GSI range key; store it fixed-width so byte order is
	// chronological order.
	item["created_at"] = &types.AttributeValueMemberS{Value: n.CreatedAt.UTC().Format(timeKeyFormat)}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *NotificationRepo) Get(ctx context.Context, notificationID string) (*domain.Notification, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("notification_id", notificationID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("notification not found: %w", domain.ErrNotFound)
	}
	var n domain.Notification
	if err := attributevalue.UnmarshalMap(out.Item, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// ListPage returns up to limit records for (user, hub) in created_at
// descending order, optionally restricted to the given types. cursor is the
// opaque position returned by a previous call ("" for the first page); the
// returned cursor is "" once the feed is exhausted.
//
// DynamoDB applies filter expressions after the page limit, so a filtered
// query can come back short mid-feed. The loop keeps fetching until it has a
// full page or runs out of rows, which keeps the caller's short-page
// termination heuristic honest.
func (r *NotificationRepo) ListPage(ctx context.Context, hubID, userID string, only []domain.NotificationType, limit int, cursor string) ([]domain.Notification, string, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("recipient-created_at-index"),
		KeyConditionExpression: aws.String("recipient = :r"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":r": &types.AttributeValueMemberS{Value: domain.RecipientKey(userID, hubID)},
		},
		ScanIndexForward: aws.Bool(false), // newest first
	}
	applyTypeFilter(input, only)
	if cursor != "" {
		startKey, err := decodeFeedCursor(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("invalid cursor: %w", domain.ErrBadRequest)
		}
		input.ExclusiveStartKey = startKey
	}

	var page []domain.Notification
	for len(page) < limit {
		out, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, "", err
		}
		var batch []domain.Notification
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &batch); err != nil {
			return nil, "", err
		}
		page = append(page, batch...)
		if out.LastEvaluatedKey == nil {
			// Feed exhausted: no next cursor even if the page filled exactly.
			if len(page) > limit {
				break
			}
			return page, "", nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	page = page[:limit]
	next, err := encodeFeedCursor(&page[limit-1])
	if err != nil {
		return nil, "", err
	}
	return page, next, nil
}

// CountUnread counts unread records for (user, hub), optionally restricted to
// the given types.
func (r *NotificationRepo) CountUnread(ctx context.Context, hubID, userID string, only []domain.NotificationType) (int, error) {
	input := r.unreadQuery(hubID, userID, only)
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

// ListUnread returns every unread record for (user, hub).
func (r *NotificationRepo) ListUnread(ctx context.Context, hubID, userID string) ([]domain.Notification, error) {
	input := r.unreadQuery(hubID, userID, nil)
	var all []domain.Notification
	for {
		out, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, err
		}
		var batch []domain.Notification
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &batch); err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if out.LastEvaluatedKey == nil {
			return all, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

// MarkRead flips is_read on one record, conditioned on ownership so the store
// itself rejects cross-user mutation. Already-read records update to the same
// value (idempotent).
func (r *NotificationRepo) MarkRead(ctx context.Context, notificationID, userID string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey("notification_id", notificationID),
		UpdateExpression:    aws.String("SET is_read = :t"),
		ConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t":   &types.AttributeValueMemberBOOL{Value: true},
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("notification %s: %w", notificationID, domain.ErrForbidden)
		}
		return err
	}
	return nil
}

func (r *NotificationRepo) unreadQuery(hubID, userID string, only []domain.NotificationType) *dynamodb.QueryInput {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("recipient-created_at-index"),
		KeyConditionExpression: aws.String("recipient = :r"),
		FilterExpression:       aws.String("is_read = :f"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":r": &types.AttributeValueMemberS{Value: domain.RecipientKey(userID, hubID)},
			":f": &types.AttributeValueMemberBOOL{Value: false},
		},
	}
	applyTypeFilter(input, only)
	return input
}

// applyTypeFilter ANDs a `type IN (...)` clause onto the query's filter
// expression. A nil/empty slice applies no restriction (fail-open).
func applyTypeFilter(input *dynamodb.QueryInput, only []domain.NotificationType) {
	if len(only) == 0 {
		return
	}
	clause := "#ty IN ("
	for i, t := range only {
		placeholder := fmt.Sprintf(":ty%d", i)
		if i > 0 {
			clause += ", "
		}
		clause += placeholder
		input.ExpressionAttributeValues[placeholder] = &types.AttributeValueMemberS{Value: string(t)}
	}
	clause += ")"
	if input.ExpressionAttributeNames == nil {
		input.ExpressionAttributeNames = map[string]string{}
	}
	input.ExpressionAttributeNames["#ty"] = "type"
	if input.FilterExpression != nil {
		input.FilterExpression = aws.String(*input.FilterExpression + " AND " + clause)
	} else {
		input.FilterExpression = aws.String(clause)
	}
}

// feedCursor carries the three attributes a GSI ExclusiveStartKey needs.
type feedCursor struct {
	NotificationID string `json:"id"`
	Recipient      string `json:"recipient"`
	CreatedAt      string `json:"created_at"`
}

func encodeFeedCursor(n *domain.Notification) (string, error) {
	// Same layout Put stores, so the ExclusiveStartKey matches the item's key.
	b, err := json.Marshal(feedCursor{
		NotificationID: n.NotificationID,
		Recipient:      n.Recipient,
		CreatedAt:      n.CreatedAt.UTC().Format(timeKeyFormat),
	})
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func decodeFeedCursor(cursor string) (map[string]types.AttributeValue, error) {
	b, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, err
	}
	var fc feedCursor
	if err := json.Unmarshal(b, &fc); err != nil {
		return nil, err
	}
	return map[string]types.AttributeValue{
		"notification_id": &types.AttributeValueMemberS{Value: fc.NotificationID},
		"recipient":       &types.AttributeValueMemberS{Value: fc.Recipient},
		"created_at":      &types.AttributeValueMemberS{Value: fc.CreatedAt},
	}, nil
}
