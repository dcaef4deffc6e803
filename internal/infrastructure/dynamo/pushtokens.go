package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hub-activity-api/internal/domain"
)

// PushTokenRepo provides typed DynamoDB operations for the push-tokens table.
// The table is keyed (user_id, token), so Put is a natural upsert: the same
// token re-registered overwrites rather than duplicates, and rows are
// soft-deleted (is_active=false) so token history survives deregistration.
type PushTokenRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewPushTokenRepo(client *dynamodb.Client, tableName string) *PushTokenRepo {
	return &PushTokenRepo{client: client, tableName: tableName}
}

func (r *PushTokenRepo) Upsert(ctx context.Context, t *domain.PushToken) error {
	t.UpdatedAt = time.Now().UTC()
	item, err := attributevalue.MarshalMap(t)
	if err != nil {
		return fmt.Errorf("marshal push token: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// ListActive returns the user's active tokens (multi-device).
func (r *PushTokenRepo) ListActive(ctx context.Context, userID string) ([]domain.PushToken, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("user_id = :uid"),
		FilterExpression:       aws.String("is_active = :t"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
			":t":   &types.AttributeValueMemberBOOL{Value: true},
		},
	})
	if err != nil {
		return nil, err
	}
	var tokens []domain.PushToken
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &tokens); err != nil {
		return nil, err
	}
	return tokens, nil
}

// Deactivate marks one (user, token) row inactive. The row is kept.
func (r *PushTokenRepo) Deactivate(ctx context.Context, userID, token string) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		"is_active":  false,
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       compositeKey("user_id", userID, "token", token),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}
