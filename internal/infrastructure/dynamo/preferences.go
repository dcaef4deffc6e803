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

// PreferenceRepo provides typed DynamoDB operations for the
// notification-preferences table, keyed (user_id, hub_id).
type PreferenceRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewPreferenceRepo(client *dynamodb.Client, tableName string) *PreferenceRepo {
	return &PreferenceRepo{client: client, tableName: tableName}
}

func (r *PreferenceRepo) Get(ctx context.Context, hubID, userID string) (*domain.NotificationPreferences, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey("user_id", userID, "hub_id", hubID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("preferences not found: %w", domain.ErrNotFound)
	}
	return decodePreferences(out.Item)
}

// preferencesRow mirrors the stored item with pointer-typed toggles. Upsert
// creates rows via UpdateItem, so a fresh row holds only the patched
// attributes; pointers let an absent toggle be told apart from an explicit
// false so it can keep the enabled default.
type preferencesRow struct {
	UserID           string    `dynamodbav:"user_id"`
	HubID            string    `dynamodbav:"hub_id"`
	Messages         *bool     `dynamodbav:"messages"`
	Posts            *bool     `dynamodbav:"posts"`
	Events           *bool     `dynamodbav:"events"`
	Competitions     *bool     `dynamodbav:"competitions"`
	Scores           *bool     `dynamodbav:"scores"`
	Assignments      *bool     `dynamodbav:"assignments"`
	MarketplaceItems *bool     `dynamodbav:"marketplace_items"`
	Resources        *bool     `dynamodbav:"resources"`
	StaffTasks       *bool     `dynamodbav:"staff_tasks"`
	StaffTimeOff     *bool     `dynamodbav:"staff_time_off"`
	PrivateLessons   *bool     `dynamodbav:"private_lessons"`
	UpdatedAt        time.Time `dynamodbav:"updated_at"`
}

// decodePreferences merges a stored item over the all-enabled defaults, so
// toggles never written yet read back as enabled.
func decodePreferences(item map[string]types.AttributeValue) (*domain.NotificationPreferences, error) {
	var row preferencesRow
	if err := attributevalue.UnmarshalMap(item, &row); err != nil {
		return nil, err
	}
	p := domain.DefaultPreferences(row.UserID, row.HubID)
	p.UpdatedAt = row.UpdatedAt
	domain.PreferencesPatch{
		Messages:         row.Messages,
		Posts:            row.Posts,
		Events:           row.Events,
		Competitions:     row.Competitions,
		Scores:           row.Scores,
		Assignments:      row.Assignments,
		MarketplaceItems: row.MarketplaceItems,
		Resources:        row.Resources,
		StaffTasks:       row.StaffTasks,
		StaffTimeOff:     row.StaffTimeOff,
		PrivateLessons:   row.PrivateLessons,
	}.Apply(&p)
	return &p, nil
}

// Upsert merges the given fields into the (user, hub) row, creating it when
// absent. UpdateItem on a missing key writes a fresh item holding only the
// patched fields; Get's decode supplies the enabled default for the rest.
func (r *PreferenceRepo) Upsert(ctx context.Context, hubID, userID string, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(fields)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       compositeKey("user_id", userID, "hub_id", hubID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}
