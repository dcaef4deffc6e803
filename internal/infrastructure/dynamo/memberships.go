package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/hub-activity-api/internal/domain"
)

// MembershipRepo provides typed DynamoDB operations for the channel- and
// group-membership tables. Memberships are written by external join/leave
// flows; this service only reads them.
type MembershipRepo struct {
	client        *dynamodb.Client
	channelsTable string
	groupsTable   string
}

func NewMembershipRepo(client *dynamodb.Client, channelsTable, groupsTable string) *MembershipRepo {
	return &MembershipRepo{client: client, channelsTable: channelsTable, groupsTable: groupsTable}
}

// ListChannels returns all channel memberships for (user, hub).
func (r *MembershipRepo) ListChannels(ctx context.Context, hubID, userID string) ([]domain.ChannelMembership, error) {
	items, err := r.queryByUser(ctx, r.channelsTable, hubID, userID)
	if err != nil {
		return nil, err
	}
	var memberships []domain.ChannelMembership
	if err := attributevalue.UnmarshalListOfMaps(items, &memberships); err != nil {
		return nil, err
	}
	return memberships, nil
}

// ListGroups returns all group memberships for (user, hub).
func (r *MembershipRepo) ListGroups(ctx context.Context, hubID, userID string) ([]domain.GroupMembership, error) {
	items, err := r.queryByUser(ctx, r.groupsTable, hubID, userID)
	if err != nil {
		return nil, err
	}
	var memberships []domain.GroupMembership
	if err := attributevalue.UnmarshalListOfMaps(items, &memberships); err != nil {
		return nil, err
	}
	return memberships, nil
}

func (r *MembershipRepo) queryByUser(ctx context.Context, table, hubID, userID string) ([]map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(table),
			KeyConditionExpression: aws.String("user_id = :uid"),
			FilterExpression:       aws.String("hub_id = :hub"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":uid": &types.AttributeValueMemberS{Value: userID},
				":hub": &types.AttributeValueMemberS{Value: hubID},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", table, err)
		}
		items = append(items, out.Items...)
		if out.LastEvaluatedKey == nil {
			return items, nil
		}
		startKey = out.LastEvaluatedKey
	}
}
