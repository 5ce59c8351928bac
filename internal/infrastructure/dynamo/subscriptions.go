package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cheflamb/brigade-api/internal/domain"
)

// PushSubscriptionRepo provides typed DynamoDB operations for the push_subscriptions table.
type PushSubscriptionRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewPushSubscriptionRepo(client *dynamodb.Client, tableName string) *PushSubscriptionRepo {
	return &PushSubscriptionRepo{client: client, tableName: tableName}
}

func (r *PushSubscriptionRepo) Put(ctx context.Context, s *domain.PushSubscription) error {
	item, err := attributevalue.MarshalMap(s)
	if err != nil {
		return fmt.Errorf("marshal push subscription: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *PushSubscriptionRepo) Get(ctx context.Context, subscriptionID string) (*domain.PushSubscription, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("subscription_id", subscriptionID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("push subscription %s: %w", subscriptionID, domain.ErrNotFound)
	}
	var s domain.PushSubscription
	if err := attributevalue.UnmarshalMap(out.Item, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByToken dedupes registrations: re-registering an existing token updates
// the row instead of creating a second one.
func (r *PushSubscriptionRepo) GetByToken(ctx context.Context, token string) (*domain.PushSubscription, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                aws.String(r.tableName),
		IndexName:                aws.String("token-index"),
		KeyConditionExpression:   aws.String("#t = :tok"),
		ExpressionAttributeNames: map[string]string{"#t": "token"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":tok": &types.AttributeValueMemberS{Value: token},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("push subscription by token: %w", domain.ErrNotFound)
	}
	var s domain.PushSubscription
	if err := attributevalue.UnmarshalMap(out.Items[0], &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PushSubscriptionRepo) ListByUser(ctx context.Context, userID string) ([]domain.PushSubscription, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("user_id-index"),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return nil, err
	}
	var subs []domain.PushSubscription
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *PushSubscriptionRepo) Delete(ctx context.Context, subscriptionID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("subscription_id", subscriptionID),
	})
	return err
}
