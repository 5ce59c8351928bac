package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cheflamb/brigade-api/internal/domain"
)

// UserRepo provides typed DynamoDB operations for the users table.
type UserRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewUserRepo(client *dynamodb.Client, tableName string) *UserRepo {
	return &UserRepo{client: client, tableName: tableName}
}

func (r *UserRepo) Put(ctx context.Context, u *domain.User) error {
	item, err := attributevalue.MarshalMap(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("user_id", userID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Item, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.queryGSI(ctx, "email-index", "email", email)
}

func (r *UserRepo) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return r.queryGSI(ctx, "phone-index", "phone", phone)
}

func (r *UserRepo) GetByStripeCustomerID(ctx context.Context, customerID string) (*domain.User, error) {
	return r.queryGSI(ctx, "stripe_customer_id-index", "stripe_customer_id", customerID)
}

func (r *UserRepo) GetBySubscriptionID(ctx context.Context, subscriptionID string) (*domain.User, error) {
	return r.queryGSI(ctx, "subscription_id-index", "subscription_id", subscriptionID)
}

// Update applies a single-row keyed SET. Last write wins: concurrent webhook
// deliveries for the same user are not serialized (accepted weak-consistency
// point for profile rows).
func (r *UserRepo) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("user_id", userID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

// UpdateMembership applies a resolved tier and subscription status. Stripe
// identifiers are only written when non-empty so recurring events don't blank
// out what checkout stored.
func (r *UserRepo) UpdateMembership(ctx context.Context, userID string, tier domain.Tier, status domain.SubscriptionStatus, stripeCustomerID, subscriptionID string) error {
	updates := map[string]interface{}{
		fieldTier:               string(tier),
		fieldSubscriptionStatus: string(status),
	}
	if stripeCustomerID != "" {
		updates[fieldStripeCustomerID] = stripeCustomerID
	}
	if subscriptionID != "" {
		updates[fieldSubscriptionID] = subscriptionID
	}
	return r.Update(ctx, userID, updates)
}

// AddBadge appends a badge to the user's badge set. DynamoDB string sets are
// natively idempotent for ADD, so replays cannot duplicate a badge.
func (r *UserRepo) AddBadge(ctx context.Context, userID, badge string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.tableName),
		Key:              strKey("user_id", userID),
		UpdateExpression: aws.String("ADD #b :badge SET #u = :now"),
		ExpressionAttributeNames: map[string]string{
			"#b": fieldBadges,
			"#u": "updated_at",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":badge": &types.AttributeValueMemberSS{Value: []string{badge}},
			":now":   &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
		},
	})
	return err
}

func (r *UserRepo) queryGSI(ctx context.Context, indexName, attr, value string) (*domain.User, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(indexName),
		KeyConditionExpression: aws.String(fmt.Sprintf("%s = :v", attr)),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberS{Value: value},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("user by %s: %w", attr, domain.ErrNotFound)
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Items[0], &u); err != nil {
		return nil, err
	}
	return &u, nil
}
