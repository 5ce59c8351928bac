package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/cheflamb/brigade-api/internal/domain"
)

// SettingsRepo provides typed DynamoDB operations for the notification_settings table.
type SettingsRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewSettingsRepo(client *dynamodb.Client, tableName string) *SettingsRepo {
	return &SettingsRepo{client: client, tableName: tableName}
}

func (r *SettingsRepo) Put(ctx context.Context, s *domain.NotificationSettings) error {
	s.UpdatedAt = time.Now().UTC()
	item, err := attributevalue.MarshalMap(s)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// Get returns the stored settings row, or the defaults if none exists.
// Callers always receive a usable settings value.
func (r *SettingsRepo) Get(ctx context.Context, userID string) (*domain.NotificationSettings, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("user_id", userID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return domain.DefaultNotificationSettings(userID), nil
	}
	var s domain.NotificationSettings
	if err := attributevalue.UnmarshalMap(out.Item, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
