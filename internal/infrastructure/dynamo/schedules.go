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

// ScheduleRepo provides typed DynamoDB operations for the notification_schedules table.
type ScheduleRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewScheduleRepo(client *dynamodb.Client, tableName string) *ScheduleRepo {
	return &ScheduleRepo{client: client, tableName: tableName}
}

func (r *ScheduleRepo) Put(ctx context.Context, s *domain.RecurringSchedule) error {
	item, err := attributevalue.MarshalMap(s)
	if err != nil {
		return fmt.Errorf("marshal schedule: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *ScheduleRepo) ListByUser(ctx context.Context, userID string) ([]domain.RecurringSchedule, error) {
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
	var schedules []domain.RecurringSchedule
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &schedules); err != nil {
		return nil, err
	}
	return schedules, nil
}

func (r *ScheduleRepo) Deactivate(ctx context.Context, scheduleID string) error {
	ue, err := buildUpdateExpr(map[string]interface{}{fieldIsActive: false})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("schedule_id", scheduleID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}
