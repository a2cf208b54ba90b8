package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/schoolyard-api/internal/domain"
)

// SlotRepo provides typed DynamoDB operations for the schedule slots table.
type SlotRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewSlotRepo(client *dynamodb.Client, tableName string) *SlotRepo {
	return &SlotRepo{client: client, tableName: tableName}
}

func (r *SlotRepo) Put(ctx context.Context, s *domain.ScheduleSlot) error {
	item, err := attributevalue.MarshalMap(s)
	if err != nil {
		return fmt.Errorf("marshal schedule slot: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *SlotRepo) Get(ctx context.Context, slotID string) (*domain.ScheduleSlot, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("slot_id", slotID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("schedule slot not found: %w", domain.ErrNotFound)
	}
	var s domain.ScheduleSlot
	if err := attributevalue.UnmarshalMap(out.Item, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListByScope returns the full timetable for a scope.
func (r *SlotRepo) ListByScope(ctx context.Context, scopeID string) ([]domain.ScheduleSlot, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("scope_id-index"),
		KeyConditionExpression: aws.String("scope_id = :sid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":sid": &types.AttributeValueMemberS{Value: scopeID},
		},
	})
	if err != nil {
		return nil, err
	}
	var slots []domain.ScheduleSlot
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

func (r *SlotRepo) Update(ctx context.Context, slotID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("slot_id", slotID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

func (r *SlotRepo) HardDelete(ctx context.Context, slotID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("slot_id", slotID),
	})
	return err
}
