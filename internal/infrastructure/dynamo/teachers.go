package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/schoolyard-api/internal/domain"
)

// TeacherRepo provides typed DynamoDB operations for the teachers table.
type TeacherRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewTeacherRepo(client *dynamodb.Client, tableName string) *TeacherRepo {
	return &TeacherRepo{client: client, tableName: tableName}
}

func (r *TeacherRepo) Put(ctx context.Context, t *domain.Teacher) error {
	item, err := attributevalue.MarshalMap(t)
	if err != nil {
		return fmt.Errorf("marshal teacher: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *TeacherRepo) Get(ctx context.Context, teacherID string) (*domain.Teacher, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("teacher_id", teacherID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("teacher not found: %w", domain.ErrNotFound)
	}
	var t domain.Teacher
	if err := attributevalue.UnmarshalMap(out.Item, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TeacherRepo) Scan(ctx context.Context) ([]domain.Teacher, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	})
	if err != nil {
		return nil, err
	}
	var teachers []domain.Teacher
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &teachers); err != nil {
		return nil, err
	}
	return teachers, nil
}

func (r *TeacherRepo) Update(ctx context.Context, teacherID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("teacher_id", teacherID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

// HardDelete removes the profile row entirely (directory entries are
// admin-managed, no soft-delete history is kept).
func (r *TeacherRepo) HardDelete(ctx context.Context, teacherID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("teacher_id", teacherID),
	})
	return err
}
