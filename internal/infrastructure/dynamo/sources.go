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

// SourceRepo provides typed DynamoDB operations for the study sources table.
type SourceRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewSourceRepo(client *dynamodb.Client, tableName string) *SourceRepo {
	return &SourceRepo{client: client, tableName: tableName}
}

func (r *SourceRepo) Put(ctx context.Context, s *domain.StudySource) error {
	item, err := attributevalue.MarshalMap(s)
	if err != nil {
		return fmt.Errorf("marshal study source: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *SourceRepo) Get(ctx context.Context, sourceID string) (*domain.StudySource, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("source_id", sourceID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("study source not found: %w", domain.ErrNotFound)
	}
	var s domain.StudySource
	if err := attributevalue.UnmarshalMap(out.Item, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListByScope returns enabled study sources in a scope ("" = global).
func (r *SourceRepo) ListByScope(ctx context.Context, scopeID string) ([]domain.StudySource, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("scope_id-index"),
		KeyConditionExpression: aws.String("scope_id = :sid"),
		FilterExpression:       aws.String("#en = :t"),
		ExpressionAttributeNames: map[string]string{
			"#en": "enable",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":sid": &types.AttributeValueMemberS{Value: scopeID},
			":t":   &types.AttributeValueMemberBOOL{Value: true},
		},
	})
	if err != nil {
		return nil, err
	}
	var sources []domain.StudySource
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &sources); err != nil {
		return nil, err
	}
	return sources, nil
}

func (r *SourceRepo) SoftDelete(ctx context.Context, sourceID string) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldEnable:  false,
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("source_id", sourceID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}
