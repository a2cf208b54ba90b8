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

// ScopeRepo provides typed DynamoDB operations for the scopes table.
type ScopeRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewScopeRepo(client *dynamodb.Client, tableName string) *ScopeRepo {
	return &ScopeRepo{client: client, tableName: tableName}
}

func (r *ScopeRepo) Put(ctx context.Context, s *domain.Scope) error {
	item, err := attributevalue.MarshalMap(s)
	if err != nil {
		return fmt.Errorf("marshal scope: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *ScopeRepo) Get(ctx context.Context, scopeID string) (*domain.Scope, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("scope_id", scopeID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("scope not found: %w", domain.ErrNotFound)
	}
	var s domain.Scope
	if err := attributevalue.UnmarshalMap(out.Item, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetGlobal returns the single global scope via the type GSI.
func (r *ScopeRepo) GetGlobal(ctx context.Context) (*domain.Scope, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String("type-index"),
		KeyConditionExpression:    aws.String("#t = :g"),
		ExpressionAttributeNames:  map[string]string{"#t": "type"},
		ExpressionAttributeValues: map[string]types.AttributeValue{":g": &types.AttributeValueMemberS{Value: domain.ScopeGlobal}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("global scope not found: %w", domain.ErrNotFound)
	}
	var s domain.Scope
	if err := attributevalue.UnmarshalMap(out.Items[0], &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ScopeRepo) Scan(ctx context.Context) ([]domain.Scope, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	})
	if err != nil {
		return nil, err
	}
	var scopes []domain.Scope
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &scopes); err != nil {
		return nil, err
	}
	return scopes, nil
}

func (r *ScopeRepo) Update(ctx context.Context, scopeID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("scope_id", scopeID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}
