package dynamo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/schoolyard-api/internal/domain"
)

// KeyRepo manages digital keys.
// PK: user_id, SK: scope_id — the composite key enforces at most one key
// per (user, scope) pair.
type KeyRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewKeyRepo(client *dynamodb.Client, tableName string) *KeyRepo {
	return &KeyRepo{client: client, tableName: tableName}
}

// PutIfAbsent writes the key only when no row exists for (user, scope).
// Returns ErrConflict when the key is already present, leaving the original
// row untouched — unlock idempotency is built on this.
func (r *KeyRepo) PutIfAbsent(ctx context.Context, k *domain.DigitalKey) error {
	item, err := attributevalue.MarshalMap(k)
	if err != nil {
		return fmt.Errorf("marshal digital key: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(user_id) AND attribute_not_exists(scope_id)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("key already exists: %w", domain.ErrConflict)
		}
		return err
	}
	return nil
}

func (r *KeyRepo) Get(ctx context.Context, userID, scopeID string) (*domain.DigitalKey, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey("user_id", userID, "scope_id", scopeID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("key not found: %w", domain.ErrNotFound)
	}
	var k domain.DigitalKey
	if err := attributevalue.UnmarshalMap(out.Item, &k); err != nil {
		return nil, err
	}
	return &k, nil
}

// ListByUser returns all digital keys held by a user.
func (r *KeyRepo) ListByUser(ctx context.Context, userID string) ([]domain.DigitalKey, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return nil, err
	}
	var keys []domain.DigitalKey
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &keys); err != nil {
		return nil, err
	}
	return keys, nil
}

// DeleteByUser removes every key held by a user (account deletion cascade).
// Best-effort: failures are logged and the first error is returned.
func (r *KeyRepo) DeleteByUser(ctx context.Context, userID string) error {
	keys, err := r.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	var firstErr error
	for _, k := range keys {
		_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(r.tableName),
			Key:       compositeKey("user_id", k.UserID, "scope_id", k.ScopeID),
		})
		if err != nil {
			slog.Warn("failed to delete digital key during user delete", "user_id", userID, "scope_id", k.ScopeID, "err", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
