package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/schoolyard-api/internal/domain"
)

// RSVPRepo manages event RSVPs.
// PK: event_id, SK: user_id — a plain Put overwrites the previous reply,
// which is exactly the upsert semantics RSVPs need.
type RSVPRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewRSVPRepo(client *dynamodb.Client, tableName string) *RSVPRepo {
	return &RSVPRepo{client: client, tableName: tableName}
}

func (r *RSVPRepo) Put(ctx context.Context, rsvp *domain.RSVP) error {
	item, err := attributevalue.MarshalMap(rsvp)
	if err != nil {
		return fmt.Errorf("marshal rsvp: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *RSVPRepo) Get(ctx context.Context, eventID, userID string) (*domain.RSVP, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey("event_id", eventID, "user_id", userID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("rsvp not found: %w", domain.ErrNotFound)
	}
	var rsvp domain.RSVP
	if err := attributevalue.UnmarshalMap(out.Item, &rsvp); err != nil {
		return nil, err
	}
	return &rsvp, nil
}

// ListByEvent returns all replies for an event.
func (r *RSVPRepo) ListByEvent(ctx context.Context, eventID string) ([]domain.RSVP, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("event_id = :eid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":eid": &types.AttributeValueMemberS{Value: eventID},
		},
	})
	if err != nil {
		return nil, err
	}
	var rsvps []domain.RSVP
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &rsvps); err != nil {
		return nil, err
	}
	return rsvps, nil
}

func (r *RSVPRepo) Delete(ctx context.Context, eventID, userID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey("event_id", eventID, "user_id", userID),
	})
	return err
}
