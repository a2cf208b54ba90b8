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

// RatingRepo manages peer ratings.
// PK: ratee_id, SK: rater_id — a plain Put overwrites a previous rating by
// the same rater (re-rating updates, it does not duplicate).
type RatingRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewRatingRepo(client *dynamodb.Client, tableName string) *RatingRepo {
	return &RatingRepo{client: client, tableName: tableName}
}

func (r *RatingRepo) Put(ctx context.Context, rating *domain.PeerRating) error {
	item, err := attributevalue.MarshalMap(rating)
	if err != nil {
		return fmt.Errorf("marshal rating: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *RatingRepo) Get(ctx context.Context, rateeID, raterID string) (*domain.PeerRating, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey("ratee_id", rateeID, "rater_id", raterID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("rating not found: %w", domain.ErrNotFound)
	}
	var rating domain.PeerRating
	if err := attributevalue.UnmarshalMap(out.Item, &rating); err != nil {
		return nil, err
	}
	return &rating, nil
}

// ListByRatee returns all ratings received by a user.
func (r *RatingRepo) ListByRatee(ctx context.Context, rateeID string) ([]domain.PeerRating, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("ratee_id = :rid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":rid": &types.AttributeValueMemberS{Value: rateeID},
		},
	})
	if err != nil {
		return nil, err
	}
	var ratings []domain.PeerRating
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &ratings); err != nil {
		return nil, err
	}
	return ratings, nil
}
