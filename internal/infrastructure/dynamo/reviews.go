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

// ReviewRepo manages teacher reviews.
// PK: teacher_id, SK: reviewer_id — one review per reviewer.
type ReviewRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewReviewRepo(client *dynamodb.Client, tableName string) *ReviewRepo {
	return &ReviewRepo{client: client, tableName: tableName}
}

// PutIfAbsent writes the review only when the reviewer has not reviewed this
// teacher before. Returns ErrConflict on a duplicate.
func (r *ReviewRepo) PutIfAbsent(ctx context.Context, rev *domain.TeacherReview) error {
	item, err := attributevalue.MarshalMap(rev)
	if err != nil {
		return fmt.Errorf("marshal review: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(teacher_id) AND attribute_not_exists(reviewer_id)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("already reviewed: %w", domain.ErrConflict)
		}
		return err
	}
	return nil
}

// ListByTeacher returns all reviews of a teacher.
func (r *ReviewRepo) ListByTeacher(ctx context.Context, teacherID string) ([]domain.TeacherReview, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("teacher_id = :tid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":tid": &types.AttributeValueMemberS{Value: teacherID},
		},
	})
	if err != nil {
		return nil, err
	}
	var reviews []domain.TeacherReview
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// DeleteByTeacher removes every review of a teacher (profile-delete cascade).
// Best-effort: failures are logged and the first error is returned.
func (r *ReviewRepo) DeleteByTeacher(ctx context.Context, teacherID string) error {
	reviews, err := r.ListByTeacher(ctx, teacherID)
	if err != nil {
		return err
	}
	var firstErr error
	for _, rev := range reviews {
		_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(r.tableName),
			Key:       compositeKey("teacher_id", rev.TeacherID, "reviewer_id", rev.ReviewerID),
		})
		if err != nil {
			slog.Warn("failed to delete review during teacher cascade", "teacher_id", teacherID, "reviewer_id", rev.ReviewerID, "err", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
