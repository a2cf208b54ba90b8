package domain

import "time"

// Teacher is a directory profile. It may be linked to a user account via
// UserID; deleting the profile cascades to its reviews and, when linked,
// to posts authored by that account.
type Teacher struct {
	TeacherID   string    `json:"id" dynamodbav:"teacher_id"`
	FullName    string    `json:"full_name" dynamodbav:"full_name"`
	Subject     string    `json:"subject" dynamodbav:"subject"`
	Bio         string    `json:"bio" dynamodbav:"bio"`
	UserID      *string   `json:"user_id,omitempty" dynamodbav:"user_id"`
	ReviewCount int       `json:"review_count" dynamodbav:"review_count"`
	RatingSum   int       `json:"-" dynamodbav:"rating_sum"`
	Enable      bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt   time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updated" dynamodbav:"updated_at"`
}

// AverageRating is RatingSum/ReviewCount, exposed for listings.
func (t *Teacher) AverageRating() float64 {
	if t.ReviewCount == 0 {
		return 0
	}
	return float64(t.RatingSum) / float64(t.ReviewCount)
}

type CreateTeacherRequest struct {
	FullName string  `json:"full_name" validate:"required"`
	Subject  string  `json:"subject" validate:"required"`
	Bio      string  `json:"bio"`
	UserID   *string `json:"user_id"`
}

type UpdateTeacherRequest struct {
	FullName *string `json:"full_name"`
	Subject  *string `json:"subject"`
	Bio      *string `json:"bio"`
}

// TeacherReview is a student's review of a teacher.
// PK: teacher_id, SK: reviewer_id — one review per reviewer.
type TeacherReview struct {
	TeacherID  string    `json:"teacher_id" dynamodbav:"teacher_id"`
	ReviewerID string    `json:"reviewer_id" dynamodbav:"reviewer_id"`
	Stars      int       `json:"stars" dynamodbav:"stars"`
	Comment    string    `json:"comment" dynamodbav:"comment"`
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt  time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CreateReviewRequest struct {
	Stars   int    `json:"stars" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}
