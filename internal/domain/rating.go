package domain

import "time"

// PeerRating is one student's rating of another.
// PK: ratee_id, SK: rater_id — re-rating overwrites; self-rating is rejected.
type PeerRating struct {
	RateeID   string    `json:"ratee_id" dynamodbav:"ratee_id"`
	RaterID   string    `json:"rater_id" dynamodbav:"rater_id"`
	Stars     int       `json:"stars" dynamodbav:"stars"`
	Comment   string    `json:"comment" dynamodbav:"comment"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}

type RateUserRequest struct {
	Stars   int    `json:"stars" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=1000"`
}
