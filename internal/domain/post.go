package domain

import "time"

// Post moderation actions (admin only).
const (
	ModerationApprove = "approve"
	ModerationFlag    = "flag"
	ModerationRemove  = "remove"
)

// Post is a feed entry. Global posts carry GlobalScopeID.
type Post struct {
	PostID           string    `json:"id" dynamodbav:"post_id"`
	AuthorID         string    `json:"author_id" dynamodbav:"author_id"`
	ScopeID          string    `json:"scope_id,omitempty" dynamodbav:"scope_id"`
	Title            string    `json:"title" dynamodbav:"title"`
	Body             string    `json:"body" dynamodbav:"body"`
	CredibilityScore int       `json:"credibility_score" dynamodbav:"credibility_score"`
	Flagged          bool      `json:"flagged" dynamodbav:"flagged"`
	Enable           bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt        time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt        time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CreatePostRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Body    string `json:"body" validate:"required"`
	ScopeID string `json:"scope_id"`
}

type UpdatePostRequest struct {
	Title *string `json:"title" validate:"omitempty,max=200"`
	Body  *string `json:"body"`
}

type ModeratePostRequest struct {
	Action string `json:"action" validate:"required,oneof=approve flag remove"`
}

type Comment struct {
	CommentID string    `json:"id" dynamodbav:"comment_id"`
	PostID    string    `json:"post_id" dynamodbav:"post_id"`
	AuthorID  string    `json:"author_id" dynamodbav:"author_id"`
	Body      string    `json:"body" dynamodbav:"body"`
	Enable    bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CreateCommentRequest struct {
	Body string `json:"body" validate:"required,max=2000"`
}
