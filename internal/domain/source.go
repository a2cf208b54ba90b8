package domain

import "time"

// StudySource is a shared study file. The bytes live in S3 under Object;
// globally shared sources carry GlobalScopeID.
type StudySource struct {
	SourceID    string    `json:"id" dynamodbav:"source_id"`
	Title       string    `json:"title" dynamodbav:"title"`
	Subject     string    `json:"subject" dynamodbav:"subject"`
	ScopeID     string    `json:"scope_id,omitempty" dynamodbav:"scope_id"`
	Object      string    `json:"object" dynamodbav:"object"`
	Size        int64     `json:"size" dynamodbav:"size"`
	ContentType string    `json:"content_type" dynamodbav:"content_type"`
	Name        string    `json:"name" dynamodbav:"name"`
	Hash        string    `json:"hash" dynamodbav:"hash"`
	URL         *string   `json:"url,omitempty" dynamodbav:"url"`
	UploadedBy  string    `json:"uploaded_by" dynamodbav:"uploaded_by"`
	Enable      bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt   time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updated" dynamodbav:"updated_at"`
}
