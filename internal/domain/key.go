package domain

import "time"

// DigitalKey grants a user permanent access to a non-global scope.
// PK: user_id, SK: scope_id — at most one key per (user, scope) pair.
// Keys are never mutated; they are deleted only when the account is deleted.
type DigitalKey struct {
	UserID     string    `json:"user_id" dynamodbav:"user_id"`
	ScopeID    string    `json:"scope_id" dynamodbav:"scope_id"`
	UnlockedAt time.Time `json:"unlocked_at" dynamodbav:"unlocked_at"`
}
