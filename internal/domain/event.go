package domain

import "time"

// RSVP statuses.
const (
	RSVPGoing    = "going"
	RSVPMaybe    = "maybe"
	RSVPDeclined = "declined"
)

// Event is a school event. Global events carry GlobalScopeID.
type Event struct {
	EventID     string    `json:"id" dynamodbav:"event_id"`
	Title       string    `json:"title" dynamodbav:"title"`
	Description string    `json:"description" dynamodbav:"description"`
	Location    string    `json:"location" dynamodbav:"location"`
	StartsAt    time.Time `json:"starts_at" dynamodbav:"starts_at"`
	ScopeID     string    `json:"scope_id,omitempty" dynamodbav:"scope_id"`
	CreatedBy   string    `json:"created_by" dynamodbav:"created_by"`
	Enable      bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt   time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CreateEventRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description"`
	Location    string `json:"location"`
	StartsAt    string `json:"starts_at" validate:"required"` // RFC 3339
	ScopeID     string `json:"scope_id"`
}

type UpdateEventRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
	StartsAt    *string `json:"starts_at"` // RFC 3339
}

// RSVP is a per-user attendance reply. PK: event_id, SK: user_id — repeated
// replies overwrite the previous status.
type RSVP struct {
	EventID   string    `json:"event_id" dynamodbav:"event_id"`
	UserID    string    `json:"user_id" dynamodbav:"user_id"`
	Status    string    `json:"status" dynamodbav:"status"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}

type RSVPRequest struct {
	Status string `json:"status" validate:"required,oneof=going maybe declined"`
}
