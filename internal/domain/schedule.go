package domain

import "time"

// ScheduleSlot is a single lesson in a section's weekly timetable.
// Slots are always scoped; reading a section's schedule requires a digital
// key for that scope.
type ScheduleSlot struct {
	SlotID    string    `json:"id" dynamodbav:"slot_id"`
	ScopeID   string    `json:"scope_id" dynamodbav:"scope_id"`
	DayOfWeek int       `json:"day_of_week" dynamodbav:"day_of_week"` // 1=Monday … 7=Sunday
	StartsAt  string    `json:"starts_at" dynamodbav:"starts_at"`     // "HH:MM"
	EndsAt    string    `json:"ends_at" dynamodbav:"ends_at"`         // "HH:MM"
	Subject   string    `json:"subject" dynamodbav:"subject"`
	TeacherID *string   `json:"teacher_id,omitempty" dynamodbav:"teacher_id"`
	Room      string    `json:"room" dynamodbav:"room"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CreateSlotRequest struct {
	ScopeID   string  `json:"scope_id" validate:"required"`
	DayOfWeek int     `json:"day_of_week" validate:"required,min=1,max=7"`
	StartsAt  string  `json:"starts_at" validate:"required,len=5"`
	EndsAt    string  `json:"ends_at" validate:"required,len=5"`
	Subject   string  `json:"subject" validate:"required"`
	TeacherID *string `json:"teacher_id"`
	Room      string  `json:"room"`
}

type UpdateSlotRequest struct {
	DayOfWeek *int    `json:"day_of_week" validate:"omitempty,min=1,max=7"`
	StartsAt  *string `json:"starts_at" validate:"omitempty,len=5"`
	EndsAt    *string `json:"ends_at" validate:"omitempty,len=5"`
	Subject   *string `json:"subject"`
	TeacherID *string `json:"teacher_id"`
	Room      *string `json:"room"`
}
