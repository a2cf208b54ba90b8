package domain

import "time"

// Scope types. There is exactly one global scope; grade scopes partition by
// grade number and section scopes by section name.
const (
	ScopeGlobal  = "global"
	ScopeGrade   = "grade"
	ScopeSection = "section"
)

// GlobalScopeID is the fixed id of the single global scope. DynamoDB index
// key attributes cannot be empty strings, so unscoped content is always
// stored under this id rather than "".
const GlobalScopeID = "global"

// ScopeOrGlobal maps the empty scope id onto the global scope.
func ScopeOrGlobal(scopeID string) string {
	if scopeID == "" {
		return GlobalScopeID
	}
	return scopeID
}

// Scope is an access-control partition over content. Non-global scopes are
// locked behind an access code; unlocking mints a DigitalKey for the caller.
type Scope struct {
	ScopeID        string    `json:"id" dynamodbav:"scope_id"`
	Name           string    `json:"name" dynamodbav:"name"`
	Type           string    `json:"type" dynamodbav:"type"`
	GradeNumber    *int      `json:"grade_number,omitempty" dynamodbav:"grade_number"`
	SectionName    *string   `json:"section_name,omitempty" dynamodbav:"section_name"`
	AccessCodeHash string    `json:"-" dynamodbav:"access_code_hash"`
	CreatedAt      time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt      time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CreateScopeRequest struct {
	Name        string  `json:"name" validate:"required"`
	Type        string  `json:"type" validate:"required,oneof=global grade section"`
	GradeNumber *int    `json:"grade_number" validate:"omitempty,min=1,max=12"`
	SectionName *string `json:"section_name"`
	AccessCode  string  `json:"access_code"`
}

type UpdateScopeRequest struct {
	Name       *string `json:"name"`
	AccessCode *string `json:"access_code" validate:"omitempty,min=4"`
}

type UnlockScopeRequest struct {
	Code string `json:"code" validate:"required"`
}
