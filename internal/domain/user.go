package domain

import "time"

// Roles understood by the authorization layer. Registration always yields a
// student; visitor accounts (read-only) and admins are provisioned by admins.
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
	RoleVisitor = "visitor"
)

type User struct {
	UserID           string     `json:"id" dynamodbav:"user_id"`
	Username         string     `json:"username" dynamodbav:"username"`
	Email            string     `json:"email" dynamodbav:"email"`
	Phone            *string    `json:"phone" dynamodbav:"phone"`
	PasswordHash     string     `json:"-" dynamodbav:"password_hash"`
	Role             string     `json:"role" dynamodbav:"role"`
	FirstName        string     `json:"first_name" dynamodbav:"first_name"`
	LastName         string     `json:"last_name" dynamodbav:"last_name"`
	GradeNumber      *int       `json:"grade_number,omitempty" dynamodbav:"grade_number"`
	SectionName      *string    `json:"section_name,omitempty" dynamodbav:"section_name"`
	CredibilityScore int        `json:"credibility_score" dynamodbav:"credibility_score"`
	ReputationScore  float64    `json:"reputation_score" dynamodbav:"reputation_score"`
	RatingCount      int        `json:"rating_count" dynamodbav:"rating_count"`
	EmailConfirmed   bool       `json:"email_confirmed" dynamodbav:"email_confirmed"`
	Enable           bool       `json:"enable" dynamodbav:"enable"`
	DeletedAt        *time.Time `json:"deleted_at,omitempty" dynamodbav:"deleted_at"`
	CreatedAt        time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt        time.Time  `json:"updated" dynamodbav:"updated_at"`
}

type CreateUserRequest struct {
	Username    string  `json:"username" validate:"required,min=3,max=32"`
	Password    string  `json:"password" validate:"required,min=8,max=72"`
	Email       string  `json:"email" validate:"required,email"`
	Phone       *string `json:"phone"`
	FirstName   string  `json:"first_name" validate:"required"`
	LastName    string  `json:"last_name" validate:"required"`
	GradeNumber *int    `json:"grade_number" validate:"omitempty,min=1,max=12"`
	SectionName *string `json:"section_name"`
}

type UpdateUserRequest struct {
	Username    *string `json:"username" validate:"omitempty,min=3,max=32"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Phone       *string `json:"phone"`
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	GradeNumber *int    `json:"grade_number" validate:"omitempty,min=1,max=12"`
	SectionName *string `json:"section_name"`
	Role        *string `json:"role"` // admin-only; validated against the role constants
}
