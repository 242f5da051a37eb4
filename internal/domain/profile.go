package domain

import (
	"context"
	"time"
)

// ProfileRole represents a member's role inside their company
type ProfileRole string

const (
	RoleCorporativo ProfileRole = "corporativo"
	RoleGerente     ProfileRole = "gerente"
	RoleEmpleado    ProfileRole = "empleado"
)

// ValidProfileRoles returns all valid roles
func ValidProfileRoles() []ProfileRole {
	return []ProfileRole{RoleCorporativo, RoleGerente, RoleEmpleado}
}

// IsValid checks if the role is valid
func (r ProfileRole) IsValid() bool {
	for _, valid := range ValidProfileRoles() {
		if r == valid {
			return true
		}
	}
	return false
}

// Profile represents a user's profile. The ID is the external identity
// provider's UUID; the row is created on first authenticated touch.
type Profile struct {
	ID                  string         `json:"id"`
	Email               string         `json:"email"`
	FullName            string         `json:"full_name"`
	JobTitle            *string        `json:"job_title"`
	Role                ProfileRole    `json:"role"`
	CompanyID           *string        `json:"company_id"`
	OnboardingCompleted bool           `json:"onboarding_completed"`
	Preferences         map[string]any `json:"preferences,omitempty"`
	Version             int64          `json:"version"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}

type UpdateProfileRequest struct {
	FullName    *string        `json:"full_name" validate:"omitempty,min=2,max=120"`
	JobTitle    *string        `json:"job_title" validate:"omitempty,max=120"`
	Preferences map[string]any `json:"preferences" validate:"omitempty"`
	Version     int64          `json:"version" validate:"required,min=1"`
}

type ProfileRepository interface {
	Create(ctx context.Context, profile *Profile) error
	GetByID(ctx context.Context, userID, id string) (*Profile, error)
	GetByEmail(ctx context.Context, userID, email string) (*Profile, error)
	Update(ctx context.Context, userID string, profile *Profile) error
	SetCompany(ctx context.Context, userID, profileID, companyID string, role ProfileRole) error
	MarkOnboardingCompleted(ctx context.Context, userID, profileID string) error
}

type ProfileUsecase interface {
	EnsureProfile(ctx context.Context, profile *Profile) (*Profile, error)
	GetProfile(ctx context.Context, userID, id string) (*Profile, error)
	UpdateProfile(ctx context.Context, userID, id string, req *UpdateProfileRequest) (*Profile, error)
	AssignRole(ctx context.Context, userID, targetID string, role ProfileRole) error
}
