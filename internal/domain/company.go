package domain

import (
	"context"
	"time"
)

// CompanySize buckets match the options offered by the onboarding wizard
type CompanySize string

const (
	CompanySizeMicro      CompanySize = "1-10"
	CompanySizeSmall      CompanySize = "11-50"
	CompanySizeMedium     CompanySize = "51-200"
	CompanySizeLarge      CompanySize = "201-500"
	CompanySizeEnterprise CompanySize = "500+"
)

// ValidCompanySizes returns all valid size buckets
func ValidCompanySizes() []CompanySize {
	return []CompanySize{CompanySizeMicro, CompanySizeSmall, CompanySizeMedium, CompanySizeLarge, CompanySizeEnterprise}
}

// IsValid checks if the size bucket is valid
func (s CompanySize) IsValid() bool {
	for _, valid := range ValidCompanySizes() {
		if s == valid {
			return true
		}
	}
	return false
}

// Company represents a tenant organization
type Company struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Slug        string         `json:"slug"`
	Description *string        `json:"description"`
	Industry    *string        `json:"industry"`
	Size        *CompanySize   `json:"size"`
	Country     *string        `json:"country"`
	Website     *string        `json:"website"`
	LogoURL     *string        `json:"logo_url"`
	Settings    map[string]any `json:"settings,omitempty"`
	CreatedBy   string         `json:"created_by"`
	Version     int64          `json:"version"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// CompanyMember is the membership projection returned by the members endpoint
type CompanyMember struct {
	UserID   string      `json:"user_id"`
	Email    string      `json:"email"`
	FullName string      `json:"full_name"`
	Role     ProfileRole `json:"role"`
	JoinedAt time.Time   `json:"joined_at"`
}

type CreateCompanyRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=120"`
	Slug        string  `json:"slug" validate:"required,min=2,max=60,lowercase"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Industry    *string `json:"industry" validate:"omitempty,max=120"`
	Size        *string `json:"size" validate:"omitempty"`
	Country     *string `json:"country" validate:"omitempty,max=80"`
	Website     *string `json:"website" validate:"omitempty,url"`
}

type UpdateCompanyRequest struct {
	Name        *string        `json:"name" validate:"omitempty,min=2,max=120"`
	Description *string        `json:"description" validate:"omitempty,max=2000"`
	Industry    *string        `json:"industry" validate:"omitempty,max=120"`
	Size        *string        `json:"size" validate:"omitempty"`
	Country     *string        `json:"country" validate:"omitempty,max=80"`
	Website     *string        `json:"website" validate:"omitempty,url"`
	Settings    map[string]any `json:"settings" validate:"omitempty"`
	Version     int64          `json:"version" validate:"required,min=1"`
}

type CompanyRepository interface {
	Create(ctx context.Context, userID string, company *Company) error
	GetByID(ctx context.Context, userID, id string) (*Company, error)
	GetBySlug(ctx context.Context, userID, slug string) (*Company, error)
	Update(ctx context.Context, userID string, company *Company) error
	UpdateLogoURL(ctx context.Context, userID, id, logoURL string) error
	ListMembers(ctx context.Context, userID, companyID string) ([]CompanyMember, error)
}

type CompanyUsecase interface {
	CreateCompany(ctx context.Context, userID string, req *CreateCompanyRequest) (*Company, error)
	GetCompany(ctx context.Context, userID, id string) (*Company, error)
	UpdateCompany(ctx context.Context, userID, id string, req *UpdateCompanyRequest) (*Company, error)
	UploadLogo(ctx context.Context, userID, id string, data []byte, contentType string) (string, error)
	ListMembers(ctx context.Context, userID, companyID string) ([]CompanyMember, error)
}
