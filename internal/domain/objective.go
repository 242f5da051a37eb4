package domain

import (
	"context"
	"errors"
	"time"
)

// Common domain errors
var (
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
)

// ObjectiveStatus represents the lifecycle state of an objective
type ObjectiveStatus string

const (
	ObjectiveDraft     ObjectiveStatus = "draft"
	ObjectiveActive    ObjectiveStatus = "active"
	ObjectiveCompleted ObjectiveStatus = "completed"
	ObjectiveCancelled ObjectiveStatus = "cancelled"
)

// ValidObjectiveStatuses returns all valid objective statuses
func ValidObjectiveStatuses() []ObjectiveStatus {
	return []ObjectiveStatus{ObjectiveDraft, ObjectiveActive, ObjectiveCompleted, ObjectiveCancelled}
}

// IsValid checks if the status is valid
func (s ObjectiveStatus) IsValid() bool {
	for _, valid := range ValidObjectiveStatuses() {
		if s == valid {
			return true
		}
	}
	return false
}

type Objective struct {
	ID            string          `json:"id"`
	CompanyID     string          `json:"company_id"`
	OwnerID       string          `json:"owner_id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Quarter       string          `json:"quarter"` // e.g. 2026-Q1
	Status        ObjectiveStatus `json:"status"`
	Progress      int             `json:"progress"` // 0-100, rolled up from initiatives
	SuccessMetric *string         `json:"success_metric"`
	Tags          []string        `json:"tags"`
	Version       int64           `json:"version"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ObjectiveWithOwner extends Objective with owner profile information
type ObjectiveWithOwner struct {
	Objective
	OwnerName  string  `json:"owner_name"`
	OwnerEmail *string `json:"owner_email,omitempty"`
}

type CreateObjectiveRequest struct {
	Title         string   `json:"title" validate:"required,min=3,max=200"`
	Description   string   `json:"description" validate:"required,max=4000"`
	Quarter       string   `json:"quarter" validate:"required,max=10"`
	SuccessMetric *string  `json:"success_metric" validate:"omitempty,max=500"`
	Tags          []string `json:"tags" validate:"omitempty,dive,max=40"`
}

type UpdateObjectiveRequest struct {
	Title         *string  `json:"title" validate:"omitempty,min=3,max=200"`
	Description   *string  `json:"description" validate:"omitempty,max=4000"`
	Quarter       *string  `json:"quarter" validate:"omitempty,max=10"`
	Status        *string  `json:"status" validate:"omitempty"`
	SuccessMetric *string  `json:"success_metric" validate:"omitempty,max=500"`
	Tags          []string `json:"tags" validate:"omitempty,dive,max=40"`
	Version       int64    `json:"version" validate:"required,min=1"`
}

type ObjectiveRepository interface {
	Create(ctx context.Context, userID string, objective *Objective) error
	GetByID(ctx context.Context, userID, id string) (*Objective, error)
	FetchByCompany(ctx context.Context, userID, companyID string, limit, offset int) ([]Objective, int64, error)
	FetchByOwner(ctx context.Context, userID, ownerID string, limit, offset int) ([]Objective, int64, error)
	Update(ctx context.Context, userID string, objective *Objective) error
	Delete(ctx context.Context, userID, id string) error
	RecomputeProgress(ctx context.Context, userID, id string) (int, error)
}

type ObjectiveUsecase interface {
	CreateObjective(ctx context.Context, userID string, req *CreateObjectiveRequest) (*Objective, error)
	GetObjective(ctx context.Context, userID, id string) (*Objective, error)
	ListCompanyObjectives(ctx context.Context, userID, companyID string, page, pageSize int) ([]Objective, int64, error)
	ListMyObjectives(ctx context.Context, userID string, page, pageSize int) ([]Objective, int64, error)
	UpdateObjective(ctx context.Context, userID, id string, req *UpdateObjectiveRequest) (*Objective, error)
	DeleteObjective(ctx context.Context, userID, id string) error
}
