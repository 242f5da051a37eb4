package domain

import (
	"context"
	"time"
)

// InitiativeStatus represents the execution state of an initiative
type InitiativeStatus string

const (
	InitiativePlanning   InitiativeStatus = "planning"
	InitiativeInProgress InitiativeStatus = "in_progress"
	InitiativeCompleted  InitiativeStatus = "completed"
	InitiativeBlocked    InitiativeStatus = "blocked"
)

// ValidInitiativeStatuses returns all valid initiative statuses
func ValidInitiativeStatuses() []InitiativeStatus {
	return []InitiativeStatus{InitiativePlanning, InitiativeInProgress, InitiativeCompleted, InitiativeBlocked}
}

// IsValid checks if the status is valid
func (s InitiativeStatus) IsValid() bool {
	for _, valid := range ValidInitiativeStatuses() {
		if s == valid {
			return true
		}
	}
	return false
}

// Initiative is a concrete workstream that pushes one objective forward
type Initiative struct {
	ID          string           `json:"id"`
	ObjectiveID string           `json:"objective_id"`
	OwnerID     string           `json:"owner_id"`
	Title       string           `json:"title"`
	Description *string          `json:"description"`
	Status      InitiativeStatus `json:"status"`
	Progress    int              `json:"progress"` // 0-100, rolled up from activities
	DueDate     *time.Time       `json:"due_date"`
	Version     int64            `json:"version"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

type CreateInitiativeRequest struct {
	ObjectiveID string     `json:"objective_id" validate:"required,uuid"`
	Title       string     `json:"title" validate:"required,min=3,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=4000"`
	DueDate     *time.Time `json:"due_date" validate:"omitempty"`
}

type UpdateInitiativeRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=3,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=4000"`
	Status      *string    `json:"status" validate:"omitempty"`
	DueDate     *time.Time `json:"due_date" validate:"omitempty"`
	Version     int64      `json:"version" validate:"required,min=1"`
}

type InitiativeRepository interface {
	Create(ctx context.Context, userID string, initiative *Initiative) error
	GetByID(ctx context.Context, userID, id string) (*Initiative, error)
	FetchByObjective(ctx context.Context, userID, objectiveID string) ([]Initiative, error)
	Update(ctx context.Context, userID string, initiative *Initiative) error
	Delete(ctx context.Context, userID, id string) error
	RecomputeProgress(ctx context.Context, userID, id string) (int, error)
}

type InitiativeUsecase interface {
	CreateInitiative(ctx context.Context, userID string, req *CreateInitiativeRequest) (*Initiative, error)
	GetInitiative(ctx context.Context, userID, id string) (*Initiative, error)
	ListByObjective(ctx context.Context, userID, objectiveID string) ([]Initiative, error)
	UpdateInitiative(ctx context.Context, userID, id string, req *UpdateInitiativeRequest) (*Initiative, error)
	DeleteInitiative(ctx context.Context, userID, id string) error
}
