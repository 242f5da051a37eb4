package domain

import (
	"context"
	"time"
)

// Activity is the smallest unit of work, hanging off one initiative
type Activity struct {
	ID           string     `json:"id"`
	InitiativeID string     `json:"initiative_id"`
	AssigneeID   *string    `json:"assignee_id"`
	Title        string     `json:"title"`
	Done         bool       `json:"done"`
	DueDate      *time.Time `json:"due_date"`
	Version      int64      `json:"version"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type CreateActivityRequest struct {
	InitiativeID string     `json:"initiative_id" validate:"required,uuid"`
	Title        string     `json:"title" validate:"required,min=2,max=200"`
	AssigneeID   *string    `json:"assignee_id" validate:"omitempty,uuid"`
	DueDate      *time.Time `json:"due_date" validate:"omitempty"`
}

type UpdateActivityRequest struct {
	Title      *string    `json:"title" validate:"omitempty,min=2,max=200"`
	Done       *bool      `json:"done" validate:"omitempty"`
	AssigneeID *string    `json:"assignee_id" validate:"omitempty,uuid"`
	DueDate    *time.Time `json:"due_date" validate:"omitempty"`
	Version    int64      `json:"version" validate:"required,min=1"`
}

type ActivityRepository interface {
	Create(ctx context.Context, userID string, activity *Activity) error
	GetByID(ctx context.Context, userID, id string) (*Activity, error)
	FetchByInitiative(ctx context.Context, userID, initiativeID string) ([]Activity, error)
	Update(ctx context.Context, userID string, activity *Activity) error
	Delete(ctx context.Context, userID, id string) error
}

type ActivityUsecase interface {
	CreateActivity(ctx context.Context, userID string, req *CreateActivityRequest) (*Activity, error)
	ListByInitiative(ctx context.Context, userID, initiativeID string) ([]Activity, error)
	UpdateActivity(ctx context.Context, userID, id string, req *UpdateActivityRequest) (*Activity, error)
	DeleteActivity(ctx context.Context, userID, id string) error
}
