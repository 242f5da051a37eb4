package domain

import (
	"context"
	"time"
)

// InvitationStatus represents the lifecycle state of a company invitation
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationExpired  InvitationStatus = "expired"
	InvitationRevoked  InvitationStatus = "revoked"
)

// ValidInvitationStatuses returns all valid invitation statuses
func ValidInvitationStatuses() []InvitationStatus {
	return []InvitationStatus{InvitationPending, InvitationAccepted, InvitationExpired, InvitationRevoked}
}

// IsValid checks if the status is valid
func (s InvitationStatus) IsValid() bool {
	for _, valid := range ValidInvitationStatuses() {
		if s == valid {
			return true
		}
	}
	return false
}

// InvitationTTL is how long an invitation token stays redeemable
const InvitationTTL = 72 * time.Hour

type Invitation struct {
	ID        string           `json:"id"`
	CompanyID string           `json:"company_id"`
	Email     string           `json:"email"`
	Role      ProfileRole      `json:"role"`
	TokenHash string           `json:"-"` // sha256 hex of the invite token, never serialized
	Status    InvitationStatus `json:"status"`
	InvitedBy string           `json:"invited_by"`
	ExpiresAt time.Time        `json:"expires_at"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// IsRedeemable reports whether the invitation can still be accepted at the
// given instant. Expiry is computed on read, the stored status is only
// flipped when the row is next written.
func (i *Invitation) IsRedeemable(now time.Time) bool {
	return i.Status == InvitationPending && now.Before(i.ExpiresAt)
}

type CreateInvitationRequest struct {
	CompanyID string `json:"company_id" validate:"required,uuid"`
	Email     string `json:"email" validate:"required,email"`
	Role      string `json:"role" validate:"required"`
}

type AcceptInvitationRequest struct {
	Token string `json:"token" validate:"required,min=32"`
}

type InvitationRepository interface {
	Create(ctx context.Context, userID string, invitation *Invitation) error
	GetByID(ctx context.Context, userID, id string) (*Invitation, error)
	GetByTokenHash(ctx context.Context, userID, tokenHash string) (*Invitation, error)
	FetchByCompany(ctx context.Context, userID, companyID string) ([]Invitation, error)
	UpdateStatus(ctx context.Context, userID, id string, status InvitationStatus) error
}

type InvitationUsecase interface {
	CreateInvitation(ctx context.Context, userID string, req *CreateInvitationRequest) (*Invitation, error)
	AcceptInvitation(ctx context.Context, userID string, req *AcceptInvitationRequest) (*Invitation, error)
	RevokeInvitation(ctx context.Context, userID, id string) error
	ListCompanyInvitations(ctx context.Context, userID, companyID string) ([]Invitation, error)
}
