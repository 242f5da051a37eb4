package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Montinou/stratixV2-sub007/internal/domain"
	"github.com/Montinou/stratixV2-sub007/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type invitationRepo struct {
	rls *database.RLSPool
}

func NewInvitationRepository(rls *database.RLSPool) domain.InvitationRepository {
	return &invitationRepo{rls: rls}
}

const invitationColumns = `id, company_id, email, role, token_hash, status, invited_by, expires_at, created_at, updated_at`

func (r *invitationRepo) Create(ctx context.Context, userID string, invitation *domain.Invitation) error {
	if invitation.ID == "" {
		invitation.ID = uuid.NewString()
	}

	query := `
		INSERT INTO invitations (` + invitationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING created_at, updated_at`

	err := r.rls.WithUserContext(ctx, userID, func(ctx context.Context, q database.Querier) error {
		return q.QueryRow(ctx, query,
			invitation.ID, invitation.CompanyID, invitation.Email, invitation.Role,
			invitation.TokenHash, invitation.Status, invitation.InvitedBy, invitation.ExpiresAt,
		).Scan(&invitation.CreatedAt, &invitation.UpdatedAt)
	})
	if err != nil {
		return fmt.Errorf("failed to create invitation: %w", err)
	}
	return nil
}

func (r *invitationRepo) GetByID(ctx context.Context, userID, id string) (*domain.Invitation, error) {
	return r.getOne(ctx, userID, `SELECT `+invitationColumns+` FROM invitations WHERE id = $1`, id)
}

func (r *invitationRepo) GetByTokenHash(ctx context.Context, userID, tokenHash string) (*domain.Invitation, error) {
	return r.getOne(ctx, userID, `SELECT `+invitationColumns+` FROM invitations WHERE token_hash = $1`, tokenHash)
}

func (r *invitationRepo) getOne(ctx context.Context, userID, query string, arg any) (*domain.Invitation, error) {
	var invitation *domain.Invitation
	err := r.rls.WithUserContext(ctx, userID, func(ctx context.Context, q database.Querier) error {
		var scanErr error
		invitation, scanErr = scanInvitation(q.QueryRow(ctx, query, arg))
		return scanErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	return invitation, nil
}

func (r *invitationRepo) FetchByCompany(ctx context.Context, userID, companyID string) ([]domain.Invitation, error) {
	query := `
		SELECT ` + invitationColumns + `
		FROM invitations
		WHERE company_id = $1
		ORDER BY created_at DESC`

	var invitations []domain.Invitation
	err := r.rls.WithUserContext(ctx, userID, func(ctx context.Context, q database.Querier) error {
		rows, err := q.Query(ctx, query, companyID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			invitation, err := scanInvitation(rows)
			if err != nil {
				return err
			}
			invitations = append(invitations, *invitation)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch invitations: %w", err)
	}
	return invitations, nil
}

func (r *invitationRepo) UpdateStatus(ctx context.Context, userID, id string, status domain.InvitationStatus) error {
	query := `UPDATE invitations SET status = $2, updated_at = NOW() WHERE id = $1`

	err := r.rls.WithUserContext(ctx, userID, func(ctx context.Context, q database.Querier) error {
		tag, err := q.Exec(ctx, query, id, status)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to update invitation status: %w", err)
	}
	return nil
}

func scanInvitation(row pgx.Row) (*domain.Invitation, error) {
	var invitation domain.Invitation
	err := row.Scan(
		&invitation.ID, &invitation.CompanyID, &invitation.Email, &invitation.Role,
		&invitation.TokenHash, &invitation.Status, &invitation.InvitedBy,
		&invitation.ExpiresAt, &invitation.CreatedAt, &invitation.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}
