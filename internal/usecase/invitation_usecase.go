package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Montinou/stratixV2-sub007/internal/domain"
	"github.com/Montinou/stratixV2-sub007/pkg/apperror"
	"github.com/Montinou/stratixV2-sub007/pkg/email"

	"github.com/go-playground/validator/v10"
)

type invitationUsecase struct {
	invitations domain.InvitationRepository
	profiles    domain.ProfileRepository
	companies   domain.CompanyRepository
	mailer      *email.EmailService
	validate    *validator.Validate
}

func NewInvitationUsecase(
	invitations domain.InvitationRepository,
	profiles domain.ProfileRepository,
	companies domain.CompanyRepository,
	mailer *email.EmailService,
	validate *validator.Validate,
) domain.InvitationUsecase {
	return &invitationUsecase{
		invitations: invitations,
		profiles:    profiles,
		companies:   companies,
		mailer:      mailer,
		validate:    validate,
	}
}

// CreateInvitation issues a 72h single-use invite. Only the sha256 of the
// token is stored; the clear token travels once, inside the email link.
func (u *invitationUsecase) CreateInvitation(ctx context.Context, userID string, req *domain.CreateInvitationRequest) (*domain.Invitation, error) {
	if err := requireUser(ctx, userID); err != nil {
		return nil, err
	}
	if err := u.validate.Struct(req); err != nil {
		return nil, apperror.BadRequest("Solicitud inválida: " + err.Error())
	}

	role := domain.ProfileRole(req.Role)
	if !role.IsValid() {
		return nil, apperror.BadRequest("Rol inválido: " + req.Role)
	}

	inviter, err := u.profiles.GetByID(ctx, userID, userID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to load inviter profile: %w", err))
	}
	if inviter.CompanyID == nil || *inviter.CompanyID != req.CompanyID {
		return nil, apperror.Forbidden("No pertenecés a esta empresa")
	}
	if inviter.Role != domain.RoleCorporativo && inviter.Role != domain.RoleGerente {
		return nil, apperror.Forbidden("Solo un rol corporativo o gerente puede invitar miembros")
	}

	company, err := u.companies.GetByID(ctx, userID, req.CompanyID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Empresa no encontrada")
		}
		return nil, apperror.Internal(fmt.Errorf("failed to get company: %w", err))
	}

	token, err := newInviteToken()
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to generate token: %w", err))
	}

	invitation := &domain.Invitation{
		CompanyID: req.CompanyID,
		Email:     req.Email,
		Role:      role,
		TokenHash: hashInviteToken(token),
		Status:    domain.InvitationPending,
		InvitedBy: userID,
		ExpiresAt: time.Now().Add(domain.InvitationTTL),
	}
	if err := u.invitations.Create(ctx, userID, invitation); err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to create invitation: %w", err))
	}

	// Fire and forget: a mail outage must not fail the API call
	if u.mailer != nil && u.mailer.IsConfigured() {
		go func(to string, data email.InvitationEmailData) {
			if err := u.mailer.SendInvitationEmail(to, data); err != nil {
				slog.Error("failed to send invitation email", "error", err, "invitation_id", invitation.ID)
			}
		}(req.Email, email.InvitationEmailData{
			CompanyName: company.Name,
			InviterName: inviter.FullName,
			Role:        string(role),
			AcceptURL:   u.mailer.AcceptURL(token),
			ExpiresAt:   invitation.ExpiresAt,
		})
	}

	return invitation, nil
}

// AcceptInvitation redeems a token for the authenticated user. Expiry is
// checked against the wall clock; the stored status only flips here.
func (u *invitationUsecase) AcceptInvitation(ctx context.Context, userID string, req *domain.AcceptInvitationRequest) (*domain.Invitation, error) {
	if err := requireUser(ctx, userID); err != nil {
		return nil, err
	}
	if err := u.validate.Struct(req); err != nil {
		return nil, apperror.BadRequest("Solicitud inválida: " + err.Error())
	}

	invitation, err := u.invitations.GetByTokenHash(ctx, userID, hashInviteToken(req.Token))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Invitación no encontrada")
		}
		return nil, apperror.Internal(fmt.Errorf("failed to look up invitation: %w", err))
	}

	if !invitation.IsRedeemable(time.Now()) {
		if invitation.Status == domain.InvitationPending {
			// Deadline passed but the row still says pending; persist the flip
			if err := u.invitations.UpdateStatus(ctx, userID, invitation.ID, domain.InvitationExpired); err != nil {
				slog.Error("failed to mark invitation expired", "error", err, "invitation_id", invitation.ID)
			}
			return nil, apperror.Conflict("La invitación expiró")
		}
		return nil, apperror.Conflict("La invitación ya no está disponible")
	}

	if err := u.profiles.SetCompany(ctx, userID, userID, invitation.CompanyID, invitation.Role); err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to attach profile: %w", err))
	}
	if err := u.invitations.UpdateStatus(ctx, userID, invitation.ID, domain.InvitationAccepted); err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to accept invitation: %w", err))
	}

	invitation.Status = domain.InvitationAccepted
	return invitation, nil
}

func (u *invitationUsecase) RevokeInvitation(ctx context.Context, userID, id string) error {
	if err := requireUser(ctx, userID); err != nil {
		return err
	}

	invitation, err := u.invitations.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperror.NotFound("Invitación no encontrada")
		}
		return apperror.Internal(fmt.Errorf("failed to get invitation: %w", err))
	}

	actor, err := u.profiles.GetByID(ctx, userID, userID)
	if err != nil {
		return apperror.Internal(fmt.Errorf("failed to load profile: %w", err))
	}
	if actor.CompanyID == nil || *actor.CompanyID != invitation.CompanyID {
		return apperror.Forbidden("No pertenecés a esta empresa")
	}
	if actor.Role != domain.RoleCorporativo && actor.Role != domain.RoleGerente {
		return apperror.Forbidden("Solo un rol corporativo o gerente puede revocar invitaciones")
	}

	if invitation.Status != domain.InvitationPending {
		return apperror.Conflict("Solo se pueden revocar invitaciones pendientes")
	}

	if err := u.invitations.UpdateStatus(ctx, userID, id, domain.InvitationRevoked); err != nil {
		return apperror.Internal(fmt.Errorf("failed to revoke invitation: %w", err))
	}
	return nil
}

func (u *invitationUsecase) ListCompanyInvitations(ctx context.Context, userID, companyID string) ([]domain.Invitation, error) {
	if err := requireUser(ctx, userID); err != nil {
		return nil, err
	}

	actor, err := u.profiles.GetByID(ctx, userID, userID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to load profile: %w", err))
	}
	if actor.CompanyID == nil || *actor.CompanyID != companyID {
		return nil, apperror.Forbidden("No pertenecés a esta empresa")
	}

	invitations, err := u.invitations.FetchByCompany(ctx, userID, companyID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to list invitations: %w", err))
	}
	return invitations, nil
}

// newInviteToken returns 32 random bytes hex-encoded
func newInviteToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashInviteToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
