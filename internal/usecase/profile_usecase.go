package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/Montinou/stratixV2-sub007/internal/domain"
	"github.com/Montinou/stratixV2-sub007/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

type profileUsecase struct {
	profiles domain.ProfileRepository
	validate *validator.Validate
}

func NewProfileUsecase(profiles domain.ProfileRepository, validate *validator.Validate) domain.ProfileUsecase {
	return &profileUsecase{
		profiles: profiles,
		validate: validate,
	}
}

// EnsureProfile creates the profile row on a user's first authenticated touch
// and returns the existing one afterwards. Called from the auth middleware, so
// it must stay cheap on the hot path.
func (u *profileUsecase) EnsureProfile(ctx context.Context, profile *domain.Profile) (*domain.Profile, error) {
	existing, err := u.profiles.GetByID(ctx, profile.ID, profile.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up profile: %w", err)
	}

	if profile.Role == "" {
		profile.Role = domain.RoleEmpleado
	}
	if err := u.profiles.Create(ctx, profile); err != nil {
		// Lost a creation race against a concurrent request for the same user
		if errors.Is(err, domain.ErrAlreadyExists) {
			return u.profiles.GetByID(ctx, profile.ID, profile.ID)
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return profile, nil
}

func (u *profileUsecase) GetProfile(ctx context.Context, userID, id string) (*domain.Profile, error) {
	ctxUserID, ok := ctx.Value(domain.KeyUserID).(string)
	if !ok || ctxUserID == "" {
		return nil, apperror.Unauthorized("Usuario no autenticado")
	}

	profile, err := u.profiles.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Perfil no encontrado")
		}
		return nil, apperror.Internal(fmt.Errorf("failed to get profile: %w", err))
	}
	return profile, nil
}

func (u *profileUsecase) UpdateProfile(ctx context.Context, userID, id string, req *domain.UpdateProfileRequest) (*domain.Profile, error) {
	if err := requireUser(ctx, userID); err != nil {
		return nil, err
	}
	if userID != id {
		return nil, apperror.Forbidden("Solo podés editar tu propio perfil")
	}
	if err := u.validate.Struct(req); err != nil {
		return nil, apperror.BadRequest("Solicitud inválida: " + err.Error())
	}

	profile, err := u.profiles.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Perfil no encontrado")
		}
		return nil, apperror.Internal(fmt.Errorf("failed to get profile: %w", err))
	}

	if req.FullName != nil {
		profile.FullName = *req.FullName
	}
	if req.JobTitle != nil {
		profile.JobTitle = req.JobTitle
	}
	if req.Preferences != nil {
		profile.Preferences = req.Preferences
	}
	profile.Version = req.Version

	if err := u.profiles.Update(ctx, userID, profile); err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			return nil, apperror.Conflict("El perfil fue modificado por otra solicitud; recargá y volvé a intentar")
		}
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Perfil no encontrado")
		}
		return nil, apperror.Internal(fmt.Errorf("failed to update profile: %w", err))
	}
	return profile, nil
}

// AssignRole changes another member's role. Only corporativo actors in the
// same company may do this.
func (u *profileUsecase) AssignRole(ctx context.Context, userID, targetID string, role domain.ProfileRole) error {
	if err := requireUser(ctx, userID); err != nil {
		return err
	}
	if !role.IsValid() {
		return apperror.BadRequest("Rol inválido: " + string(role))
	}

	actor, err := u.profiles.GetByID(ctx, userID, userID)
	if err != nil {
		return apperror.Internal(fmt.Errorf("failed to load actor profile: %w", err))
	}
	if actor.Role != domain.RoleCorporativo {
		return apperror.Forbidden("Solo un rol corporativo puede asignar roles")
	}

	target, err := u.profiles.GetByID(ctx, userID, targetID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperror.NotFound("Perfil no encontrado")
		}
		return apperror.Internal(fmt.Errorf("failed to load target profile: %w", err))
	}
	if actor.CompanyID == nil || target.CompanyID == nil || *actor.CompanyID != *target.CompanyID {
		return apperror.Forbidden("El perfil pertenece a otra empresa")
	}

	if err := u.profiles.SetCompany(ctx, userID, targetID, *target.CompanyID, role); err != nil {
		return apperror.Internal(fmt.Errorf("failed to assign role: %w", err))
	}
	return nil
}
