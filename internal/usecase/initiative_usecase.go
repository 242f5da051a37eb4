package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/Montinou/stratixV2-sub007/internal/domain"
	"github.com/Montinou/stratixV2-sub007/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

type initiativeUsecase struct {
	initiatives domain.InitiativeRepository
	objectives  domain.ObjectiveRepository
	profiles    domain.ProfileRepository
	validate    *validator.Validate
}

func NewInitiativeUsecase(
	initiatives domain.InitiativeRepository,
	objectives domain.ObjectiveRepository,
	profiles domain.ProfileRepository,
	validate *validator.Validate,
) domain.InitiativeUsecase {
	return &initiativeUsecase{
		initiatives: initiatives,
		objectives:  objectives,
		profiles:    profiles,
		validate:    validate,
	}
}

func (u *initiativeUsecase) CreateInitiative(ctx context.Context, userID string, req *domain.CreateInitiativeRequest) (*domain.Initiative, error) {
	if err := requireUser(ctx, userID); err != nil {
		return nil, err
	}
	if err := u.validate.Struct(req); err != nil {
		return nil, apperror.BadRequest("Solicitud inválida: " + err.Error())
	}

	// Parent must exist and be visible to the caller
	if _, err := u.objectives.GetByID(ctx, userID, req.ObjectiveID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Objetivo no encontrado")
		}
		return nil, apperror.Internal(fmt.Errorf("failed to get objective: %w", err))
	}

	initiative := &domain.Initiative{
		ObjectiveID: req.ObjectiveID,
		OwnerID:     userID,
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.InitiativePlanning,
		DueDate:     req.DueDate,
	}
	if err := u.initiatives.Create(ctx, userID, initiative); err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to create initiative: %w", err))
	}
	return initiative, nil
}

func (u *initiativeUsecase) GetInitiative(ctx context.Context, userID, id string) (*domain.Initiative, error) {
	if err := requireUser(ctx, userID); err != nil {
		return nil, err
	}
	return u.loadInitiative(ctx, userID, id)
}

func (u *initiativeUsecase) ListByObjective(ctx context.Context, userID, objectiveID string) ([]domain.Initiative, error) {
	if err := requireUser(ctx, userID); err != nil {
		return nil, err
	}

	initiatives, err := u.initiatives.FetchByObjective(ctx, userID, objectiveID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to list initiatives: %w", err))
	}
	return initiatives, nil
}

func (u *initiativeUsecase) UpdateInitiative(ctx context.Context, userID, id string, req *domain.UpdateInitiativeRequest) (*domain.Initiative, error) {
	if err := requireUser(ctx, userID); err != nil {
		return nil, err
	}
	if err := u.validate.Struct(req); err != nil {
		return nil, apperror.BadRequest("Solicitud inválida: " + err.Error())
	}

	initiative, err := u.loadInitiative(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := u.requireCanModify(ctx, userID, initiative.OwnerID); err != nil {
		return nil, err
	}

	if req.Title != nil {
		initiative.Title = *req.Title
	}
	if req.Description != nil {
		initiative.Description = req.Description
	}
	if req.Status != nil {
		status := domain.InitiativeStatus(*req.Status)
		if !status.IsValid() {
			return nil, apperror.BadRequest("Estado inválido: " + *req.Status)
		}
		initiative.Status = status
	}
	if req.DueDate != nil {
		initiative.DueDate = req.DueDate
	}
	initiative.Version = req.Version

	if err := u.initiatives.Update(ctx, userID, initiative); err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			return nil, apperror.Conflict("La iniciativa fue modificada por otra solicitud; recargá y volvé a intentar")
		}
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Iniciativa no encontrada")
		}
		return nil, apperror.Internal(fmt.Errorf("failed to update initiative: %w", err))
	}

	// A status change can move the parent's rollup
	if _, err := u.objectives.RecomputeProgress(ctx, userID, initiative.ObjectiveID); err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to roll up objective progress: %w", err))
	}
	return initiative, nil
}

func (u *initiativeUsecase) DeleteInitiative(ctx context.Context, userID, id string) error {
	if err := requireUser(ctx, userID); err != nil {
		return err
	}

	initiative, err := u.loadInitiative(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := u.requireCanModify(ctx, userID, initiative.OwnerID); err != nil {
		return err
	}

	if err := u.initiatives.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperror.NotFound("Iniciativa no encontrada")
		}
		return apperror.Internal(fmt.Errorf("failed to delete initiative: %w", err))
	}

	if _, err := u.objectives.RecomputeProgress(ctx, userID, initiative.ObjectiveID); err != nil {
		return apperror.Internal(fmt.Errorf("failed to roll up objective progress: %w", err))
	}
	return nil
}

func (u *initiativeUsecase) loadInitiative(ctx context.Context, userID, id string) (*domain.Initiative, error) {
	initiative, err := u.initiatives.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Iniciativa no encontrada")
		}
		return nil, apperror.Internal(fmt.Errorf("failed to get initiative: %w", err))
	}
	return initiative, nil
}

func (u *initiativeUsecase) requireCanModify(ctx context.Context, userID, ownerID string) error {
	if userID == ownerID {
		return nil
	}
	profile, err := u.profiles.GetByID(ctx, userID, userID)
	if err != nil {
		return apperror.Internal(fmt.Errorf("failed to load profile: %w", err))
	}
	if profile.Role == domain.RoleCorporativo || profile.Role == domain.RoleGerente {
		return nil
	}
	return apperror.Forbidden("Solo el responsable o un gerente puede modificar este elemento")
}
