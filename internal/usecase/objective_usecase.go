package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/Montinou/stratixV2-sub007/internal/domain"
	"github.com/Montinou/stratixV2-sub007/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type objectiveUsecase struct {
	objectives domain.ObjectiveRepository
	profiles   domain.ProfileRepository
	validate   *validator.Validate
}

func NewObjectiveUsecase(
	objectives domain.ObjectiveRepository,
	profiles domain.ProfileRepository,
	validate *validator.Validate,
) domain.ObjectiveUsecase {
	return &objectiveUsecase{
		objectives: objectives,
		profiles:   profiles,
		validate:   validate,
	}
}

func (u *objectiveUsecase) CreateObjective(ctx context.Context, userID string, req *domain.CreateObjectiveRequest) (*domain.Objective, error) {
	if err := requireUser(ctx, userID); err != nil {
		return nil, err
	}
	if err := u.validate.Struct(req); err != nil {
		return nil, apperror.BadRequest("Solicitud inválida: " + err.Error())
	}

	profile, err := u.profiles.GetByID(ctx, userID, userID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to load profile: %w", err))
	}
	if profile.CompanyID == nil {
		return nil, apperror.Conflict("Necesitás pertenecer a una empresa para crear objetivos")
	}

	objective := &domain.Objective{
		CompanyID:     *profile.CompanyID,
		OwnerID:       userID,
		Title:         req.Title,
		Description:   req.Description,
		Quarter:       req.Quarter,
		Status:        domain.ObjectiveDraft,
		SuccessMetric: req.SuccessMetric,
		Tags:          req.Tags,
	}
	if err := u.objectives.Create(ctx, userID, objective); err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to create objective: %w", err))
	}
	return objective, nil
}

func (u *objectiveUsecase) GetObjective(ctx context.Context, userID, id string) (*domain.Objective, error) {
	if err := requireUser(ctx, userID); err != nil {
		return nil, err
	}
	return u.loadObjective(ctx, userID, id)
}

func (u *objectiveUsecase) ListCompanyObjectives(ctx context.Context, userID, companyID string, page, pageSize int) ([]domain.Objective, int64, error) {
	if err := requireUser(ctx, userID); err != nil {
		return nil, 0, err
	}

	profile, err := u.profiles.GetByID(ctx, userID, userID)
	if err != nil {
		return nil, 0, apperror.Internal(fmt.Errorf("failed to load profile: %w", err))
	}
	if profile.CompanyID == nil || *profile.CompanyID != companyID {
		return nil, 0, apperror.Forbidden("No pertenecés a esta empresa")
	}

	limit, offset := pageBounds(page, pageSize)
	objectives, total, err := u.objectives.FetchByCompany(ctx, userID, companyID, limit, offset)
	if err != nil {
		return nil, 0, apperror.Internal(fmt.Errorf("failed to list objectives: %w", err))
	}
	return objectives, total, nil
}

func (u *objectiveUsecase) ListMyObjectives(ctx context.Context, userID string, page, pageSize int) ([]domain.Objective, int64, error) {
	if err := requireUser(ctx, userID); err != nil {
		return nil, 0, err
	}

	limit, offset := pageBounds(page, pageSize)
	objectives, total, err := u.objectives.FetchByOwner(ctx, userID, userID, limit, offset)
	if err != nil {
		return nil, 0, apperror.Internal(fmt.Errorf("failed to list objectives: %w", err))
	}
	return objectives, total, nil
}

func (u *objectiveUsecase) UpdateObjective(ctx context.Context, userID, id string, req *domain.UpdateObjectiveRequest) (*domain.Objective, error) {
	if err := requireUser(ctx, userID); err != nil {
		return nil, err
	}
	if err := u.validate.Struct(req); err != nil {
		return nil, apperror.BadRequest("Solicitud inválida: " + err.Error())
	}

	objective, err := u.loadObjective(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := u.requireCanModify(ctx, userID, objective.OwnerID); err != nil {
		return nil, err
	}

	if req.Title != nil {
		objective.Title = *req.Title
	}
	if req.Description != nil {
		objective.Description = *req.Description
	}
	if req.Quarter != nil {
		objective.Quarter = *req.Quarter
	}
	if req.Status != nil {
		status := domain.ObjectiveStatus(*req.Status)
		if !status.IsValid() {
			return nil, apperror.BadRequest("Estado inválido: " + *req.Status)
		}
		objective.Status = status
	}
	if req.SuccessMetric != nil {
		objective.SuccessMetric = req.SuccessMetric
	}
	if req.Tags != nil {
		objective.Tags = req.Tags
	}
	objective.Version = req.Version

	if err := u.objectives.Update(ctx, userID, objective); err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			return nil, apperror.Conflict("El objetivo fue modificado por otra solicitud; recargá y volvé a intentar")
		}
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Objetivo no encontrado")
		}
		return nil, apperror.Internal(fmt.Errorf("failed to update objective: %w", err))
	}
	return objective, nil
}

func (u *objectiveUsecase) DeleteObjective(ctx context.Context, userID, id string) error {
	if err := requireUser(ctx, userID); err != nil {
		return err
	}

	objective, err := u.loadObjective(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := u.requireCanModify(ctx, userID, objective.OwnerID); err != nil {
		return err
	}

	if err := u.objectives.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperror.NotFound("Objetivo no encontrado")
		}
		return apperror.Internal(fmt.Errorf("failed to delete objective: %w", err))
	}
	return nil
}

func (u *objectiveUsecase) loadObjective(ctx context.Context, userID, id string) (*domain.Objective, error) {
	objective, err := u.objectives.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Objetivo no encontrado")
		}
		return nil, apperror.Internal(fmt.Errorf("failed to get objective: %w", err))
	}
	return objective, nil
}

// requireCanModify allows the owner, or a corporativo/gerente member of the
// same company, to mutate OKR rows
func (u *objectiveUsecase) requireCanModify(ctx context.Context, userID, ownerID string) error {
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

// pageBounds normalizes page/pageSize into limit/offset
func pageBounds(page, pageSize int) (limit, offset int) {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	if page < 1 {
		page = 1
	}
	return pageSize, (page - 1) * pageSize
}
