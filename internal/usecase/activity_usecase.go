package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/Montinou/stratixV2-sub007/internal/domain"
	"github.com/Montinou/stratixV2-sub007/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

type activityUsecase struct {
	activities  domain.ActivityRepository
	initiatives domain.InitiativeRepository
	objectives  domain.ObjectiveRepository
	validate    *validator.Validate
}

func NewActivityUsecase(
	activities domain.ActivityRepository,
	initiatives domain.InitiativeRepository,
	objectives domain.ObjectiveRepository,
	validate *validator.Validate,
) domain.ActivityUsecase {
	return &activityUsecase{
		activities:  activities,
		initiatives: initiatives,
		objectives:  objectives,
		validate:    validate,
	}
}

func (u *activityUsecase) CreateActivity(ctx context.Context, userID string, req *domain.CreateActivityRequest) (*domain.Activity, error) {
	if err := requireUser(ctx, userID); err != nil {
		return nil, err
	}
	if err := u.validate.Struct(req); err != nil {
		return nil, apperror.BadRequest("Solicitud inválida: " + err.Error())
	}

	if _, err := u.initiatives.GetByID(ctx, userID, req.InitiativeID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Iniciativa no encontrada")
		}
		return nil, apperror.Internal(fmt.Errorf("failed to get initiative: %w", err))
	}

	activity := &domain.Activity{
		InitiativeID: req.InitiativeID,
		AssigneeID:   req.AssigneeID,
		Title:        req.Title,
		DueDate:      req.DueDate,
	}
	if err := u.activities.Create(ctx, userID, activity); err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to create activity: %w", err))
	}

	if err := u.rollUp(ctx, userID, activity.InitiativeID); err != nil {
		return nil, err
	}
	return activity, nil
}

func (u *activityUsecase) ListByInitiative(ctx context.Context, userID, initiativeID string) ([]domain.Activity, error) {
	if err := requireUser(ctx, userID); err != nil {
		return nil, err
	}

	activities, err := u.activities.FetchByInitiative(ctx, userID, initiativeID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to list activities: %w", err))
	}
	return activities, nil
}

func (u *activityUsecase) UpdateActivity(ctx context.Context, userID, id string, req *domain.UpdateActivityRequest) (*domain.Activity, error) {
	if err := requireUser(ctx, userID); err != nil {
		return nil, err
	}
	if err := u.validate.Struct(req); err != nil {
		return nil, apperror.BadRequest("Solicitud inválida: " + err.Error())
	}

	activity, err := u.activities.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Actividad no encontrada")
		}
		return nil, apperror.Internal(fmt.Errorf("failed to get activity: %w", err))
	}

	if req.Title != nil {
		activity.Title = *req.Title
	}
	if req.Done != nil {
		activity.Done = *req.Done
	}
	if req.AssigneeID != nil {
		activity.AssigneeID = req.AssigneeID
	}
	if req.DueDate != nil {
		activity.DueDate = req.DueDate
	}
	activity.Version = req.Version

	if err := u.activities.Update(ctx, userID, activity); err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			return nil, apperror.Conflict("La actividad fue modificada por otra solicitud; recargá y volvé a intentar")
		}
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Actividad no encontrada")
		}
		return nil, apperror.Internal(fmt.Errorf("failed to update activity: %w", err))
	}

	if err := u.rollUp(ctx, userID, activity.InitiativeID); err != nil {
		return nil, err
	}
	return activity, nil
}

func (u *activityUsecase) DeleteActivity(ctx context.Context, userID, id string) error {
	if err := requireUser(ctx, userID); err != nil {
		return err
	}

	activity, err := u.activities.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperror.NotFound("Actividad no encontrada")
		}
		return apperror.Internal(fmt.Errorf("failed to get activity: %w", err))
	}

	if err := u.activities.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperror.NotFound("Actividad no encontrada")
		}
		return apperror.Internal(fmt.Errorf("failed to delete activity: %w", err))
	}
	return u.rollUp(ctx, userID, activity.InitiativeID)
}

// rollUp recomputes initiative progress from its activities and then the
// parent objective from its initiatives
func (u *activityUsecase) rollUp(ctx context.Context, userID, initiativeID string) error {
	if _, err := u.initiatives.RecomputeProgress(ctx, userID, initiativeID); err != nil {
		return apperror.Internal(fmt.Errorf("failed to roll up initiative progress: %w", err))
	}
	initiative, err := u.initiatives.GetByID(ctx, userID, initiativeID)
	if err != nil {
		return apperror.Internal(fmt.Errorf("failed to get initiative: %w", err))
	}
	if _, err := u.objectives.RecomputeProgress(ctx, userID, initiative.ObjectiveID); err != nil {
		return apperror.Internal(fmt.Errorf("failed to roll up objective progress: %w", err))
	}
	return nil
}
