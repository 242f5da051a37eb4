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

type activityRepo struct {
	rls *database.RLSPool
}

func NewActivityRepository(rls *database.RLSPool) domain.ActivityRepository {
	return &activityRepo{rls: rls}
}

const activityColumns = `id, initiative_id, assignee_id, title, done, due_date, version, created_at, updated_at`

func (r *activityRepo) Create(ctx context.Context, userID string, activity *domain.Activity) error {
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}
	activity.Version = 1

	query := `
		INSERT INTO activities (` + activityColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING created_at, updated_at`

	err := r.rls.WithUserContext(ctx, userID, func(ctx context.Context, q database.Querier) error {
		return q.QueryRow(ctx, query,
			activity.ID, activity.InitiativeID, activity.AssigneeID, activity.Title,
			activity.Done, activity.DueDate, activity.Version,
		).Scan(&activity.CreatedAt, &activity.UpdatedAt)
	})
	if err != nil {
		return fmt.Errorf("failed to create activity: %w", err)
	}
	return nil
}

func (r *activityRepo) GetByID(ctx context.Context, userID, id string) (*domain.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE id = $1`

	var activity *domain.Activity
	err := r.rls.WithUserContext(ctx, userID, func(ctx context.Context, q database.Querier) error {
		var scanErr error
		activity, scanErr = scanActivity(q.QueryRow(ctx, query, id))
		return scanErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	return activity, nil
}

func (r *activityRepo) FetchByInitiative(ctx context.Context, userID, initiativeID string) ([]domain.Activity, error) {
	query := `
		SELECT ` + activityColumns + `
		FROM activities
		WHERE initiative_id = $1
		ORDER BY created_at ASC`

	var activities []domain.Activity
	err := r.rls.WithUserContext(ctx, userID, func(ctx context.Context, q database.Querier) error {
		rows, err := q.Query(ctx, query, initiativeID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			activity, err := scanActivity(rows)
			if err != nil {
				return err
			}
			activities = append(activities, *activity)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch activities: %w", err)
	}
	return activities, nil
}

func (r *activityRepo) Update(ctx context.Context, userID string, activity *domain.Activity) error {
	query := `
		UPDATE activities SET
			title = $3,
			done = $4,
			assignee_id = $5,
			due_date = $6,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $1 AND version = $2
		RETURNING version, updated_at`

	err := r.rls.WithUserContext(ctx, userID, func(ctx context.Context, q database.Querier) error {
		scanErr := q.QueryRow(ctx, query,
			activity.ID, activity.Version, activity.Title, activity.Done,
			activity.AssigneeID, activity.DueDate,
		).Scan(&activity.Version, &activity.UpdatedAt)
		if !errors.Is(scanErr, pgx.ErrNoRows) {
			return scanErr
		}

		var exists bool
		if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM activities WHERE id = $1)`, activity.ID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to probe activity existence: %w", err)
		}
		if exists {
			return domain.ErrVersionConflict
		}
		return domain.ErrNotFound
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrVersionConflict) {
			return err
		}
		return fmt.Errorf("failed to update activity: %w", err)
	}
	return nil
}

func (r *activityRepo) Delete(ctx context.Context, userID, id string) error {
	err := r.rls.WithUserContext(ctx, userID, func(ctx context.Context, q database.Querier) error {
		tag, err := q.Exec(ctx, `DELETE FROM activities WHERE id = $1`, id)
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
		return fmt.Errorf("failed to delete activity: %w", err)
	}
	return nil
}

func scanActivity(row pgx.Row) (*domain.Activity, error) {
	var activity domain.Activity
	err := row.Scan(
		&activity.ID, &activity.InitiativeID, &activity.AssigneeID, &activity.Title,
		&activity.Done, &activity.DueDate, &activity.Version,
		&activity.CreatedAt, &activity.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &activity, nil
}
