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

type initiativeRepo struct {
	rls *database.RLSPool
}

func NewInitiativeRepository(rls *database.RLSPool) domain.InitiativeRepository {
	return &initiativeRepo{rls: rls}
}

const initiativeColumns = `id, objective_id, owner_id, title, description, status, progress, due_date, version, created_at, updated_at`

func (r *initiativeRepo) Create(ctx context.Context, userID string, initiative *domain.Initiative) error {
	if initiative.ID == "" {
		initiative.ID = uuid.NewString()
	}
	initiative.Version = 1

	query := `
		INSERT INTO initiatives (` + initiativeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING created_at, updated_at`

	err := r.rls.WithUserContext(ctx, userID, func(ctx context.Context, q database.Querier) error {
		return q.QueryRow(ctx, query,
			initiative.ID, initiative.ObjectiveID, initiative.OwnerID, initiative.Title,
			initiative.Description, initiative.Status, initiative.Progress, initiative.DueDate,
			initiative.Version,
		).Scan(&initiative.CreatedAt, &initiative.UpdatedAt)
	})
	if err != nil {
		return fmt.Errorf("failed to create initiative: %w", err)
	}
	return nil
}

func (r *initiativeRepo) GetByID(ctx context.Context, userID, id string) (*domain.Initiative, error) {
	query := `SELECT ` + initiativeColumns + ` FROM initiatives WHERE id = $1`

	var initiative *domain.Initiative
	err := r.rls.WithUserContext(ctx, userID, func(ctx context.Context, q database.Querier) error {
		var scanErr error
		initiative, scanErr = scanInitiative(q.QueryRow(ctx, query, id))
		return scanErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get initiative: %w", err)
	}
	return initiative, nil
}

func (r *initiativeRepo) FetchByObjective(ctx context.Context, userID, objectiveID string) ([]domain.Initiative, error) {
	query := `
		SELECT ` + initiativeColumns + `
		FROM initiatives
		WHERE objective_id = $1
		ORDER BY created_at ASC`

	var initiatives []domain.Initiative
	err := r.rls.WithUserContext(ctx, userID, func(ctx context.Context, q database.Querier) error {
		rows, err := q.Query(ctx, query, objectiveID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			initiative, err := scanInitiative(rows)
			if err != nil {
				return err
			}
			initiatives = append(initiatives, *initiative)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch initiatives: %w", err)
	}
	return initiatives, nil
}

func (r *initiativeRepo) Update(ctx context.Context, userID string, initiative *domain.Initiative) error {
	query := `
		UPDATE initiatives SET
			title = $3,
			description = $4,
			status = $5,
			due_date = $6,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $1 AND version = $2
		RETURNING version, updated_at`

	err := r.rls.WithUserContext(ctx, userID, func(ctx context.Context, q database.Querier) error {
		scanErr := q.QueryRow(ctx, query,
			initiative.ID, initiative.Version, initiative.Title, initiative.Description,
			initiative.Status, initiative.DueDate,
		).Scan(&initiative.Version, &initiative.UpdatedAt)
		if !errors.Is(scanErr, pgx.ErrNoRows) {
			return scanErr
		}

		var exists bool
		if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM initiatives WHERE id = $1)`, initiative.ID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to probe initiative existence: %w", err)
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
		return fmt.Errorf("failed to update initiative: %w", err)
	}
	return nil
}

func (r *initiativeRepo) Delete(ctx context.Context, userID, id string) error {
	err := r.rls.WithUserContext(ctx, userID, func(ctx context.Context, q database.Querier) error {
		tag, err := q.Exec(ctx, `DELETE FROM initiatives WHERE id = $1`, id)
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
		return fmt.Errorf("failed to delete initiative: %w", err)
	}
	return nil
}

// RecomputeProgress derives initiative progress from the share of done
// activities, keeping the stored value as a floor
func (r *initiativeRepo) RecomputeProgress(ctx context.Context, userID, id string) (int, error) {
	query := `
		UPDATE initiatives SET
			progress = GREATEST(progress, (
				SELECT CASE WHEN COUNT(*) = 0 THEN 0
				            ELSE ROUND(100.0 * COUNT(*) FILTER (WHERE done) / COUNT(*)) END::int
				FROM activities
				WHERE initiative_id = $1
			)),
			updated_at = NOW()
		WHERE id = $1
		RETURNING progress`

	var progress int
	err := r.rls.WithUserContext(ctx, userID, func(ctx context.Context, q database.Querier) error {
		return q.QueryRow(ctx, query, id).Scan(&progress)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("failed to recompute initiative progress: %w", err)
	}
	return progress, nil
}

func scanInitiative(row pgx.Row) (*domain.Initiative, error) {
	var initiative domain.Initiative
	err := row.Scan(
		&initiative.ID, &initiative.ObjectiveID, &initiative.OwnerID, &initiative.Title,
		&initiative.Description, &initiative.Status, &initiative.Progress, &initiative.DueDate,
		&initiative.Version, &initiative.CreatedAt, &initiative.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &initiative, nil
}
