package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Montinou/stratixV2-sub007/internal/domain"
	"github.com/Montinou/stratixV2-sub007/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
)

type objectiveRepo struct {
	rls *database.RLSPool
}

func NewObjectiveRepository(rls *database.RLSPool) domain.ObjectiveRepository {
	return &objectiveRepo{rls: rls}
}

const objectiveColumns = `id, company_id, owner_id, title, description, quarter, status, progress, success_metric, tags, version, created_at, updated_at`

func (r *objectiveRepo) Create(ctx context.Context, userID string, objective *domain.Objective) error {
	if objective.ID == "" {
		objective.ID = uuid.NewString()
	}
	objective.Version = 1

	query := `
		INSERT INTO objectives (` + objectiveColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		RETURNING created_at, updated_at`

	err := r.rls.WithUserContext(ctx, userID, func(ctx context.Context, q database.Querier) error {
		return q.QueryRow(ctx, query,
			objective.ID, objective.CompanyID, objective.OwnerID, objective.Title,
			objective.Description, objective.Quarter, objective.Status, objective.Progress,
			objective.SuccessMetric, pq.Array(objective.Tags), objective.Version,
		).Scan(&objective.CreatedAt, &objective.UpdatedAt)
	})
	if err != nil {
		return fmt.Errorf("failed to create objective: %w", err)
	}
	return nil
}

func (r *objectiveRepo) GetByID(ctx context.Context, userID, id string) (*domain.Objective, error) {
	query := `SELECT ` + objectiveColumns + ` FROM objectives WHERE id = $1`

	var objective *domain.Objective
	err := r.rls.WithUserContext(ctx, userID, func(ctx context.Context, q database.Querier) error {
		var scanErr error
		objective, scanErr = scanObjective(q.QueryRow(ctx, query, id))
		return scanErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get objective: %w", err)
	}
	return objective, nil
}

func (r *objectiveRepo) FetchByCompany(ctx context.Context, userID, companyID string, limit, offset int) ([]domain.Objective, int64, error) {
	query := `
		SELECT ` + objectiveColumns + `
		FROM objectives
		WHERE company_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	return r.fetch(ctx, userID, query,
		`SELECT COUNT(*) FROM objectives WHERE company_id = $1`,
		companyID, limit, offset)
}

func (r *objectiveRepo) FetchByOwner(ctx context.Context, userID, ownerID string, limit, offset int) ([]domain.Objective, int64, error) {
	query := `
		SELECT ` + objectiveColumns + `
		FROM objectives
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	return r.fetch(ctx, userID, query,
		`SELECT COUNT(*) FROM objectives WHERE owner_id = $1`,
		ownerID, limit, offset)
}

func (r *objectiveRepo) fetch(ctx context.Context, userID, query, countQuery, key string, limit, offset int) ([]domain.Objective, int64, error) {
	var objectives []domain.Objective
	var total int64

	err := r.rls.WithUserContext(ctx, userID, func(ctx context.Context, q database.Querier) error {
		rows, err := q.Query(ctx, query, key, limit, offset)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			objective, err := scanObjective(rows)
			if err != nil {
				return err
			}
			objectives = append(objectives, *objective)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		return q.QueryRow(ctx, countQuery, key).Scan(&total)
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch objectives: %w", err)
	}
	return objectives, total, nil
}

func (r *objectiveRepo) Update(ctx context.Context, userID string, objective *domain.Objective) error {
	query := `
		UPDATE objectives SET
			title = $3,
			description = $4,
			quarter = $5,
			status = $6,
			success_metric = $7,
			tags = $8,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $1 AND version = $2
		RETURNING version, updated_at`

	err := r.rls.WithUserContext(ctx, userID, func(ctx context.Context, q database.Querier) error {
		scanErr := q.QueryRow(ctx, query,
			objective.ID, objective.Version, objective.Title, objective.Description,
			objective.Quarter, objective.Status, objective.SuccessMetric, pq.Array(objective.Tags),
		).Scan(&objective.Version, &objective.UpdatedAt)
		if !errors.Is(scanErr, pgx.ErrNoRows) {
			return scanErr
		}

		var exists bool
		if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM objectives WHERE id = $1)`, objective.ID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to probe objective existence: %w", err)
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
		return fmt.Errorf("failed to update objective: %w", err)
	}
	return nil
}

func (r *objectiveRepo) Delete(ctx context.Context, userID, id string) error {
	err := r.rls.WithUserContext(ctx, userID, func(ctx context.Context, q database.Querier) error {
		tag, err := q.Exec(ctx, `DELETE FROM objectives WHERE id = $1`, id)
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
		return fmt.Errorf("failed to delete objective: %w", err)
	}
	return nil
}

// RecomputeProgress rolls initiative progress up into the objective. GREATEST
// keeps the stored value as a floor so rollups never move progress backward.
func (r *objectiveRepo) RecomputeProgress(ctx context.Context, userID, id string) (int, error) {
	query := `
		UPDATE objectives SET
			progress = GREATEST(progress, (
				SELECT COALESCE(ROUND(AVG(progress)), 0)::int
				FROM initiatives
				WHERE objective_id = $1
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
		return 0, fmt.Errorf("failed to recompute objective progress: %w", err)
	}
	return progress, nil
}

func scanObjective(row pgx.Row) (*domain.Objective, error) {
	var objective domain.Objective
	err := row.Scan(
		&objective.ID, &objective.CompanyID, &objective.OwnerID, &objective.Title,
		&objective.Description, &objective.Quarter, &objective.Status, &objective.Progress,
		&objective.SuccessMetric, pq.Array(&objective.Tags), &objective.Version,
		&objective.CreatedAt, &objective.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &objective, nil
}
