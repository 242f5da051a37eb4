package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Montinou/stratixV2-sub007/internal/domain"
	"github.com/Montinou/stratixV2-sub007/pkg/database"

	"github.com/jackc/pgx/v5"
)

type profileRepo struct {
	rls *database.RLSPool
}

func NewProfileRepository(rls *database.RLSPool) domain.ProfileRepository {
	return &profileRepo{rls: rls}
}

const profileColumns = `id, email, full_name, job_title, role, company_id, onboarding_completed, preferences, version, created_at, updated_at`

func (r *profileRepo) Create(ctx context.Context, profile *domain.Profile) error {
	preferences, err := json.Marshal(orEmptyMap(profile.Preferences))
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}
	profile.Version = 1

	query := `
		INSERT INTO profiles (` + profileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9, NOW(), NOW())
		RETURNING created_at, updated_at`

	// First touch: the profile owner is also the RLS principal
	err = r.rls.WithUserContext(ctx, profile.ID, func(ctx context.Context, q database.Querier) error {
		return q.QueryRow(ctx, query,
			profile.ID, profile.Email, profile.FullName, profile.JobTitle, profile.Role,
			profile.CompanyID, profile.OnboardingCompleted, string(preferences), profile.Version,
		).Scan(&profile.CreatedAt, &profile.UpdatedAt)
	})
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (r *profileRepo) GetByID(ctx context.Context, userID, id string) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`

	var profile *domain.Profile
	err := r.rls.WithUserContext(ctx, userID, func(ctx context.Context, q database.Querier) error {
		var scanErr error
		profile, scanErr = scanProfile(q.QueryRow(ctx, query, id))
		return scanErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

func (r *profileRepo) GetByEmail(ctx context.Context, userID, email string) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE email = $1`

	var profile *domain.Profile
	err := r.rls.WithUserContext(ctx, userID, func(ctx context.Context, q database.Querier) error {
		var scanErr error
		profile, scanErr = scanProfile(q.QueryRow(ctx, query, email))
		return scanErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile by email: %w", err)
	}
	return profile, nil
}

func (r *profileRepo) Update(ctx context.Context, userID string, profile *domain.Profile) error {
	preferences, err := json.Marshal(orEmptyMap(profile.Preferences))
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	query := `
		UPDATE profiles SET
			full_name = $3,
			job_title = $4,
			preferences = $5::jsonb,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $1 AND version = $2
		RETURNING version, updated_at`

	err = r.rls.WithUserContext(ctx, userID, func(ctx context.Context, q database.Querier) error {
		scanErr := q.QueryRow(ctx, query,
			profile.ID, profile.Version, profile.FullName, profile.JobTitle, string(preferences),
		).Scan(&profile.Version, &profile.UpdatedAt)
		if !errors.Is(scanErr, pgx.ErrNoRows) {
			return scanErr
		}

		var exists bool
		if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM profiles WHERE id = $1)`, profile.ID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to probe profile existence: %w", err)
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
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

func (r *profileRepo) SetCompany(ctx context.Context, userID, profileID, companyID string, role domain.ProfileRole) error {
	query := `
		UPDATE profiles SET
			company_id = $2,
			role = $3,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $1`

	err := r.rls.WithUserContext(ctx, userID, func(ctx context.Context, q database.Querier) error {
		tag, err := q.Exec(ctx, query, profileID, companyID, role)
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
		return fmt.Errorf("failed to set profile company: %w", err)
	}
	return nil
}

func (r *profileRepo) MarkOnboardingCompleted(ctx context.Context, userID, profileID string) error {
	query := `
		UPDATE profiles SET
			onboarding_completed = TRUE,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $1`

	err := r.rls.WithUserContext(ctx, userID, func(ctx context.Context, q database.Querier) error {
		tag, err := q.Exec(ctx, query, profileID)
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
		return fmt.Errorf("failed to mark onboarding completed: %w", err)
	}
	return nil
}

func scanProfile(row pgx.Row) (*domain.Profile, error) {
	var profile domain.Profile
	var preferences []byte

	err := row.Scan(
		&profile.ID, &profile.Email, &profile.FullName, &profile.JobTitle, &profile.Role,
		&profile.CompanyID, &profile.OnboardingCompleted, &preferences, &profile.Version,
		&profile.CreatedAt, &profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(preferences) > 0 {
		if err := json.Unmarshal(preferences, &profile.Preferences); err != nil {
			return nil, fmt.Errorf("failed to decode preferences: %w", err)
		}
	}
	return &profile, nil
}

func orEmptyMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
