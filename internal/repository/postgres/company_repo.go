package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Montinou/stratixV2-sub007/internal/domain"
	"github.com/Montinou/stratixV2-sub007/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type companyRepo struct {
	rls *database.RLSPool
}

func NewCompanyRepository(rls *database.RLSPool) domain.CompanyRepository {
	return &companyRepo{rls: rls}
}

const companyColumns = `id, name, slug, description, industry, size, country, website, logo_url, settings, created_by, version, created_at, updated_at`

func (r *companyRepo) Create(ctx context.Context, userID string, company *domain.Company) error {
	if company.ID == "" {
		company.ID = uuid.NewString()
	}
	company.Version = 1

	settings, err := json.Marshal(orEmptyMap(company.Settings))
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	query := `
		INSERT INTO companies (` + companyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::jsonb, $11, $12, NOW(), NOW())
		RETURNING created_at, updated_at`

	err = r.rls.WithUserContext(ctx, userID, func(ctx context.Context, q database.Querier) error {
		return q.QueryRow(ctx, query,
			company.ID, company.Name, company.Slug, company.Description, company.Industry,
			company.Size, company.Country, company.Website, company.LogoURL, string(settings),
			company.CreatedBy, company.Version,
		).Scan(&company.CreatedAt, &company.UpdatedAt)
	})
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505: unique violation on the slug index
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create company: %w", err)
	}
	return nil
}

func (r *companyRepo) GetByID(ctx context.Context, userID, id string) (*domain.Company, error) {
	return r.getOne(ctx, userID, `SELECT `+companyColumns+` FROM companies WHERE id = $1`, id)
}

func (r *companyRepo) GetBySlug(ctx context.Context, userID, slug string) (*domain.Company, error) {
	return r.getOne(ctx, userID, `SELECT `+companyColumns+` FROM companies WHERE slug = $1`, slug)
}

func (r *companyRepo) getOne(ctx context.Context, userID, query string, arg any) (*domain.Company, error) {
	var company *domain.Company
	err := r.rls.WithUserContext(ctx, userID, func(ctx context.Context, q database.Querier) error {
		var scanErr error
		company, scanErr = scanCompany(q.QueryRow(ctx, query, arg))
		return scanErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return company, nil
}

func (r *companyRepo) Update(ctx context.Context, userID string, company *domain.Company) error {
	settings, err := json.Marshal(orEmptyMap(company.Settings))
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	query := `
		UPDATE companies SET
			name = $3,
			description = $4,
			industry = $5,
			size = $6,
			country = $7,
			website = $8,
			settings = $9::jsonb,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $1 AND version = $2
		RETURNING version, updated_at`

	err = r.rls.WithUserContext(ctx, userID, func(ctx context.Context, q database.Querier) error {
		scanErr := q.QueryRow(ctx, query,
			company.ID, company.Version, company.Name, company.Description, company.Industry,
			company.Size, company.Country, company.Website, string(settings),
		).Scan(&company.Version, &company.UpdatedAt)
		if !errors.Is(scanErr, pgx.ErrNoRows) {
			return scanErr
		}

		var exists bool
		if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM companies WHERE id = $1)`, company.ID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to probe company existence: %w", err)
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
		return fmt.Errorf("failed to update company: %w", err)
	}
	return nil
}

func (r *companyRepo) UpdateLogoURL(ctx context.Context, userID, id, logoURL string) error {
	query := `UPDATE companies SET logo_url = $2, version = version + 1, updated_at = NOW() WHERE id = $1`

	err := r.rls.WithUserContext(ctx, userID, func(ctx context.Context, q database.Querier) error {
		tag, err := q.Exec(ctx, query, id, logoURL)
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
		return fmt.Errorf("failed to update company logo: %w", err)
	}
	return nil
}

func (r *companyRepo) ListMembers(ctx context.Context, userID, companyID string) ([]domain.CompanyMember, error) {
	query := `
		SELECT id, email, full_name, role, created_at
		FROM profiles
		WHERE company_id = $1
		ORDER BY full_name ASC`

	var members []domain.CompanyMember
	err := r.rls.WithUserContext(ctx, userID, func(ctx context.Context, q database.Querier) error {
		rows, err := q.Query(ctx, query, companyID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var m domain.CompanyMember
			if err := rows.Scan(&m.UserID, &m.Email, &m.FullName, &m.Role, &m.JoinedAt); err != nil {
				return err
			}
			members = append(members, m)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list company members: %w", err)
	}
	return members, nil
}

func scanCompany(row pgx.Row) (*domain.Company, error) {
	var company domain.Company
	var settings []byte

	err := row.Scan(
		&company.ID, &company.Name, &company.Slug, &company.Description, &company.Industry,
		&company.Size, &company.Country, &company.Website, &company.LogoURL, &settings,
		&company.CreatedBy, &company.Version, &company.CreatedAt, &company.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &company.Settings); err != nil {
			return nil, fmt.Errorf("failed to decode settings: %w", err)
		}
	}
	return &company, nil
}
