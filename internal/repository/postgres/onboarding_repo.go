package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Montinou/stratixV2-sub007/internal/domain"
	"github.com/Montinou/stratixV2-sub007/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type onboardingRepo struct {
	rls *database.RLSPool
}

func NewOnboardingRepository(rls *database.RLSPool) domain.OnboardingRepository {
	return &onboardingRepo{rls: rls}
}

const sessionColumns = `id, user_id, status, current_step, total_steps, completion_percentage, form_data, ai_analysis, version, expires_at, created_at, updated_at`

const progressColumns = `id, session_id, step_number, step_name, step_data, completed, skipped, completion_time, version, created_at`

// ============================================================================
// Session Store
// ============================================================================

func (r *onboardingRepo) CreateSession(ctx context.Context, userID string, totalSteps int) (*domain.OnboardingSession, error) {
	session := &domain.OnboardingSession{
		ID:                   uuid.NewString(),
		UserID:               userID,
		Status:               domain.SessionInProgress,
		CurrentStep:          1,
		TotalSteps:           totalSteps,
		CompletionPercentage: 0,
		FormData:             map[string]domain.StepData{},
		Version:              1,
		ExpiresAt:            time.Now().Add(domain.SessionTTL),
	}

	query := `
		INSERT INTO onboarding_sessions (` + sessionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, '{}'::jsonb, '{}'::jsonb, $7, $8, NOW(), NOW())
		RETURNING created_at, updated_at`

	err := r.rls.WithUserContext(ctx, userID, func(ctx context.Context, q database.Querier) error {
		return q.QueryRow(ctx, query,
			session.ID, session.UserID, session.Status, session.CurrentStep,
			session.TotalSteps, session.CompletionPercentage, session.Version, session.ExpiresAt,
		).Scan(&session.CreatedAt, &session.UpdatedAt)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create onboarding session: %w", err)
	}

	return session, nil
}

func (r *onboardingRepo) GetSession(ctx context.Context, userID, sessionID string) (*domain.OnboardingSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM onboarding_sessions WHERE id = $1`

	var session *domain.OnboardingSession
	err := r.rls.WithUserContext(ctx, userID, func(ctx context.Context, q database.Querier) error {
		var scanErr error
		session, scanErr = scanSession(q.QueryRow(ctx, query, sessionID))
		return scanErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get onboarding session: %w", err)
	}

	return session, nil
}

func (r *onboardingRepo) GetActiveSessionByUser(ctx context.Context, userID string) (*domain.OnboardingSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM onboarding_sessions
		WHERE user_id = $1 AND status = $2
		ORDER BY created_at DESC
		LIMIT 1`

	var session *domain.OnboardingSession
	err := r.rls.WithUserContext(ctx, userID, func(ctx context.Context, q database.Querier) error {
		var scanErr error
		session, scanErr = scanSession(q.QueryRow(ctx, query, userID, domain.SessionInProgress))
		return scanErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get active session: %w", err)
	}

	return session, nil
}

func (r *onboardingRepo) GetLatestSessionByUser(ctx context.Context, userID string) (*domain.OnboardingSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM onboarding_sessions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1`

	var session *domain.OnboardingSession
	err := r.rls.WithUserContext(ctx, userID, func(ctx context.Context, q database.Querier) error {
		var scanErr error
		session, scanErr = scanSession(q.QueryRow(ctx, query, userID))
		return scanErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get latest session: %w", err)
	}

	return session, nil
}

func (r *onboardingRepo) GetSessionWithProgress(ctx context.Context, userID, sessionID string) (*domain.SessionWithProgress, error) {
	sessionQuery := `SELECT ` + sessionColumns + ` FROM onboarding_sessions WHERE id = $1`
	progressQuery := `
		SELECT ` + progressColumns + `
		FROM onboarding_progress
		WHERE session_id = $1
		ORDER BY step_number ASC`

	result := &domain.SessionWithProgress{}
	err := r.rls.WithUserContext(ctx, userID, func(ctx context.Context, q database.Querier) error {
		session, err := scanSession(q.QueryRow(ctx, sessionQuery, sessionID))
		if err != nil {
			return err
		}
		result.Session = session

		rows, err := q.Query(ctx, progressQuery, sessionID)
		if err != nil {
			return fmt.Errorf("failed to query progress rows: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			progress, err := scanProgress(rows)
			if err != nil {
				return err
			}
			result.Progress = append(result.Progress, *progress)
		}
		return rows.Err()
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session with progress: %w", err)
	}

	return result, nil
}

func (r *onboardingRepo) UpdateSession(ctx context.Context, userID, sessionID string, expectedVersion int64, update domain.SessionUpdate) (*domain.OnboardingSession, error) {
	var stepDataJSON, aiAnalysisJSON *string
	if update.StepName != "" {
		raw, err := json.Marshal(update.StepFormData)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal step form data: %w", err)
		}
		s := string(raw)
		stepDataJSON = &s
	}
	if update.AIAnalysis != nil {
		raw, err := json.Marshal(update.AIAnalysis)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal ai analysis: %w", err)
		}
		s := string(raw)
		aiAnalysisJSON = &s
	}

	var stepName *string
	if update.StepName != "" {
		stepName = &update.StepName
	}

	// completion_percentage is written through GREATEST so the stored value
	// acts as a floor and can never decrease. form_data gets a shallow
	// per-step overwrite, never a deep merge.
	query := `
		UPDATE onboarding_sessions SET
			status = COALESCE($3, status),
			current_step = COALESCE($4, current_step),
			completion_percentage = GREATEST(completion_percentage, COALESCE($5, completion_percentage)),
			form_data = CASE WHEN $6::text IS NULL THEN form_data
			                 ELSE jsonb_set(form_data, ARRAY[$6::text], $7::jsonb, true) END,
			ai_analysis = COALESCE($8::jsonb, ai_analysis),
			expires_at = COALESCE($9, expires_at),
			version = version + 1,
			updated_at = NOW()
		WHERE id = $1 AND version = $2
		RETURNING ` + sessionColumns

	var session *domain.OnboardingSession
	err := r.rls.WithUserContext(ctx, userID, func(ctx context.Context, q database.Querier) error {
		var scanErr error
		session, scanErr = scanSession(q.QueryRow(ctx, query,
			sessionID, expectedVersion,
			statusPtr(update.Status), update.CurrentStep, update.CompletionPercentage,
			stepName, stepDataJSON, aiAnalysisJSON, update.ExpiresAt,
		))
		if !errors.Is(scanErr, pgx.ErrNoRows) {
			return scanErr
		}

		// Zero rows: stale version or missing row. Probe to tell them apart.
		var exists bool
		if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM onboarding_sessions WHERE id = $1)`, sessionID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to probe session existence: %w", err)
		}
		if exists {
			return domain.ErrVersionConflict
		}
		return domain.ErrNotFound
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrVersionConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update onboarding session: %w", err)
	}

	return session, nil
}

// ============================================================================
// Step Progress Tracker
// ============================================================================

func (r *onboardingRepo) GetStep(ctx context.Context, userID, sessionID string, stepNumber int) (*domain.OnboardingProgress, error) {
	query := `SELECT ` + progressColumns + ` FROM onboarding_progress WHERE session_id = $1 AND step_number = $2`

	var progress *domain.OnboardingProgress
	err := r.rls.WithUserContext(ctx, userID, func(ctx context.Context, q database.Querier) error {
		var scanErr error
		progress, scanErr = scanProgress(q.QueryRow(ctx, query, sessionID, stepNumber))
		return scanErr
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get step progress: %w", err)
	}

	return progress, nil
}

func (r *onboardingRepo) CreateStep(ctx context.Context, userID string, progress *domain.OnboardingProgress) error {
	if progress.ID == "" {
		progress.ID = uuid.NewString()
	}
	progress.Version = 1

	stepDataJSON, err := json.Marshal(progress.StepData)
	if err != nil {
		return fmt.Errorf("failed to marshal step data: %w", err)
	}

	query := `
		INSERT INTO onboarding_progress (` + progressColumns + `)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7,
		        CASE WHEN $6 OR $7 THEN NOW() ELSE NULL END,
		        $8, NOW())
		RETURNING completion_time, created_at`

	err = r.rls.WithUserContext(ctx, userID, func(ctx context.Context, q database.Querier) error {
		return q.QueryRow(ctx, query,
			progress.ID, progress.SessionID, progress.StepNumber, progress.StepName,
			string(stepDataJSON), progress.Completed, progress.Skipped, progress.Version,
		).Scan(&progress.CompletionTime, &progress.CreatedAt)
	})
	if err != nil {
		return fmt.Errorf("failed to create step progress: %w", err)
	}

	return nil
}

func (r *onboardingRepo) UpdateStep(ctx context.Context, userID, sessionID string, stepNumber int, expectedVersion int64, update domain.StepUpdate) (*domain.OnboardingProgress, error) {
	var stepDataJSON *string
	if update.StepData != nil {
		raw, err := json.Marshal(update.StepData)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal step data: %w", err)
		}
		s := string(raw)
		stepDataJSON = &s
	}

	// completion_time is set on the first transition into completed/skipped
	// and kept as-is on resubmission, so idempotent retries converge
	query := `
		UPDATE onboarding_progress SET
			step_data = COALESCE($4::jsonb, step_data),
			completed = COALESCE($5, completed),
			skipped = COALESCE($6, skipped),
			completion_time = CASE
				WHEN completion_time IS NOT NULL THEN completion_time
				WHEN COALESCE($5, completed) OR COALESCE($6, skipped) THEN NOW()
				ELSE NULL END,
			version = version + 1
		WHERE session_id = $1 AND step_number = $2 AND version = $3
		RETURNING ` + progressColumns

	var progress *domain.OnboardingProgress
	err := r.rls.WithUserContext(ctx, userID, func(ctx context.Context, q database.Querier) error {
		var scanErr error
		progress, scanErr = scanProgress(q.QueryRow(ctx, query,
			sessionID, stepNumber, expectedVersion,
			stepDataJSON, update.Completed, update.Skipped,
		))
		if !errors.Is(scanErr, pgx.ErrNoRows) {
			return scanErr
		}

		var exists bool
		if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM onboarding_progress WHERE session_id = $1 AND step_number = $2)`, sessionID, stepNumber).Scan(&exists); err != nil {
			return fmt.Errorf("failed to probe step existence: %w", err)
		}
		if exists {
			return domain.ErrVersionConflict
		}
		return domain.ErrNotFound
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrVersionConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update step progress: %w", err)
	}

	return progress, nil
}

// ============================================================================
// Row scanning
// ============================================================================

func scanSession(row pgx.Row) (*domain.OnboardingSession, error) {
	var session domain.OnboardingSession
	var formData, aiAnalysis []byte

	err := row.Scan(
		&session.ID, &session.UserID, &session.Status, &session.CurrentStep,
		&session.TotalSteps, &session.CompletionPercentage, &formData, &aiAnalysis,
		&session.Version, &session.ExpiresAt, &session.CreatedAt, &session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(formData) > 0 {
		if err := json.Unmarshal(formData, &session.FormData); err != nil {
			return nil, fmt.Errorf("failed to decode form_data: %w", err)
		}
	}
	if session.FormData == nil {
		session.FormData = map[string]domain.StepData{}
	}
	if len(aiAnalysis) > 0 {
		if err := json.Unmarshal(aiAnalysis, &session.AIAnalysis); err != nil {
			return nil, fmt.Errorf("failed to decode ai_analysis: %w", err)
		}
	}

	return &session, nil
}

func scanProgress(row pgx.Row) (*domain.OnboardingProgress, error) {
	var progress domain.OnboardingProgress
	var stepData []byte

	err := row.Scan(
		&progress.ID, &progress.SessionID, &progress.StepNumber, &progress.StepName,
		&stepData, &progress.Completed, &progress.Skipped, &progress.CompletionTime,
		&progress.Version, &progress.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(stepData) > 0 {
		if err := json.Unmarshal(stepData, &progress.StepData); err != nil {
			return nil, fmt.Errorf("failed to decode step_data: %w", err)
		}
	}

	return &progress, nil
}

func statusPtr(s *domain.SessionStatus) *string {
	if s == nil {
		return nil
	}
	v := string(*s)
	return &v
}
