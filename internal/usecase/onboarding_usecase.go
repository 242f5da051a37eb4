package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Montinou/stratixV2-sub007/internal/domain"
	"github.com/Montinou/stratixV2-sub007/pkg/apperror"
	"github.com/Montinou/stratixV2-sub007/pkg/telemetry"

	"github.com/go-playground/validator/v10"
)

type onboardingUsecase struct {
	repo       domain.OnboardingRepository
	profiles   domain.ProfileRepository
	companies  domain.CompanyRepository
	objectives domain.ObjectiveRepository
	ai         domain.AIUsecase // nil disables suggestion enhancement
	events     telemetry.Emitter
	validate   *validator.Validate
}

func NewOnboardingUsecase(
	repo domain.OnboardingRepository,
	profiles domain.ProfileRepository,
	companies domain.CompanyRepository,
	objectives domain.ObjectiveRepository,
	ai domain.AIUsecase,
	events telemetry.Emitter,
	validate *validator.Validate,
) domain.OnboardingUsecase {
	return &onboardingUsecase{
		repo:       repo,
		profiles:   profiles,
		companies:  companies,
		objectives: objectives,
		ai:         ai,
		events:     events,
		validate:   validate,
	}
}

// requireUser verifies the authenticated principal matches the requested user
func requireUser(ctx context.Context, userID string) error {
	ctxUserID, ok := ctx.Value(domain.KeyUserID).(string)
	if !ok || ctxUserID == "" {
		return apperror.Unauthorized("Usuario no autenticado")
	}
	if ctxUserID != userID {
		return apperror.Forbidden("Solo podés operar con tu propio usuario")
	}
	return nil
}

// ============================================================================
// Start / Resume
// ============================================================================

func (u *onboardingUsecase) StartSession(ctx context.Context, userID string, totalSteps int) (*domain.OnboardingSession, error) {
	if err := requireUser(ctx, userID); err != nil {
		return nil, err
	}
	if totalSteps <= 0 {
		totalSteps = domain.DefaultTotalSteps
	}

	// Resume the active session when one exists and is still inside its TTL
	active, err := u.repo.GetActiveSessionByUser(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.Internal(fmt.Errorf("failed to look up active session: %w", err))
	}
	if active != nil && !active.IsExpired(time.Now()) {
		u.events.Emit(ctx, telemetry.Event{
			Event:  "session_resumed",
			UserID: userID,
			Details: map[string]any{
				"session_id":   active.ID,
				"current_step": active.CurrentStep,
			},
		})
		return active, nil
	}

	session, err := u.repo.CreateSession(ctx, userID, totalSteps)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to create session: %w", err))
	}

	u.events.Emit(ctx, telemetry.Event{
		Event:   "session_started",
		UserID:  userID,
		Details: map[string]any{"session_id": session.ID, "total_steps": session.TotalSteps},
	})
	return session, nil
}

// ============================================================================
// Submit Step
// ============================================================================

func (u *onboardingUsecase) SubmitStep(ctx context.Context, userID string, req *domain.SubmitStepRequest) (*domain.SubmitStepResult, error) {
	if err := requireUser(ctx, userID); err != nil {
		return nil, err
	}
	if err := u.validate.Struct(req); err != nil {
		return nil, apperror.BadRequest("Solicitud inválida: " + err.Error())
	}

	session, err := u.repo.GetSession(ctx, userID, req.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Sesión de onboarding no encontrada")
		}
		return nil, apperror.Internal(fmt.Errorf("failed to load session: %w", err))
	}
	if session.UserID != userID {
		return nil, apperror.Forbidden("La sesión pertenece a otro usuario")
	}

	switch domain.ResolveStatus(session, time.Now()) {
	case domain.SessionInProgress:
		// writable
	case domain.SessionCompleted:
		return nil, apperror.Conflict("La sesión de onboarding ya fue completada")
	case domain.SessionAbandoned:
		return nil, apperror.Conflict("La sesión fue abandonada; reactivala para continuar")
	case domain.SessionExpired:
		return nil, apperror.Conflict("La sesión de onboarding expiró")
	default:
		return nil, apperror.Conflict("La sesión no admite envíos en su estado actual")
	}

	if req.StepNumber < 1 || req.StepNumber > session.TotalSteps {
		return nil, apperror.BadRequest(fmt.Sprintf("El número de paso debe estar entre 1 y %d", session.TotalSteps))
	}

	validation := ValidateStep(req.StepNumber, req.StepData)
	if !validation.IsValid {
		// Invalid submissions never touch storage: the wizard shows the
		// errors and the session stays exactly where it was
		return &domain.SubmitStepResult{
			Session:    session,
			Validation: validation,
			Feedback:   FeedbackFor(req.StepNumber, req.StepData, validation),
		}, nil
	}

	if err := u.upsertStep(ctx, userID, session, req, validation); err != nil {
		return nil, err
	}

	updated, err := u.advanceSession(ctx, userID, session, req)
	if err != nil {
		return nil, err
	}

	u.events.Emit(ctx, telemetry.Event{
		Event:  "step_submitted",
		UserID: userID,
		Details: map[string]any{
			"session_id":  session.ID,
			"step_number": req.StepNumber,
			"completed":   req.Completed,
			"status":      string(updated.Status),
		},
	})

	result := &domain.SubmitStepResult{
		Session:    updated,
		Validation: validation,
		Feedback:   FeedbackFor(req.StepNumber, req.StepData, validation),
	}
	if updated.Status == domain.SessionInProgress && updated.CurrentStep > req.StepNumber {
		result.NextStep = &domain.NextStepInfo{
			StepNumber:       updated.CurrentStep,
			StepName:         StepName(updated.CurrentStep),
			EstimatedMinutes: domain.StepEstimateMinutes(updated.CurrentStep),
		}
	}
	return result, nil
}

// upsertStep records the progress row for one submitted step. The validation
// outcome rides along inside step_data under ai_validation.
func (u *onboardingUsecase) upsertStep(
	ctx context.Context,
	userID string,
	session *domain.OnboardingSession,
	req *domain.SubmitStepRequest,
	validation domain.ValidationResult,
) error {
	stepData := make(domain.StepData, len(req.StepData)+1)
	for k, v := range req.StepData {
		stepData[k] = v
	}
	stepData["ai_validation"] = validation

	existing, err := u.repo.GetStep(ctx, userID, session.ID, req.StepNumber)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return apperror.Internal(fmt.Errorf("failed to load step: %w", err))
	}

	if existing == nil {
		progress := &domain.OnboardingProgress{
			SessionID:  session.ID,
			StepNumber: req.StepNumber,
			StepName:   StepName(req.StepNumber),
			StepData:   stepData,
			Completed:  req.Completed,
			Skipped:    req.Skipped,
		}
		if err := u.repo.CreateStep(ctx, userID, progress); err != nil {
			return apperror.Internal(fmt.Errorf("failed to create step: %w", err))
		}
		return nil
	}

	completed := req.Completed
	skipped := req.Skipped
	_, err = u.repo.UpdateStep(ctx, userID, session.ID, req.StepNumber, existing.Version, domain.StepUpdate{
		StepData:  stepData,
		Completed: &completed,
		Skipped:   &skipped,
	})
	if err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			return apperror.Conflict("El paso fue modificado por otra solicitud; recargá y volvé a intentar")
		}
		return apperror.Internal(fmt.Errorf("failed to update step: %w", err))
	}
	return nil
}

// advanceSession recomputes the session row after a valid submission: cursor
// advance, monotone completion percentage, per-step form_data overwrite and,
// on a confirmed final step, completion plus workspace materialization.
func (u *onboardingUsecase) advanceSession(
	ctx context.Context,
	userID string,
	session *domain.OnboardingSession,
	req *domain.SubmitStepRequest,
) (*domain.OnboardingSession, error) {
	swp, err := u.repo.GetSessionWithProgress(ctx, userID, session.ID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to reload session: %w", err))
	}

	percentage := len(domain.CompletedSteps(swp.Progress)) * 100 / session.TotalSteps
	update := domain.SessionUpdate{
		CompletionPercentage: &percentage,
		StepName:             StepName(req.StepNumber),
		StepFormData:         req.StepData,
	}

	if req.AutoAdvance && req.Completed && req.StepNumber == session.CurrentStep && session.CurrentStep < session.TotalSteps {
		next := session.CurrentStep + 1
		update.CurrentStep = &next
	}

	finishing := req.StepNumber == session.TotalSteps && req.Completed &&
		stringField(req.StepData, "confirmed") == "true"
	if finishing {
		// Materialize before flipping the status so a failed provisioning run
		// leaves the session resumable
		formData := mergedFormData(session, req)
		if err := u.materializeWorkspace(ctx, userID, session, formData); err != nil {
			return nil, err
		}
		done := domain.SessionCompleted
		full := 100
		update.Status = &done
		update.CompletionPercentage = &full
	}

	updated, err := u.repo.UpdateSession(ctx, userID, session.ID, swp.Session.Version, update)
	if err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			return nil, apperror.Conflict("La sesión fue modificada por otra solicitud; recargá y volvé a intentar")
		}
		return nil, apperror.Internal(fmt.Errorf("failed to update session: %w", err))
	}

	if finishing {
		u.events.Emit(ctx, telemetry.Event{
			Event:   "onboarding_completed",
			UserID:  userID,
			Details: map[string]any{"session_id": session.ID},
		})
	}
	return updated, nil
}

// mergedFormData is the session's accumulated form data with the in-flight
// submission layered on top, so completion sees the freshest step payloads
func mergedFormData(session *domain.OnboardingSession, req *domain.SubmitStepRequest) map[string]domain.StepData {
	merged := make(map[string]domain.StepData, len(session.FormData)+1)
	for name, data := range session.FormData {
		merged[name] = data
	}
	merged[StepName(req.StepNumber)] = req.StepData
	return merged
}

// ============================================================================
// Workspace Materialization
// ============================================================================

// materializeWorkspace turns the wizard's accumulated answers into real rows:
// the tenant company, the creator's corporativo profile and the first
// objective. Runs once, on the confirmed final step.
func (u *onboardingUsecase) materializeWorkspace(
	ctx context.Context,
	userID string,
	session *domain.OnboardingSession,
	formData map[string]domain.StepData,
) error {
	personal := formData["personal_info"]
	companyInfo := formData["company_info"]
	firstObjective := formData["first_objective"]
	preferences := formData["preferences"]

	company, err := u.createCompanyFrom(ctx, userID, session.ID, companyInfo)
	if err != nil {
		return err
	}

	if err := u.updateProfileFrom(ctx, userID, personal, preferences); err != nil {
		return err
	}
	if err := u.profiles.SetCompany(ctx, userID, userID, company.ID, domain.RoleCorporativo); err != nil {
		return apperror.Internal(fmt.Errorf("failed to attach profile to company: %w", err))
	}
	if err := u.profiles.MarkOnboardingCompleted(ctx, userID, userID); err != nil {
		return apperror.Internal(fmt.Errorf("failed to mark onboarding completed: %w", err))
	}

	objective := &domain.Objective{
		CompanyID:   company.ID,
		OwnerID:     userID,
		Title:       stringField(firstObjective, "objective_title"),
		Description: stringField(firstObjective, "objective_description"),
		Quarter:     stringField(firstObjective, "target_quarter"),
		Status:      domain.ObjectiveActive,
	}
	if metric := stringField(firstObjective, "success_metric"); metric != "" {
		objective.SuccessMetric = &metric
	}
	if err := u.objectives.Create(ctx, userID, objective); err != nil {
		return apperror.Internal(fmt.Errorf("failed to create first objective: %w", err))
	}

	return nil
}

func (u *onboardingUsecase) createCompanyFrom(ctx context.Context, userID, sessionID string, info domain.StepData) (*domain.Company, error) {
	name := stringField(info, "company_name")
	company := &domain.Company{
		Name:      name,
		Slug:      Slugify(name),
		CreatedBy: userID,
	}
	if description := stringField(info, "description"); description != "" {
		company.Description = &description
	}
	if size := domain.CompanySize(stringField(info, "company_size")); size.IsValid() {
		company.Size = &size
	}
	if country := stringField(info, "country"); country != "" {
		company.Country = &country
	}
	if website := stringField(info, "website"); website != "" {
		company.Website = &website
	}

	err := u.companies.Create(ctx, userID, company)
	if errors.Is(err, domain.ErrAlreadyExists) {
		// Slug collision with another tenant: disambiguate with the session id
		company.Slug = company.Slug + "-" + shortID(sessionID)
		err = u.companies.Create(ctx, userID, company)
	}
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to create company: %w", err))
	}
	return company, nil
}

func (u *onboardingUsecase) updateProfileFrom(ctx context.Context, userID string, personal, preferences domain.StepData) error {
	profile, err := u.profiles.GetByID(ctx, userID, userID)
	if err != nil {
		return apperror.Internal(fmt.Errorf("failed to load profile: %w", err))
	}

	if fullName := stringField(personal, "full_name"); fullName != "" {
		profile.FullName = fullName
	}
	if jobTitle := stringField(personal, "job_title"); jobTitle != "" {
		profile.JobTitle = &jobTitle
	}
	if len(preferences) > 0 {
		if profile.Preferences == nil {
			profile.Preferences = map[string]any{}
		}
		for k, v := range preferences {
			profile.Preferences[k] = v
		}
	}

	if err := u.profiles.Update(ctx, userID, profile); err != nil {
		return apperror.Internal(fmt.Errorf("failed to update profile: %w", err))
	}
	return nil
}

// ============================================================================
// Progress / Status
// ============================================================================

func (u *onboardingUsecase) GetProgress(ctx context.Context, userID, sessionID string) (*domain.SessionWithProgress, error) {
	if err := requireUser(ctx, userID); err != nil {
		return nil, err
	}

	swp, err := u.repo.GetSessionWithProgress(ctx, userID, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Sesión de onboarding no encontrada")
		}
		return nil, apperror.Internal(fmt.Errorf("failed to get progress: %w", err))
	}
	if swp.Session.UserID != userID {
		return nil, apperror.Forbidden("La sesión pertenece a otro usuario")
	}
	return swp, nil
}

func (u *onboardingUsecase) GetStatus(ctx context.Context, userID string) (*domain.OnboardingStatus, error) {
	if err := requireUser(ctx, userID); err != nil {
		return nil, err
	}

	session, err := u.repo.GetLatestSessionByUser(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.Internal(fmt.Errorf("failed to get latest session: %w", err))
	}

	status := &domain.OnboardingStatus{
		Status:         domain.ResolveStatus(session, time.Now()),
		CompletedSteps: []int{},
	}
	if session == nil {
		return status, nil
	}

	swp, err := u.repo.GetSessionWithProgress(ctx, userID, session.ID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to get progress: %w", err))
	}

	expiresAt := session.ExpiresAt
	status.SessionID = session.ID
	status.CurrentStep = session.CurrentStep
	status.TotalSteps = session.TotalSteps
	status.CompletionPercentage = domain.EffectiveCompletion(session)
	status.CompletedSteps = domain.CompletedSteps(swp.Progress)
	status.EstimatedTimeRemaining = domain.EstimatedTimeRemaining(session.CurrentStep, session.TotalSteps)
	status.ExpiresAt = &expiresAt
	return status, nil
}

// ============================================================================
// Abandon / Reactivate
// ============================================================================

func (u *onboardingUsecase) AbandonSession(ctx context.Context, userID, sessionID string) error {
	if err := requireUser(ctx, userID); err != nil {
		return err
	}

	session, err := u.loadOwnedSession(ctx, userID, sessionID)
	if err != nil {
		return err
	}

	switch domain.ResolveStatus(session, time.Now()) {
	case domain.SessionInProgress:
		// abandonable
	case domain.SessionAbandoned:
		return nil // already abandoned, idempotent
	default:
		return apperror.Conflict("La sesión no se puede abandonar en su estado actual")
	}

	abandoned := domain.SessionAbandoned
	_, err = u.repo.UpdateSession(ctx, userID, sessionID, session.Version, domain.SessionUpdate{Status: &abandoned})
	if err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			return apperror.Conflict("La sesión fue modificada por otra solicitud; recargá y volvé a intentar")
		}
		return apperror.Internal(fmt.Errorf("failed to abandon session: %w", err))
	}

	u.events.Emit(ctx, telemetry.Event{
		Event:   "session_abandoned",
		UserID:  userID,
		Details: map[string]any{"session_id": sessionID},
	})
	return nil
}

func (u *onboardingUsecase) ReactivateSession(ctx context.Context, userID, sessionID string) (*domain.OnboardingSession, error) {
	if err := requireUser(ctx, userID); err != nil {
		return nil, err
	}

	session, err := u.loadOwnedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	// Only an abandoned session comes back; completed is terminal and an
	// expired one requires starting over
	switch domain.ResolveStatus(session, time.Now()) {
	case domain.SessionAbandoned:
	case domain.SessionCompleted:
		return nil, apperror.Conflict("La sesión ya fue completada")
	case domain.SessionExpired:
		return nil, apperror.Conflict("La sesión expiró; iniciá una nueva")
	default:
		return nil, apperror.Conflict("Solo se pueden reactivar sesiones abandonadas")
	}

	inProgress := domain.SessionInProgress
	expiresAt := time.Now().Add(domain.SessionTTL)
	updated, err := u.repo.UpdateSession(ctx, userID, sessionID, session.Version, domain.SessionUpdate{
		Status:    &inProgress,
		ExpiresAt: &expiresAt,
	})
	if err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			return nil, apperror.Conflict("La sesión fue modificada por otra solicitud; recargá y volvé a intentar")
		}
		return nil, apperror.Internal(fmt.Errorf("failed to reactivate session: %w", err))
	}

	u.events.Emit(ctx, telemetry.Event{
		Event:   "session_reactivated",
		UserID:  userID,
		Details: map[string]any{"session_id": sessionID},
	})
	return updated, nil
}

func (u *onboardingUsecase) loadOwnedSession(ctx context.Context, userID, sessionID string) (*domain.OnboardingSession, error) {
	session, err := u.repo.GetSession(ctx, userID, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Sesión de onboarding no encontrada")
		}
		return nil, apperror.Internal(fmt.Errorf("failed to load session: %w", err))
	}
	if session.UserID != userID {
		return nil, apperror.Forbidden("La sesión pertenece a otro usuario")
	}
	return session, nil
}

// ============================================================================
// Smart Suggestions
// ============================================================================

func (u *onboardingUsecase) SuggestStepData(ctx context.Context, userID, sessionID string, stepNumber int) (*domain.StepSuggestion, error) {
	if err := requireUser(ctx, userID); err != nil {
		return nil, err
	}

	session, err := u.loadOwnedSession(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if stepNumber < 1 || stepNumber > session.TotalSteps {
		return nil, apperror.BadRequest(fmt.Sprintf("El número de paso debe estar entre 1 y %d", session.TotalSteps))
	}

	suggestion := &domain.StepSuggestion{
		StepNumber:  stepNumber,
		Suggestions: heuristicSuggestions(stepNumber, session.FormData),
	}

	// AI is a strict enhancement: any failure leaves the heuristics intact
	if u.ai != nil {
		if title, ok := suggestion.Suggestions["objective_title"]; ok {
			enhanced, err := u.ai.EnhanceText(ctx, userID, &domain.EnhanceTextRequest{
				Text: title,
				Tone: string(domain.ToneProfessional),
			})
			if err == nil && enhanced.AIUsed {
				suggestion.Suggestions["objective_title"] = enhanced.Enhanced
				suggestion.Enhanced = true
			}
		}
	}

	return suggestion, nil
}

// heuristicSuggestions derives prefill values for a step from earlier answers
func heuristicSuggestions(stepNumber int, formData map[string]domain.StepData) map[string]string {
	suggestions := map[string]string{}
	personal := formData["personal_info"]
	companyInfo := formData["company_info"]

	switch stepNumber {
	case 3:
		goal := stringField(personal, "primary_goal")
		if goal != "" {
			suggestions["objective_title"] = goal
			suggestions["objective_description"] = fmt.Sprintf(
				"Queremos lograr: %s. Este objetivo marca el foco del equipo para el trimestre.", goal)
		}
		suggestions["target_quarter"] = currentQuarter(time.Now())
	case 4:
		switch stringField(personal, "experience_with_okr") {
		case "none", "basic":
			suggestions["ai_assistance_level"] = "full"
		case "intermediate":
			suggestions["ai_assistance_level"] = "moderate"
		case "advanced":
			suggestions["ai_assistance_level"] = "minimal"
		}
		if stringField(personal, "urgency_level") == "high" {
			suggestions["notification_frequency"] = "daily"
		} else {
			suggestions["notification_frequency"] = "weekly"
		}
	case 5:
		if name := stringField(companyInfo, "company_name"); name != "" {
			suggestions["summary"] = fmt.Sprintf("Espacio de %s listo para confirmar.", name)
		}
	}
	return suggestions
}

// currentQuarter formats the quarter containing t as YYYY-Qn
func currentQuarter(t time.Time) string {
	quarter := (int(t.Month())-1)/3 + 1
	return fmt.Sprintf("%d-Q%d", t.Year(), quarter)
}

// ============================================================================
// Helpers
// ============================================================================

// Slugify lowercases a name and collapses every non-alphanumeric run into a
// single hyphen
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteRune('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
