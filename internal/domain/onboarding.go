package domain

import (
	"context"
	"errors"
	"sort"
	"time"
)

// ErrVersionConflict is returned when an update carries a stale version
// counter, meaning another writer won the race for the same row.
var ErrVersionConflict = errors.New("version conflict")

// ============================================================================
// Onboarding Session
// ============================================================================

// SessionStatus represents the stored lifecycle state of an onboarding session
type SessionStatus string

const (
	SessionNotStarted SessionStatus = "not_started"
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
	SessionAbandoned  SessionStatus = "abandoned"
	SessionExpired    SessionStatus = "expired"
)

// ValidSessionStatuses returns the statuses a session row may store.
// not_started and expired are derived on read and never persisted.
func ValidSessionStatuses() []SessionStatus {
	return []SessionStatus{SessionInProgress, SessionCompleted, SessionAbandoned}
}

// IsValid checks if the status is one a session row may store
func (s SessionStatus) IsValid() bool {
	for _, valid := range ValidSessionStatuses() {
		if s == valid {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed out of s
func (s SessionStatus) IsTerminal() bool {
	return s == SessionCompleted || s == SessionExpired
}

const (
	// DefaultTotalSteps is the number of wizard steps in the standard flow
	DefaultTotalSteps = 5

	// SessionTTL is how long a session stays usable after creation
	SessionTTL = 7 * 24 * time.Hour
)

// StepData is the free-form attribute mapping submitted for one step.
// It is schema-less at the storage layer; the step validator checks it
// at write time.
type StepData map[string]any

type OnboardingSession struct {
	ID                   string              `json:"id"`
	UserID               string              `json:"user_id"` // external identity UUID
	Status               SessionStatus       `json:"status"`
	CurrentStep          int                 `json:"current_step"`
	TotalSteps           int                 `json:"total_steps"`
	CompletionPercentage int                 `json:"completion_percentage"`
	FormData             map[string]StepData `json:"form_data"` // keyed by step name
	AIAnalysis           map[string]any      `json:"ai_analysis,omitempty"`
	Version              int64               `json:"version"`
	ExpiresAt            time.Time           `json:"expires_at"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
}

// IsExpired reports whether the session's deadline has passed at the given
// instant. Stored status is not consulted.
func (s *OnboardingSession) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// SessionUpdate carries the partial fields of an UpdateSession call.
// Nil pointers leave the stored value untouched. StepName/StepFormData
// overwrite a single key of form_data (shallow per-step overwrite, never a
// deep merge).
type SessionUpdate struct {
	Status               *SessionStatus
	CurrentStep          *int
	CompletionPercentage *int
	StepName             string
	StepFormData         StepData
	AIAnalysis           map[string]any
	ExpiresAt            *time.Time
}

// ============================================================================
// Onboarding Progress (one row per session x step)
// ============================================================================

type OnboardingProgress struct {
	ID             string     `json:"id"`
	SessionID      string     `json:"session_id"`
	StepNumber     int        `json:"step_number"`
	StepName       string     `json:"step_name"`
	StepData       StepData   `json:"step_data"`
	Completed      bool       `json:"completed"`
	Skipped        bool       `json:"skipped"`
	CompletionTime *time.Time `json:"completion_time,omitempty"`
	Version        int64      `json:"version"`
	CreatedAt      time.Time  `json:"created_at"`
}

// StepUpdate carries the partial fields of an UpdateStep call
type StepUpdate struct {
	StepData  StepData
	Completed *bool
	Skipped   *bool
}

// ============================================================================
// Step Validation
// ============================================================================

// ValidationResult is the outcome of validating one step submission.
// It is returned to the caller and also embedded into the progress row's
// step_data under the ai_validation key; it is never persisted on its own.
type ValidationResult struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// ============================================================================
// Derived Status Projection
// ============================================================================

// stepTimeEstimates maps step number to the minutes a user typically needs
var stepTimeEstimates = map[int]int{
	1: 3,
	2: 4,
	3: 5,
	4: 3,
	5: 2,
}

// ResolveStatus computes the externally reported status of a session.
// A nil session means the user never started. completed is sticky and wins
// over expiry; otherwise a session past its deadline reads as expired no
// matter what status is stored.
func ResolveStatus(session *OnboardingSession, now time.Time) SessionStatus {
	if session == nil {
		return SessionNotStarted
	}
	if session.Status == SessionCompleted {
		return SessionCompleted
	}
	if session.IsExpired(now) {
		return SessionExpired
	}
	return session.Status
}

// CompletedSteps returns the step numbers marked completed, ascending
func CompletedSteps(progress []OnboardingProgress) []int {
	steps := make([]int, 0, len(progress))
	for _, p := range progress {
		if p.Completed {
			steps = append(steps, p.StepNumber)
		}
	}
	sort.Ints(steps)
	return steps
}

// StepEstimateMinutes returns the typical minutes for a single step
func StepEstimateMinutes(step int) int {
	return stepTimeEstimates[step]
}

// EstimatedTimeRemaining sums the per-step estimates for all steps strictly
// after currentStep, in minutes
func EstimatedTimeRemaining(currentStep, totalSteps int) int {
	total := 0
	for step := currentStep + 1; step <= totalSteps; step++ {
		total += stepTimeEstimates[step]
	}
	return total
}

// EffectiveCompletion recomputes the completion percentage with the stored
// value as a floor: max(stored, currentStep/totalSteps*100). The reported
// value never decreases across a session's lifetime.
func EffectiveCompletion(session *OnboardingSession) int {
	if session == nil || session.TotalSteps <= 0 {
		return 0
	}
	derived := session.CurrentStep * 100 / session.TotalSteps
	if session.CompletionPercentage > derived {
		return session.CompletionPercentage
	}
	return derived
}

// OnboardingStatus is the read-only projection returned by the status endpoint
type OnboardingStatus struct {
	Status                 SessionStatus `json:"status"`
	SessionID              string        `json:"session_id,omitempty"`
	CurrentStep            int           `json:"current_step,omitempty"`
	TotalSteps             int           `json:"total_steps,omitempty"`
	CompletionPercentage   int           `json:"completion_percentage"`
	CompletedSteps         []int         `json:"completed_steps"`
	EstimatedTimeRemaining int           `json:"estimated_time_remaining_minutes"`
	ExpiresAt              *time.Time    `json:"expires_at,omitempty"`
}

// ============================================================================
// Requests / Responses
// ============================================================================

type StartSessionRequest struct {
	TotalSteps int `json:"total_steps" validate:"omitempty,min=1,max=20"`
}

type SubmitStepRequest struct {
	SessionID   string   `json:"session_id" validate:"required,uuid"`
	StepNumber  int      `json:"step_number" validate:"required,min=1"`
	StepData    StepData `json:"step_data" validate:"required"`
	Completed   bool     `json:"completed"`
	Skipped     bool     `json:"skipped"`
	AutoAdvance bool     `json:"auto_advance"`
}

// SubmitStepResult is returned for every submission, valid or not. Invalid
// submissions carry the validation outcome and leave the session untouched.
type SubmitStepResult struct {
	Session    *OnboardingSession `json:"session"`
	Validation ValidationResult   `json:"validation"`
	Feedback   string             `json:"feedback,omitempty"`
	NextStep   *NextStepInfo      `json:"next_step,omitempty"`
}

// NextStepInfo tells the client where the wizard goes after a submission
type NextStepInfo struct {
	StepNumber       int    `json:"step_number"`
	StepName         string `json:"step_name"`
	EstimatedMinutes int    `json:"estimated_minutes"`
}

type SessionWithProgress struct {
	Session  *OnboardingSession   `json:"session"`
	Progress []OnboardingProgress `json:"progress"`
}

// StepSuggestion is the smart-completion payload for one step. Suggestions
// come from local heuristics over earlier form data; Enhanced marks whether
// the AI service contributed.
type StepSuggestion struct {
	StepNumber  int               `json:"step_number"`
	Suggestions map[string]string `json:"suggestions"`
	Enhanced    bool              `json:"enhanced"`
}

// ============================================================================
// Interfaces
// ============================================================================

type OnboardingRepository interface {
	CreateSession(ctx context.Context, userID string, totalSteps int) (*OnboardingSession, error)
	GetSession(ctx context.Context, userID, sessionID string) (*OnboardingSession, error)
	GetActiveSessionByUser(ctx context.Context, userID string) (*OnboardingSession, error)
	GetLatestSessionByUser(ctx context.Context, userID string) (*OnboardingSession, error)
	GetSessionWithProgress(ctx context.Context, userID, sessionID string) (*SessionWithProgress, error)
	UpdateSession(ctx context.Context, userID, sessionID string, expectedVersion int64, update SessionUpdate) (*OnboardingSession, error)
	GetStep(ctx context.Context, userID, sessionID string, stepNumber int) (*OnboardingProgress, error)
	CreateStep(ctx context.Context, userID string, progress *OnboardingProgress) error
	UpdateStep(ctx context.Context, userID, sessionID string, stepNumber int, expectedVersion int64, update StepUpdate) (*OnboardingProgress, error)
}

type OnboardingUsecase interface {
	StartSession(ctx context.Context, userID string, totalSteps int) (*OnboardingSession, error)
	SubmitStep(ctx context.Context, userID string, req *SubmitStepRequest) (*SubmitStepResult, error)
	GetProgress(ctx context.Context, userID, sessionID string) (*SessionWithProgress, error)
	GetStatus(ctx context.Context, userID string) (*OnboardingStatus, error)
	AbandonSession(ctx context.Context, userID, sessionID string) error
	ReactivateSession(ctx context.Context, userID, sessionID string) (*OnboardingSession, error)
	SuggestStepData(ctx context.Context, userID, sessionID string, stepNumber int) (*StepSuggestion, error)
}
