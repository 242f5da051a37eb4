package domain_test

import (
	"testing"
	"time"

	"github.com/Montinou/stratixV2-sub007/internal/domain"

	"github.com/stretchr/testify/assert"
)

func sessionAt(status domain.SessionStatus, expiresAt time.Time) *domain.OnboardingSession {
	return &domain.OnboardingSession{
		ID:         "11111111-1111-1111-1111-111111111111",
		UserID:     "22222222-2222-2222-2222-222222222222",
		Status:     status,
		TotalSteps: domain.DefaultTotalSteps,
		ExpiresAt:  expiresAt,
	}
}

func TestResolveStatus(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	t.Run("nil session reads as not_started", func(t *testing.T) {
		assert.Equal(t, domain.SessionNotStarted, domain.ResolveStatus(nil, now))
	})

	t.Run("in_progress inside TTL stays in_progress", func(t *testing.T) {
		s := sessionAt(domain.SessionInProgress, future)
		assert.Equal(t, domain.SessionInProgress, domain.ResolveStatus(s, now))
	})

	t.Run("in_progress past deadline reads as expired", func(t *testing.T) {
		s := sessionAt(domain.SessionInProgress, past)
		assert.Equal(t, domain.SessionExpired, domain.ResolveStatus(s, now))
	})

	t.Run("abandoned past deadline reads as expired", func(t *testing.T) {
		s := sessionAt(domain.SessionAbandoned, past)
		assert.Equal(t, domain.SessionExpired, domain.ResolveStatus(s, now))
	})

	t.Run("completed is sticky even past deadline", func(t *testing.T) {
		s := sessionAt(domain.SessionCompleted, past)
		assert.Equal(t, domain.SessionCompleted, domain.ResolveStatus(s, now))
	})
}

func TestCompletedStepsSortsAscending(t *testing.T) {
	progress := []domain.OnboardingProgress{
		{StepNumber: 3, Completed: true},
		{StepNumber: 1, Completed: true},
		{StepNumber: 2, Completed: false},
		{StepNumber: 5, Completed: true},
	}
	assert.Equal(t, []int{1, 3, 5}, domain.CompletedSteps(progress))
	assert.Empty(t, domain.CompletedSteps(nil))
}

func TestEstimatedTimeRemaining(t *testing.T) {
	// Steps after the cursor: 2+3+4+5 -> 4+5+3+2 = 14 minutes
	assert.Equal(t, 14, domain.EstimatedTimeRemaining(1, 5))
	// Only the final review step left
	assert.Equal(t, 2, domain.EstimatedTimeRemaining(4, 5))
	assert.Equal(t, 0, domain.EstimatedTimeRemaining(5, 5))
}

func TestEffectiveCompletionIsMonotone(t *testing.T) {
	s := sessionAt(domain.SessionInProgress, time.Now().Add(time.Hour))
	s.CurrentStep = 2
	s.CompletionPercentage = 20
	assert.Equal(t, 40, domain.EffectiveCompletion(s))

	// Stored percentage wins when it is ahead of the cursor
	s.CompletionPercentage = 80
	assert.Equal(t, 80, domain.EffectiveCompletion(s))

	assert.Equal(t, 0, domain.EffectiveCompletion(nil))
}

func TestSessionStatusValidity(t *testing.T) {
	assert.True(t, domain.SessionInProgress.IsValid())
	assert.True(t, domain.SessionCompleted.IsValid())
	assert.True(t, domain.SessionAbandoned.IsValid())

	// Derived statuses are never stored
	assert.False(t, domain.SessionNotStarted.IsValid())
	assert.False(t, domain.SessionExpired.IsValid())

	assert.True(t, domain.SessionCompleted.IsTerminal())
	assert.False(t, domain.SessionAbandoned.IsTerminal())
}

func TestInvitationRedeemability(t *testing.T) {
	now := time.Now()
	invitation := &domain.Invitation{
		Status:    domain.InvitationPending,
		ExpiresAt: now.Add(time.Hour),
	}
	assert.True(t, invitation.IsRedeemable(now))

	invitation.ExpiresAt = now.Add(-time.Minute)
	assert.False(t, invitation.IsRedeemable(now))

	invitation.ExpiresAt = now.Add(time.Hour)
	invitation.Status = domain.InvitationRevoked
	assert.False(t, invitation.IsRedeemable(now))
}
