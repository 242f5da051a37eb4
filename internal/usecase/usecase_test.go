package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Montinou/stratixV2-sub007/internal/domain"
	"github.com/Montinou/stratixV2-sub007/internal/usecase"
	"github.com/Montinou/stratixV2-sub007/pkg/telemetry"
	"github.com/Montinou/stratixV2-sub007/pkg/validation"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const (
	testUserID    = "22222222-2222-2222-2222-222222222222"
	testSessionID = "11111111-1111-1111-1111-111111111111"
)

// Mock Repositories

type MockOnboardingRepo struct {
	mock.Mock
}

func (m *MockOnboardingRepo) CreateSession(ctx context.Context, userID string, totalSteps int) (*domain.OnboardingSession, error) {
	args := m.Called(ctx, userID, totalSteps)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OnboardingSession), args.Error(1)
}

func (m *MockOnboardingRepo) GetSession(ctx context.Context, userID, sessionID string) (*domain.OnboardingSession, error) {
	args := m.Called(ctx, userID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OnboardingSession), args.Error(1)
}

func (m *MockOnboardingRepo) GetActiveSessionByUser(ctx context.Context, userID string) (*domain.OnboardingSession, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OnboardingSession), args.Error(1)
}

func (m *MockOnboardingRepo) GetLatestSessionByUser(ctx context.Context, userID string) (*domain.OnboardingSession, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OnboardingSession), args.Error(1)
}

func (m *MockOnboardingRepo) GetSessionWithProgress(ctx context.Context, userID, sessionID string) (*domain.SessionWithProgress, error) {
	args := m.Called(ctx, userID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SessionWithProgress), args.Error(1)
}

func (m *MockOnboardingRepo) UpdateSession(ctx context.Context, userID, sessionID string, expectedVersion int64, update domain.SessionUpdate) (*domain.OnboardingSession, error) {
	args := m.Called(ctx, userID, sessionID, expectedVersion, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OnboardingSession), args.Error(1)
}

func (m *MockOnboardingRepo) GetStep(ctx context.Context, userID, sessionID string, stepNumber int) (*domain.OnboardingProgress, error) {
	args := m.Called(ctx, userID, sessionID, stepNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OnboardingProgress), args.Error(1)
}

func (m *MockOnboardingRepo) CreateStep(ctx context.Context, userID string, progress *domain.OnboardingProgress) error {
	return m.Called(ctx, userID, progress).Error(0)
}

func (m *MockOnboardingRepo) UpdateStep(ctx context.Context, userID, sessionID string, stepNumber int, expectedVersion int64, update domain.StepUpdate) (*domain.OnboardingProgress, error) {
	args := m.Called(ctx, userID, sessionID, stepNumber, expectedVersion, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OnboardingProgress), args.Error(1)
}

type MockProfileRepo struct {
	mock.Mock
}

func (m *MockProfileRepo) Create(ctx context.Context, profile *domain.Profile) error {
	return m.Called(ctx, profile).Error(0)
}

func (m *MockProfileRepo) GetByID(ctx context.Context, userID, id string) (*domain.Profile, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockProfileRepo) GetByEmail(ctx context.Context, userID, email string) (*domain.Profile, error) {
	args := m.Called(ctx, userID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockProfileRepo) Update(ctx context.Context, userID string, profile *domain.Profile) error {
	return m.Called(ctx, userID, profile).Error(0)
}

func (m *MockProfileRepo) SetCompany(ctx context.Context, userID, profileID, companyID string, role domain.ProfileRole) error {
	return m.Called(ctx, userID, profileID, companyID, role).Error(0)
}

func (m *MockProfileRepo) MarkOnboardingCompleted(ctx context.Context, userID, profileID string) error {
	return m.Called(ctx, userID, profileID).Error(0)
}

type MockCompanyRepo struct {
	mock.Mock
}

func (m *MockCompanyRepo) Create(ctx context.Context, userID string, company *domain.Company) error {
	return m.Called(ctx, userID, company).Error(0)
}

func (m *MockCompanyRepo) GetByID(ctx context.Context, userID, id string) (*domain.Company, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Company), args.Error(1)
}

func (m *MockCompanyRepo) GetBySlug(ctx context.Context, userID, slug string) (*domain.Company, error) {
	args := m.Called(ctx, userID, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Company), args.Error(1)
}

func (m *MockCompanyRepo) Update(ctx context.Context, userID string, company *domain.Company) error {
	return m.Called(ctx, userID, company).Error(0)
}

func (m *MockCompanyRepo) UpdateLogoURL(ctx context.Context, userID, id, logoURL string) error {
	return m.Called(ctx, userID, id, logoURL).Error(0)
}

func (m *MockCompanyRepo) ListMembers(ctx context.Context, userID, companyID string) ([]domain.CompanyMember, error) {
	args := m.Called(ctx, userID, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CompanyMember), args.Error(1)
}

type MockObjectiveRepo struct {
	mock.Mock
}

func (m *MockObjectiveRepo) Create(ctx context.Context, userID string, objective *domain.Objective) error {
	return m.Called(ctx, userID, objective).Error(0)
}

func (m *MockObjectiveRepo) GetByID(ctx context.Context, userID, id string) (*domain.Objective, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Objective), args.Error(1)
}

func (m *MockObjectiveRepo) FetchByCompany(ctx context.Context, userID, companyID string, limit, offset int) ([]domain.Objective, int64, error) {
	args := m.Called(ctx, userID, companyID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Objective), args.Get(1).(int64), args.Error(2)
}

func (m *MockObjectiveRepo) FetchByOwner(ctx context.Context, userID, ownerID string, limit, offset int) ([]domain.Objective, int64, error) {
	args := m.Called(ctx, userID, ownerID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Objective), args.Get(1).(int64), args.Error(2)
}

func (m *MockObjectiveRepo) Update(ctx context.Context, userID string, objective *domain.Objective) error {
	return m.Called(ctx, userID, objective).Error(0)
}

func (m *MockObjectiveRepo) Delete(ctx context.Context, userID, id string) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *MockObjectiveRepo) RecomputeProgress(ctx context.Context, userID, id string) (int, error) {
	args := m.Called(ctx, userID, id)
	return args.Int(0), args.Error(1)
}

// Helpers

func newValidator() *validator.Validate {
	v := validator.New()
	validation.RegisterValidators(v)
	return v
}

func newOnboardingUC(repo *MockOnboardingRepo, profiles *MockProfileRepo, companies *MockCompanyRepo, objectives *MockObjectiveRepo) domain.OnboardingUsecase {
	return usecase.NewOnboardingUsecase(
		repo, profiles, companies, objectives, nil, telemetry.Nop(), newValidator())
}

func authedCtx(userID string) context.Context {
	return context.WithValue(context.Background(), domain.KeyUserID, userID)
}

func inProgressSession() *domain.OnboardingSession {
	return &domain.OnboardingSession{
		ID:          testSessionID,
		UserID:      testUserID,
		Status:      domain.SessionInProgress,
		CurrentStep: 1,
		TotalSteps:  5,
		FormData:    map[string]domain.StepData{},
		Version:     1,
		ExpiresAt:   time.Now().Add(24 * time.Hour),
	}
}

func step1Request() *domain.SubmitStepRequest {
	return &domain.SubmitStepRequest{
		SessionID:  testSessionID,
		StepNumber: 1,
		StepData: domain.StepData{
			"full_name":           "Ana García",
			"job_title":           "Head of Product",
			"experience_with_okr": "none",
			"primary_goal":        "Alinear los equipos",
			"urgency_level":       "medium",
		},
		Completed:   true,
		AutoAdvance: true,
	}
}

// Tests

func TestOnboardingOwnership(t *testing.T) {
	repo := new(MockOnboardingRepo)
	uc := newOnboardingUC(repo, new(MockProfileRepo), new(MockCompanyRepo), new(MockObjectiveRepo))

	t.Run("missing principal is unauthorized", func(t *testing.T) {
		_, err := uc.SubmitStep(context.Background(), testUserID, step1Request())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "no autenticado")
	})

	t.Run("principal mismatch is forbidden", func(t *testing.T) {
		ctx := authedCtx("33333333-3333-3333-3333-333333333333")
		_, err := uc.SubmitStep(ctx, testUserID, step1Request())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "tu propio usuario")
	})

	t.Run("session owned by another user is forbidden", func(t *testing.T) {
		other := inProgressSession()
		other.UserID = "33333333-3333-3333-3333-333333333333"
		repo.On("GetSession", mock.Anything, testUserID, testSessionID).Return(other, nil).Once()

		_, err := uc.SubmitStep(authedCtx(testUserID), testUserID, step1Request())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "otro usuario")
		repo.AssertExpectations(t)
	})
}

func TestSubmitStepHappyPath(t *testing.T) {
	repo := new(MockOnboardingRepo)
	uc := newOnboardingUC(repo, new(MockProfileRepo), new(MockCompanyRepo), new(MockObjectiveRepo))

	session := inProgressSession()
	repo.On("GetSession", mock.Anything, testUserID, testSessionID).Return(session, nil).Once()
	repo.On("GetStep", mock.Anything, testUserID, testSessionID, 1).Return(nil, domain.ErrNotFound).Once()
	repo.On("CreateStep", mock.Anything, testUserID, mock.MatchedBy(func(p *domain.OnboardingProgress) bool {
		_, hasValidation := p.StepData["ai_validation"]
		return p.StepNumber == 1 && p.Completed && hasValidation
	})).Return(nil).Once()

	afterUpsert := *session
	afterUpsert.Version = 2
	repo.On("GetSessionWithProgress", mock.Anything, testUserID, testSessionID).Return(&domain.SessionWithProgress{
		Session:  &afterUpsert,
		Progress: []domain.OnboardingProgress{{StepNumber: 1, Completed: true}},
	}, nil).Once()

	updated := afterUpsert
	updated.CurrentStep = 2
	updated.CompletionPercentage = 20
	updated.Version = 3
	repo.On("UpdateSession", mock.Anything, testUserID, testSessionID, int64(2),
		mock.MatchedBy(func(u domain.SessionUpdate) bool {
			return u.CurrentStep != nil && *u.CurrentStep == 2 &&
				u.CompletionPercentage != nil && *u.CompletionPercentage == 20 &&
				u.StepName == "personal_info" && u.Status == nil
		})).Return(&updated, nil).Once()

	result, err := uc.SubmitStep(authedCtx(testUserID), testUserID, step1Request())
	assert.NoError(t, err)
	assert.True(t, result.Validation.IsValid)
	assert.Equal(t, 2, result.Session.CurrentStep)
	assert.Equal(t, 20, result.Session.CompletionPercentage)
	assert.Equal(t,
		"¡Perfecto para empezar! Los OKRs te ayudarán a enfocar tu equipo en lo que de verdad importa.",
		result.Feedback)
	assert.NotNil(t, result.NextStep)
	assert.Equal(t, 2, result.NextStep.StepNumber)
	assert.Equal(t, "company_info", result.NextStep.StepName)
	repo.AssertExpectations(t)
}

func TestSubmitStepInvalidPayloadNeverPersists(t *testing.T) {
	repo := new(MockOnboardingRepo)
	uc := newOnboardingUC(repo, new(MockProfileRepo), new(MockCompanyRepo), new(MockObjectiveRepo))

	session := inProgressSession()
	session.CurrentStep = 5
	repo.On("GetSession", mock.Anything, testUserID, testSessionID).Return(session, nil).Once()

	req := &domain.SubmitStepRequest{
		SessionID:  testSessionID,
		StepNumber: 5,
		StepData:   domain.StepData{"confirmed": "false"},
		Completed:  true,
	}
	result, err := uc.SubmitStep(authedCtx(testUserID), testUserID, req)
	assert.NoError(t, err)
	assert.False(t, result.Validation.IsValid)
	assert.Equal(t, []string{"Debe confirmar que la información es correcta"}, result.Validation.Errors)
	assert.Equal(t, 5, result.Session.CurrentStep)
	assert.Equal(t, "Revisá los campos marcados y volvé a enviar el paso.", result.Feedback)

	// No writes of any kind
	repo.AssertNotCalled(t, "CreateStep", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "UpdateStep", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "UpdateSession", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestSubmitStepResubmissionUpdatesExistingRow(t *testing.T) {
	repo := new(MockOnboardingRepo)
	uc := newOnboardingUC(repo, new(MockProfileRepo), new(MockCompanyRepo), new(MockObjectiveRepo))

	session := inProgressSession()
	session.CurrentStep = 2
	repo.On("GetSession", mock.Anything, testUserID, testSessionID).Return(session, nil).Once()

	existing := &domain.OnboardingProgress{
		ID:         "33333333-3333-3333-3333-333333333333",
		SessionID:  testSessionID,
		StepNumber: 1,
		Completed:  true,
		Version:    4,
	}
	repo.On("GetStep", mock.Anything, testUserID, testSessionID, 1).Return(existing, nil).Once()
	repo.On("UpdateStep", mock.Anything, testUserID, testSessionID, 1, int64(4), mock.Anything).
		Return(existing, nil).Once()

	repo.On("GetSessionWithProgress", mock.Anything, testUserID, testSessionID).Return(&domain.SessionWithProgress{
		Session:  session,
		Progress: []domain.OnboardingProgress{{StepNumber: 1, Completed: true}},
	}, nil).Once()

	// Resubmitting step 1 while the cursor sits on step 2 must not advance it
	repo.On("UpdateSession", mock.Anything, testUserID, testSessionID, int64(1),
		mock.MatchedBy(func(u domain.SessionUpdate) bool {
			return u.CurrentStep == nil
		})).Return(session, nil).Once()

	result, err := uc.SubmitStep(authedCtx(testUserID), testUserID, step1Request())
	assert.NoError(t, err)
	assert.True(t, result.Validation.IsValid)
	repo.AssertExpectations(t)
}

func TestSubmitStepVersionConflict(t *testing.T) {
	repo := new(MockOnboardingRepo)
	uc := newOnboardingUC(repo, new(MockProfileRepo), new(MockCompanyRepo), new(MockObjectiveRepo))

	session := inProgressSession()
	repo.On("GetSession", mock.Anything, testUserID, testSessionID).Return(session, nil).Once()
	repo.On("GetStep", mock.Anything, testUserID, testSessionID, 1).Return(nil, domain.ErrNotFound).Once()
	repo.On("CreateStep", mock.Anything, testUserID, mock.Anything).Return(nil).Once()
	repo.On("GetSessionWithProgress", mock.Anything, testUserID, testSessionID).Return(&domain.SessionWithProgress{
		Session:  session,
		Progress: []domain.OnboardingProgress{{StepNumber: 1, Completed: true}},
	}, nil).Once()
	repo.On("UpdateSession", mock.Anything, testUserID, testSessionID, int64(1), mock.Anything).
		Return(nil, domain.ErrVersionConflict).Once()

	_, err := uc.SubmitStep(authedCtx(testUserID), testUserID, step1Request())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "modificada por otra solicitud")
	repo.AssertExpectations(t)
}

func TestSubmitStepRejectsNonWritableStates(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*domain.OnboardingSession)
		wantMsg string
	}{
		{"completed", func(s *domain.OnboardingSession) {
			s.Status = domain.SessionCompleted
		}, "ya fue completada"},
		{"abandoned", func(s *domain.OnboardingSession) {
			s.Status = domain.SessionAbandoned
		}, "abandonada"},
		{"expired", func(s *domain.OnboardingSession) {
			s.ExpiresAt = time.Now().Add(-time.Hour)
		}, "expiró"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(MockOnboardingRepo)
			uc := newOnboardingUC(repo, new(MockProfileRepo), new(MockCompanyRepo), new(MockObjectiveRepo))

			session := inProgressSession()
			tc.mutate(session)
			repo.On("GetSession", mock.Anything, testUserID, testSessionID).Return(session, nil).Once()

			_, err := uc.SubmitStep(authedCtx(testUserID), testUserID, step1Request())
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantMsg)
			repo.AssertNotCalled(t, "CreateStep", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestSubmitStepBounds(t *testing.T) {
	repo := new(MockOnboardingRepo)
	uc := newOnboardingUC(repo, new(MockProfileRepo), new(MockCompanyRepo), new(MockObjectiveRepo))

	session := inProgressSession()
	repo.On("GetSession", mock.Anything, testUserID, testSessionID).Return(session, nil).Once()

	req := step1Request()
	req.StepNumber = 6
	_, err := uc.SubmitStep(authedCtx(testUserID), testUserID, req)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "entre 1 y 5")
}

func TestFinalStepMaterializesWorkspace(t *testing.T) {
	repo := new(MockOnboardingRepo)
	profiles := new(MockProfileRepo)
	companies := new(MockCompanyRepo)
	objectives := new(MockObjectiveRepo)
	uc := newOnboardingUC(repo, profiles, companies, objectives)

	session := inProgressSession()
	session.CurrentStep = 5
	session.CompletionPercentage = 80
	session.FormData = map[string]domain.StepData{
		"personal_info": {
			"full_name": "Ana García",
			"job_title": "Head of Product",
		},
		"company_info": {
			"company_name": "Acme SA",
			"company_size": "11-50",
			"description":  "Logística",
			"country":      "Argentina",
		},
		"first_objective": {
			"objective_title":       "Reducir churn",
			"objective_description": "Del 5% al 3%",
			"target_quarter":        "2026-Q4",
			"success_metric":        "Churn <= 3%",
		},
		"preferences": {
			"ai_assistance_level":    "moderate",
			"notification_frequency": "weekly",
		},
	}

	repo.On("GetSession", mock.Anything, testUserID, testSessionID).Return(session, nil).Once()
	repo.On("GetStep", mock.Anything, testUserID, testSessionID, 5).Return(nil, domain.ErrNotFound).Once()
	repo.On("CreateStep", mock.Anything, testUserID, mock.Anything).Return(nil).Once()
	repo.On("GetSessionWithProgress", mock.Anything, testUserID, testSessionID).Return(&domain.SessionWithProgress{
		Session: session,
		Progress: []domain.OnboardingProgress{
			{StepNumber: 1, Completed: true}, {StepNumber: 2, Completed: true},
			{StepNumber: 3, Completed: true}, {StepNumber: 4, Completed: true},
			{StepNumber: 5, Completed: true},
		},
	}, nil).Once()

	companies.On("Create", mock.Anything, testUserID, mock.MatchedBy(func(c *domain.Company) bool {
		return c.Name == "Acme SA" && c.Slug == "acme-sa" && c.CreatedBy == testUserID
	})).Run(func(args mock.Arguments) {
		args.Get(2).(*domain.Company).ID = "44444444-4444-4444-4444-444444444444"
	}).Return(nil).Once()

	profile := &domain.Profile{ID: testUserID, Email: "ana@acme.example", Role: domain.RoleEmpleado, Version: 1}
	profiles.On("GetByID", mock.Anything, testUserID, testUserID).Return(profile, nil).Once()
	profiles.On("Update", mock.Anything, testUserID, mock.MatchedBy(func(p *domain.Profile) bool {
		return p.FullName == "Ana García" && p.JobTitle != nil && *p.JobTitle == "Head of Product"
	})).Return(nil).Once()
	profiles.On("SetCompany", mock.Anything, testUserID, testUserID,
		"44444444-4444-4444-4444-444444444444", domain.RoleCorporativo).Return(nil).Once()
	profiles.On("MarkOnboardingCompleted", mock.Anything, testUserID, testUserID).Return(nil).Once()

	objectives.On("Create", mock.Anything, testUserID, mock.MatchedBy(func(o *domain.Objective) bool {
		return o.Title == "Reducir churn" && o.Quarter == "2026-Q4" &&
			o.CompanyID == "44444444-4444-4444-4444-444444444444" &&
			o.Status == domain.ObjectiveActive
	})).Return(nil).Once()

	completed := *session
	completed.Status = domain.SessionCompleted
	completed.CompletionPercentage = 100
	repo.On("UpdateSession", mock.Anything, testUserID, testSessionID, int64(1),
		mock.MatchedBy(func(u domain.SessionUpdate) bool {
			return u.Status != nil && *u.Status == domain.SessionCompleted &&
				u.CompletionPercentage != nil && *u.CompletionPercentage == 100
		})).Return(&completed, nil).Once()

	req := &domain.SubmitStepRequest{
		SessionID:  testSessionID,
		StepNumber: 5,
		StepData:   domain.StepData{"confirmed": "true"},
		Completed:  true,
	}
	result, err := uc.SubmitStep(authedCtx(testUserID), testUserID, req)
	assert.NoError(t, err)
	assert.Equal(t, domain.SessionCompleted, result.Session.Status)
	assert.Equal(t, 100, result.Session.CompletionPercentage)
	assert.Nil(t, result.NextStep)

	repo.AssertExpectations(t)
	profiles.AssertExpectations(t)
	companies.AssertExpectations(t)
	objectives.AssertExpectations(t)
}

func TestStartSessionResumesActive(t *testing.T) {
	repo := new(MockOnboardingRepo)
	uc := newOnboardingUC(repo, new(MockProfileRepo), new(MockCompanyRepo), new(MockObjectiveRepo))

	active := inProgressSession()
	repo.On("GetActiveSessionByUser", mock.Anything, testUserID).Return(active, nil).Once()

	session, err := uc.StartSession(authedCtx(testUserID), testUserID, 0)
	assert.NoError(t, err)
	assert.Equal(t, active.ID, session.ID)
	repo.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything, mock.Anything)
}

func TestStartSessionCreatesWhenNoneActive(t *testing.T) {
	repo := new(MockOnboardingRepo)
	uc := newOnboardingUC(repo, new(MockProfileRepo), new(MockCompanyRepo), new(MockObjectiveRepo))

	repo.On("GetActiveSessionByUser", mock.Anything, testUserID).Return(nil, domain.ErrNotFound).Once()
	created := inProgressSession()
	repo.On("CreateSession", mock.Anything, testUserID, 5).Return(created, nil).Once()

	session, err := uc.StartSession(authedCtx(testUserID), testUserID, 0)
	assert.NoError(t, err)
	assert.Equal(t, created.ID, session.ID)
	repo.AssertExpectations(t)
}

func TestGetStatusProjection(t *testing.T) {
	repo := new(MockOnboardingRepo)
	uc := newOnboardingUC(repo, new(MockProfileRepo), new(MockCompanyRepo), new(MockObjectiveRepo))

	t.Run("no session reads as not_started", func(t *testing.T) {
		repo.On("GetLatestSessionByUser", mock.Anything, testUserID).Return(nil, domain.ErrNotFound).Once()

		status, err := uc.GetStatus(authedCtx(testUserID), testUserID)
		assert.NoError(t, err)
		assert.Equal(t, domain.SessionNotStarted, status.Status)
		assert.Empty(t, status.CompletedSteps)
	})

	t.Run("in-flight session reports projections", func(t *testing.T) {
		session := inProgressSession()
		session.CurrentStep = 3
		session.CompletionPercentage = 40
		repo.On("GetLatestSessionByUser", mock.Anything, testUserID).Return(session, nil).Once()
		repo.On("GetSessionWithProgress", mock.Anything, testUserID, testSessionID).Return(&domain.SessionWithProgress{
			Session: session,
			Progress: []domain.OnboardingProgress{
				{StepNumber: 1, Completed: true},
				{StepNumber: 2, Completed: true},
			},
		}, nil).Once()

		status, err := uc.GetStatus(authedCtx(testUserID), testUserID)
		assert.NoError(t, err)
		assert.Equal(t, domain.SessionInProgress, status.Status)
		assert.Equal(t, []int{1, 2}, status.CompletedSteps)
		assert.Equal(t, 60, status.CompletionPercentage)
		// Steps 4 and 5 remain: 3+2 minutes
		assert.Equal(t, 5, status.EstimatedTimeRemaining)
	})
}

func TestReactivateSession(t *testing.T) {
	t.Run("abandoned comes back with a fresh TTL", func(t *testing.T) {
		repo := new(MockOnboardingRepo)
		uc := newOnboardingUC(repo, new(MockProfileRepo), new(MockCompanyRepo), new(MockObjectiveRepo))

		session := inProgressSession()
		session.Status = domain.SessionAbandoned
		repo.On("GetSession", mock.Anything, testUserID, testSessionID).Return(session, nil).Once()

		reactivated := *session
		reactivated.Status = domain.SessionInProgress
		repo.On("UpdateSession", mock.Anything, testUserID, testSessionID, int64(1),
			mock.MatchedBy(func(u domain.SessionUpdate) bool {
				return u.Status != nil && *u.Status == domain.SessionInProgress &&
					u.ExpiresAt != nil && u.ExpiresAt.After(time.Now().Add(6*24*time.Hour))
			})).Return(&reactivated, nil).Once()

		result, err := uc.ReactivateSession(authedCtx(testUserID), testUserID, testSessionID)
		assert.NoError(t, err)
		assert.Equal(t, domain.SessionInProgress, result.Status)
		repo.AssertExpectations(t)
	})

	t.Run("completed is terminal", func(t *testing.T) {
		repo := new(MockOnboardingRepo)
		uc := newOnboardingUC(repo, new(MockProfileRepo), new(MockCompanyRepo), new(MockObjectiveRepo))

		session := inProgressSession()
		session.Status = domain.SessionCompleted
		repo.On("GetSession", mock.Anything, testUserID, testSessionID).Return(session, nil).Once()

		_, err := uc.ReactivateSession(authedCtx(testUserID), testUserID, testSessionID)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "ya fue completada")
	})

	t.Run("expired requires starting over", func(t *testing.T) {
		repo := new(MockOnboardingRepo)
		uc := newOnboardingUC(repo, new(MockProfileRepo), new(MockCompanyRepo), new(MockObjectiveRepo))

		session := inProgressSession()
		session.Status = domain.SessionAbandoned
		session.ExpiresAt = time.Now().Add(-time.Hour)
		repo.On("GetSession", mock.Anything, testUserID, testSessionID).Return(session, nil).Once()

		_, err := uc.ReactivateSession(authedCtx(testUserID), testUserID, testSessionID)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "expiró")
	})
}

func TestAbandonSessionIsIdempotent(t *testing.T) {
	repo := new(MockOnboardingRepo)
	uc := newOnboardingUC(repo, new(MockProfileRepo), new(MockCompanyRepo), new(MockObjectiveRepo))

	session := inProgressSession()
	session.Status = domain.SessionAbandoned
	repo.On("GetSession", mock.Anything, testUserID, testSessionID).Return(session, nil).Once()

	err := uc.AbandonSession(authedCtx(testUserID), testUserID, testSessionID)
	assert.NoError(t, err)
	repo.AssertNotCalled(t, "UpdateSession", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSuggestStepDataHeuristics(t *testing.T) {
	repo := new(MockOnboardingRepo)
	uc := newOnboardingUC(repo, new(MockProfileRepo), new(MockCompanyRepo), new(MockObjectiveRepo))

	session := inProgressSession()
	session.FormData = map[string]domain.StepData{
		"personal_info": {
			"primary_goal":        "Duplicar la retención",
			"experience_with_okr": "none",
			"urgency_level":       "high",
		},
	}
	repo.On("GetSession", mock.Anything, testUserID, testSessionID).Return(session, nil).Twice()

	t.Run("step 3 derives the first objective", func(t *testing.T) {
		suggestion, err := uc.SuggestStepData(authedCtx(testUserID), testUserID, testSessionID, 3)
		assert.NoError(t, err)
		assert.False(t, suggestion.Enhanced)
		assert.Equal(t, "Duplicar la retención", suggestion.Suggestions["objective_title"])
		assert.NotEmpty(t, suggestion.Suggestions["target_quarter"])
	})

	t.Run("step 4 maps experience to assistance level", func(t *testing.T) {
		suggestion, err := uc.SuggestStepData(authedCtx(testUserID), testUserID, testSessionID, 4)
		assert.NoError(t, err)
		assert.Equal(t, "full", suggestion.Suggestions["ai_assistance_level"])
		assert.Equal(t, "daily", suggestion.Suggestions["notification_frequency"])
	})
}

// AI degradation

type failingGenerator struct{}

func (failingGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return "", errors.New("upstream timeout")
}

func (failingGenerator) Health(ctx context.Context) error {
	return errors.New("upstream timeout")
}

type cannedGenerator struct {
	out string
}

func (g cannedGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return g.out, nil
}

func (cannedGenerator) Health(ctx context.Context) error { return nil }

func TestEnhanceTextDegradesWithoutAI(t *testing.T) {
	uc := usecase.NewAIUsecase(failingGenerator{}, nil, newValidator(), 60, 20)

	result, err := uc.EnhanceText(authedCtx(testUserID), testUserID, &domain.EnhanceTextRequest{
		Text: "Mejorar la retención de clientes",
	})
	assert.NoError(t, err)
	assert.False(t, result.AIUsed)
	assert.Equal(t, "Mejorar la retención de clientes", result.Original)
	assert.NotEmpty(t, result.Enhanced)
}

func TestEnhanceTextUsesModelWhenAvailable(t *testing.T) {
	uc := usecase.NewAIUsecase(cannedGenerator{out: "Aumentar la retención de clientes al 95%"}, nil, newValidator(), 60, 20)

	result, err := uc.EnhanceText(authedCtx(testUserID), testUserID, &domain.EnhanceTextRequest{
		Text: "Mejorar la retención de clientes",
		Tone: "concise",
	})
	assert.NoError(t, err)
	assert.True(t, result.AIUsed)
	assert.Equal(t, "Aumentar la retención de clientes al 95%", result.Enhanced)
}

func TestSuggestObjectiveParsesThreeLines(t *testing.T) {
	uc := usecase.NewAIUsecase(cannedGenerator{out: "Título\nDescripción\nMétrica"}, nil, newValidator(), 60, 20)

	suggestion, err := uc.SuggestObjective(authedCtx(testUserID), testUserID, &domain.SuggestObjectiveRequest{
		Topic: "retención de clientes",
	})
	assert.NoError(t, err)
	assert.True(t, suggestion.AIUsed)
	assert.Equal(t, "Título", suggestion.Title)
	assert.Equal(t, "Métrica", suggestion.SuccessMetric)
}

func TestAIHealthSurfacesOutage(t *testing.T) {
	uc := usecase.NewAIUsecase(failingGenerator{}, nil, newValidator(), 60, 20)
	assert.Error(t, uc.Health(context.Background()))

	healthy := usecase.NewAIUsecase(cannedGenerator{out: "pong"}, nil, newValidator(), 60, 20)
	assert.NoError(t, healthy.Health(context.Background()))
}
