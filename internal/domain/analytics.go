package domain

import (
	"context"
	"time"
)

// ============================================================================
// Dashboard Filter
// ============================================================================

// AnalyticsFilter represents all possible filter parameters for dashboard queries
type AnalyticsFilter struct {
	CompanyID string   `json:"company_id,omitempty"`
	OwnerID   string   `json:"owner_id,omitempty"`
	Quarters  []string `json:"quarters,omitempty"` // e.g. 2026-Q1, 2026-Q2
	Statuses  []string `json:"statuses,omitempty"` // objective statuses

	CreatedAfter  *time.Time `json:"created_after,omitempty"`
	CreatedBefore *time.Time `json:"created_before,omitempty"`

	// Pagination & Sorting (export listing only)
	Page      int    `json:"page"`
	PageSize  int    `json:"page_size"`
	SortBy    string `json:"sort_by,omitempty"`    // created_at, progress, quarter
	SortOrder string `json:"sort_order,omitempty"` // asc, desc
}

// ============================================================================
// Dashboard Stats
// ============================================================================

// DashboardStats is the aggregate card data for the analytics dashboard
type DashboardStats struct {
	TotalObjectives     int64            `json:"total_objectives"`
	ObjectivesByStatus  map[string]int64 `json:"objectives_by_status"`
	TotalInitiatives    int64            `json:"total_initiatives"`
	InitiativesByStatus map[string]int64 `json:"initiatives_by_status"`
	TotalActivities     int64            `json:"total_activities"`
	ActivitiesDone      int64            `json:"activities_done"`
	AverageProgress     float64          `json:"average_progress"`
}

// QuarterRollup aggregates objective progress per quarter
type QuarterRollup struct {
	Quarter         string  `json:"quarter"`
	Objectives      int64   `json:"objectives"`
	Completed       int64   `json:"completed"`
	AverageProgress float64 `json:"average_progress"`
}

// ============================================================================
// Onboarding Funnel
// ============================================================================

// FunnelWeek aggregates session outcomes for one ISO week
type FunnelWeek struct {
	WeekStart time.Time `json:"week_start"`
	Started   int64     `json:"started"`
	Completed int64     `json:"completed"`
	Abandoned int64     `json:"abandoned"`
	Expired   int64     `json:"expired"`
}

// OnboardingFunnel is the wizard conversion report
type OnboardingFunnel struct {
	Weeks                 []FunnelWeek     `json:"weeks"`
	AvgCompletionMinutes  float64          `json:"avg_completion_minutes"`
	DropOffByStep         map[int]int64    `json:"drop_off_by_step"`
	SessionsByStatus      map[string]int64 `json:"sessions_by_status"`
	CompletionRatePercent float64          `json:"completion_rate_percent"`
}

// ============================================================================
// Export
// ============================================================================

// ObjectiveExportRow is one row of the XLSX objective export
type ObjectiveExportRow struct {
	Title       string   `json:"title"`
	OwnerName   string   `json:"owner_name"`
	Quarter     string   `json:"quarter"`
	Status      string   `json:"status"`
	Progress    int      `json:"progress"`
	Initiatives int64    `json:"initiatives"`
	Tags        []string `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
}

// ============================================================================
// Interfaces
// ============================================================================

type AnalyticsRepository interface {
	GetDashboardStats(ctx context.Context, userID string, filter *AnalyticsFilter) (*DashboardStats, error)
	GetQuarterRollups(ctx context.Context, userID string, filter *AnalyticsFilter) ([]QuarterRollup, error)
	GetOnboardingFunnel(ctx context.Context, userID string, weeks int) (*OnboardingFunnel, error)
	FetchObjectiveExportRows(ctx context.Context, userID string, filter *AnalyticsFilter) ([]ObjectiveExportRow, error)
}

type AnalyticsUsecase interface {
	GetDashboard(ctx context.Context, userID string, filter *AnalyticsFilter) (*DashboardStats, []QuarterRollup, error)
	GetOnboardingFunnel(ctx context.Context, userID string, weeks int) (*OnboardingFunnel, error)
	ExportObjectivesXLSX(ctx context.Context, userID string, filter *AnalyticsFilter) ([]byte, string, error)
}
