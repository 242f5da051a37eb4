package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Montinou/stratixV2-sub007/internal/domain"
	"github.com/Montinou/stratixV2-sub007/pkg/database"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/lib/pq"
)

type analyticsRepo struct {
	rls  *database.RLSPool
	psql squirrel.StatementBuilderType
}

func NewAnalyticsRepository(rls *database.RLSPool) domain.AnalyticsRepository {
	return &analyticsRepo{
		rls:  rls,
		psql: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// applyObjectiveFilter translates the dashboard filter into WHERE clauses
func applyObjectiveFilter(b squirrel.SelectBuilder, filter *domain.AnalyticsFilter, prefix string) squirrel.SelectBuilder {
	if filter == nil {
		return b
	}
	if filter.CompanyID != "" {
		b = b.Where(squirrel.Eq{prefix + "company_id": filter.CompanyID})
	}
	if filter.OwnerID != "" {
		b = b.Where(squirrel.Eq{prefix + "owner_id": filter.OwnerID})
	}
	if len(filter.Quarters) > 0 {
		b = b.Where(squirrel.Eq{prefix + "quarter": filter.Quarters})
	}
	if len(filter.Statuses) > 0 {
		b = b.Where(squirrel.Eq{prefix + "status": filter.Statuses})
	}
	if filter.CreatedAfter != nil {
		b = b.Where(squirrel.GtOrEq{prefix + "created_at": *filter.CreatedAfter})
	}
	if filter.CreatedBefore != nil {
		b = b.Where(squirrel.LtOrEq{prefix + "created_at": *filter.CreatedBefore})
	}
	return b
}

type statusCountRow struct {
	Status string `db:"status"`
	Count  int64  `db:"count"`
}

func (r *analyticsRepo) GetDashboardStats(ctx context.Context, userID string, filter *domain.AnalyticsFilter) (*domain.DashboardStats, error) {
	stats := &domain.DashboardStats{
		ObjectivesByStatus:  map[string]int64{},
		InitiativesByStatus: map[string]int64{},
	}

	err := r.rls.WithUserContext(ctx, userID, func(ctx context.Context, q database.Querier) error {
		// Objectives by status + overall average progress
		objQuery, objArgs, err := applyObjectiveFilter(
			r.psql.Select("status", "COUNT(*) AS count").From("objectives"), filter, "").
			GroupBy("status").ToSql()
		if err != nil {
			return err
		}
		var objRows []statusCountRow
		if err := pgxscan.Select(ctx, q, &objRows, objQuery, objArgs...); err != nil {
			return fmt.Errorf("failed to count objectives: %w", err)
		}
		for _, row := range objRows {
			stats.ObjectivesByStatus[row.Status] = row.Count
			stats.TotalObjectives += row.Count
		}

		avgQuery, avgArgs, err := applyObjectiveFilter(
			r.psql.Select("COALESCE(AVG(progress), 0) AS avg").From("objectives"), filter, "").ToSql()
		if err != nil {
			return err
		}
		if err := pgxscan.Get(ctx, q, &stats.AverageProgress, avgQuery, avgArgs...); err != nil {
			return fmt.Errorf("failed to average objective progress: %w", err)
		}

		// Initiatives by status, scoped to the filtered objectives
		iniQuery, iniArgs, err := applyObjectiveFilter(
			r.psql.Select("i.status", "COUNT(*) AS count").
				From("initiatives i").
				Join("objectives o ON o.id = i.objective_id"), filter, "o.").
			GroupBy("i.status").ToSql()
		if err != nil {
			return err
		}
		var iniRows []statusCountRow
		if err := pgxscan.Select(ctx, q, &iniRows, iniQuery, iniArgs...); err != nil {
			return fmt.Errorf("failed to count initiatives: %w", err)
		}
		for _, row := range iniRows {
			stats.InitiativesByStatus[row.Status] = row.Count
			stats.TotalInitiatives += row.Count
		}

		// Activities total and done
		actQuery, actArgs, err := applyObjectiveFilter(
			r.psql.Select(
				"COUNT(*) AS total",
				"COUNT(*) FILTER (WHERE a.done) AS done",
			).
				From("activities a").
				Join("initiatives i ON i.id = a.initiative_id").
				Join("objectives o ON o.id = i.objective_id"), filter, "o.").ToSql()
		if err != nil {
			return err
		}
		var actRow struct {
			Total int64 `db:"total"`
			Done  int64 `db:"done"`
		}
		if err := pgxscan.Get(ctx, q, &actRow, actQuery, actArgs...); err != nil {
			return fmt.Errorf("failed to count activities: %w", err)
		}
		stats.TotalActivities = actRow.Total
		stats.ActivitiesDone = actRow.Done

		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *analyticsRepo) GetQuarterRollups(ctx context.Context, userID string, filter *domain.AnalyticsFilter) ([]domain.QuarterRollup, error) {
	query, args, err := applyObjectiveFilter(
		r.psql.Select(
			"quarter",
			"COUNT(*) AS objectives",
			"COUNT(*) FILTER (WHERE status = 'completed') AS completed",
			"COALESCE(AVG(progress), 0) AS average_progress",
		).From("objectives"), filter, "").
		GroupBy("quarter").
		OrderBy("quarter ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	var rollups []domain.QuarterRollup
	err = r.rls.WithUserContext(ctx, userID, func(ctx context.Context, q database.Querier) error {
		return pgxscan.Select(ctx, q, &rollups, query, args...)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get quarter rollups: %w", err)
	}
	return rollups, nil
}

func (r *analyticsRepo) GetOnboardingFunnel(ctx context.Context, userID string, weeks int) (*domain.OnboardingFunnel, error) {
	if weeks <= 0 || weeks > 52 {
		weeks = 12
	}
	since := time.Now().AddDate(0, 0, -7*weeks)

	funnel := &domain.OnboardingFunnel{
		DropOffByStep:    map[int]int64{},
		SessionsByStatus: map[string]int64{},
	}

	err := r.rls.WithUserContext(ctx, userID, func(ctx context.Context, q database.Querier) error {
		// Expiry is computed on read, so the funnel applies the same lazy
		// rule: an in_progress row past its deadline counts as expired
		const effectiveStatus = `
			CASE WHEN status = 'in_progress' AND expires_at < NOW() THEN 'expired'
			     ELSE status END`

		weekQuery := `
			SELECT date_trunc('week', created_at) AS week_start,
			       COUNT(*) AS started,
			       COUNT(*) FILTER (WHERE ` + effectiveStatus + ` = 'completed') AS completed,
			       COUNT(*) FILTER (WHERE ` + effectiveStatus + ` = 'abandoned') AS abandoned,
			       COUNT(*) FILTER (WHERE ` + effectiveStatus + ` = 'expired') AS expired
			FROM onboarding_sessions
			WHERE created_at >= $1
			GROUP BY week_start
			ORDER BY week_start ASC`
		if err := pgxscan.Select(ctx, q, &funnel.Weeks, weekQuery, since); err != nil {
			return fmt.Errorf("failed to bucket funnel weeks: %w", err)
		}

		statusQuery := `
			SELECT ` + effectiveStatus + ` AS status, COUNT(*) AS count
			FROM onboarding_sessions
			WHERE created_at >= $1
			GROUP BY 1`
		var statusRows []statusCountRow
		if err := pgxscan.Select(ctx, q, &statusRows, statusQuery, since); err != nil {
			return fmt.Errorf("failed to count sessions by status: %w", err)
		}
		var total, completed int64
		for _, row := range statusRows {
			funnel.SessionsByStatus[row.Status] = row.Count
			total += row.Count
			if row.Status == string(domain.SessionCompleted) {
				completed = row.Count
			}
		}
		if total > 0 {
			funnel.CompletionRatePercent = float64(completed) * 100 / float64(total)
		}

		avgQuery := `
			SELECT COALESCE(AVG(EXTRACT(EPOCH FROM updated_at - created_at) / 60), 0)
			FROM onboarding_sessions
			WHERE status = 'completed' AND created_at >= $1`
		if err := q.QueryRow(ctx, avgQuery, since).Scan(&funnel.AvgCompletionMinutes); err != nil {
			return fmt.Errorf("failed to average completion time: %w", err)
		}

		dropQuery := `
			SELECT current_step AS step, COUNT(*) AS count
			FROM onboarding_sessions
			WHERE created_at >= $1
			  AND (status = 'abandoned' OR (status = 'in_progress' AND expires_at < NOW()))
			GROUP BY current_step`
		var dropRows []struct {
			Step  int   `db:"step"`
			Count int64 `db:"count"`
		}
		if err := pgxscan.Select(ctx, q, &dropRows, dropQuery, since); err != nil {
			return fmt.Errorf("failed to compute drop-off distribution: %w", err)
		}
		for _, row := range dropRows {
			funnel.DropOffByStep[row.Step] = row.Count
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return funnel, nil
}

func (r *analyticsRepo) FetchObjectiveExportRows(ctx context.Context, userID string, filter *domain.AnalyticsFilter) ([]domain.ObjectiveExportRow, error) {
	b := applyObjectiveFilter(
		r.psql.Select(
			"o.title",
			"COALESCE(p.full_name, '') AS owner_name",
			"o.quarter",
			"o.status",
			"o.progress",
			"(SELECT COUNT(*) FROM initiatives i WHERE i.objective_id = o.id) AS initiatives",
			"o.tags",
			"o.created_at",
		).
			From("objectives o").
			LeftJoin("profiles p ON p.id = o.owner_id"), filter, "o.")

	sortBy := "o.created_at"
	switch filter.SortBy {
	case "progress":
		sortBy = "o.progress"
	case "quarter":
		sortBy = "o.quarter"
	}
	order := "DESC"
	if filter.SortOrder == "asc" {
		order = "ASC"
	}
	b = b.OrderBy(sortBy + " " + order)

	if filter.PageSize > 0 {
		offset := 0
		if filter.Page > 1 {
			offset = (filter.Page - 1) * filter.PageSize
		}
		b = b.Limit(uint64(filter.PageSize)).Offset(uint64(offset))
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}

	var rows []domain.ObjectiveExportRow
	err = r.rls.WithUserContext(ctx, userID, func(ctx context.Context, q database.Querier) error {
		pgRows, err := q.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer pgRows.Close()

		for pgRows.Next() {
			var row domain.ObjectiveExportRow
			if err := pgRows.Scan(
				&row.Title, &row.OwnerName, &row.Quarter, &row.Status, &row.Progress,
				&row.Initiatives, pq.Array(&row.Tags), &row.CreatedAt,
			); err != nil {
				return err
			}
			rows = append(rows, row)
		}
		return pgRows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch export rows: %w", err)
	}
	return rows, nil
}
