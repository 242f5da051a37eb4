package usecase

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Montinou/stratixV2-sub007/internal/domain"
	"github.com/Montinou/stratixV2-sub007/pkg/apperror"

	"github.com/xuri/excelize/v2"
)

type analyticsUsecase struct {
	analytics domain.AnalyticsRepository
	profiles  domain.ProfileRepository
}

func NewAnalyticsUsecase(analytics domain.AnalyticsRepository, profiles domain.ProfileRepository) domain.AnalyticsUsecase {
	return &analyticsUsecase{
		analytics: analytics,
		profiles:  profiles,
	}
}

// scopeFilter pins the filter to the caller's company. Empleados only see
// their own objectives.
func (u *analyticsUsecase) scopeFilter(ctx context.Context, userID string, filter *domain.AnalyticsFilter) (*domain.AnalyticsFilter, error) {
	if filter == nil {
		filter = &domain.AnalyticsFilter{}
	}

	profile, err := u.profiles.GetByID(ctx, userID, userID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to load profile: %w", err))
	}
	if profile.CompanyID == nil {
		return nil, apperror.Conflict("Necesitás pertenecer a una empresa para ver analíticas")
	}
	filter.CompanyID = *profile.CompanyID
	if profile.Role == domain.RoleEmpleado {
		filter.OwnerID = userID
	}
	return filter, nil
}

func (u *analyticsUsecase) GetDashboard(ctx context.Context, userID string, filter *domain.AnalyticsFilter) (*domain.DashboardStats, []domain.QuarterRollup, error) {
	if err := requireUser(ctx, userID); err != nil {
		return nil, nil, err
	}
	filter, err := u.scopeFilter(ctx, userID, filter)
	if err != nil {
		return nil, nil, err
	}

	stats, err := u.analytics.GetDashboardStats(ctx, userID, filter)
	if err != nil {
		return nil, nil, apperror.Internal(fmt.Errorf("failed to get dashboard stats: %w", err))
	}
	rollups, err := u.analytics.GetQuarterRollups(ctx, userID, filter)
	if err != nil {
		return nil, nil, apperror.Internal(fmt.Errorf("failed to get quarter rollups: %w", err))
	}
	return stats, rollups, nil
}

func (u *analyticsUsecase) GetOnboardingFunnel(ctx context.Context, userID string, weeks int) (*domain.OnboardingFunnel, error) {
	if err := requireUser(ctx, userID); err != nil {
		return nil, err
	}

	profile, err := u.profiles.GetByID(ctx, userID, userID)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to load profile: %w", err))
	}
	if profile.Role != domain.RoleCorporativo {
		return nil, apperror.Forbidden("Solo un rol corporativo puede ver el funnel de onboarding")
	}

	funnel, err := u.analytics.GetOnboardingFunnel(ctx, userID, weeks)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("failed to get onboarding funnel: %w", err))
	}
	return funnel, nil
}

// ExportObjectivesXLSX builds the objectives workbook and returns its bytes
// plus a timestamped filename
func (u *analyticsUsecase) ExportObjectivesXLSX(ctx context.Context, userID string, filter *domain.AnalyticsFilter) ([]byte, string, error) {
	if err := requireUser(ctx, userID); err != nil {
		return nil, "", err
	}
	filter, err := u.scopeFilter(ctx, userID, filter)
	if err != nil {
		return nil, "", err
	}

	rows, err := u.analytics.FetchObjectiveExportRows(ctx, userID, filter)
	if err != nil {
		return nil, "", apperror.Internal(fmt.Errorf("failed to fetch export rows: %w", err))
	}

	data, err := buildObjectivesWorkbook(rows)
	if err != nil {
		return nil, "", apperror.Internal(err)
	}

	filename := fmt.Sprintf("objetivos_%s.xlsx", time.Now().Format("20060102_150405"))
	return data, filename, nil
}

var exportHeaders = []string{
	"OBJETIVO", "RESPONSABLE", "TRIMESTRE", "ESTADO", "PROGRESO (%)", "INICIATIVAS", "ETIQUETAS", "CREADO",
}

func buildObjectivesWorkbook(rows []domain.ObjectiveExportRow) ([]byte, error) {
	f := excelize.NewFile()
	sheetName := "Objetivos"
	f.SetSheetName("Sheet1", sheetName)

	for i, header := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endHeader, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	f.SetCellStyle(sheetName, "A1", endHeader, headerStyle)

	for rowIdx, row := range rows {
		values := []any{
			row.Title,
			row.OwnerName,
			row.Quarter,
			row.Status,
			row.Progress,
			row.Initiatives,
			strings.Join(row.Tags, ", "),
			row.CreatedAt.Format("2006-01-02"),
		}
		for colIdx, value := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	// Filterable, frozen header row
	if len(rows) > 0 {
		endCell, _ := excelize.CoordinatesToCellName(len(exportHeaders), len(rows)+1)
		if err := f.AutoFilter(sheetName, "A1:"+endCell, nil); err != nil {
			return nil, fmt.Errorf("failed to set autofilter: %w", err)
		}
	}
	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("failed to freeze header row: %w", err)
	}

	for i := range exportHeaders {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 22)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
