package service

import (
	"context"
	"strings"
	"time"

	"github.com/smallbiznis/facturo/internal/clock"
	dashboarddomain "github.com/smallbiznis/facturo/internal/dashboard/domain"
	"github.com/smallbiznis/facturo/internal/periods"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	topGroupLimit   = 10
	trailingMonths  = 6
	statusPaidValue = "paid"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	clock clock.Clock
}

func New(p Params) dashboarddomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("dashboard.service"),
		clock: p.Clock,
	}
}

func (s *Service) Get(ctx context.Context, req dashboarddomain.DashboardRequest) (dashboarddomain.DashboardResponse, error) {
	companyID := strings.TrimSpace(req.CompanyID)
	if companyID == "" {
		return dashboarddomain.DashboardResponse{}, dashboarddomain.ErrCompanyRequired
	}

	days, err := periods.ParseWindow(req.Period)
	if err != nil {
		return dashboarddomain.DashboardResponse{}, dashboarddomain.ErrInvalidPeriod
	}

	now := s.clock.Now()
	start := now.AddDate(0, 0, -days)
	prevStart := now.AddDate(0, 0, -2*days)

	current, err := s.loadTotals(ctx, companyID, start, now)
	if err != nil {
		return dashboarddomain.DashboardResponse{}, err
	}
	previous, err := s.loadTotals(ctx, companyID, prevStart, start)
	if err != nil {
		return dashboarddomain.DashboardResponse{}, err
	}

	byStatus, err := s.loadStatusCounts(ctx, companyID, start, now)
	if err != nil {
		return dashboarddomain.DashboardResponse{}, err
	}

	overdue, err := s.loadOverdueCount(ctx, companyID, start, now)
	if err != nil {
		return dashboarddomain.DashboardResponse{}, err
	}

	topCategories, err := s.loadGroups(ctx, companyID, start, now, "category")
	if err != nil {
		return dashboarddomain.DashboardResponse{}, err
	}
	topSuppliers, err := s.loadGroups(ctx, companyID, start, now, "supplier_name")
	if err != nil {
		return dashboarddomain.DashboardResponse{}, err
	}

	trend, err := s.loadMonthlyTrend(ctx, companyID, now)
	if err != nil {
		return dashboarddomain.DashboardResponse{}, err
	}

	return dashboarddomain.DashboardResponse{
		InvoiceCount:  current.Count,
		TotalAmount:   periods.Round2(current.Total),
		AverageAmount: periods.Round2(current.Average),
		SupplierCount: current.Suppliers,
		ByStatus:      byStatus,
		OverdueCount:  overdue,
		Invoices: dashboarddomain.CountDelta{
			Current:   current.Count,
			Previous:  previous.Count,
			ChangePct: periods.ChangePct(float64(current.Count), float64(previous.Count)),
		},
		Amount: dashboarddomain.AmountDelta{
			Current:   periods.Round2(current.Total),
			Previous:  periods.Round2(previous.Total),
			ChangePct: periods.ChangePct(current.Total, previous.Total),
		},
		TopCategories: topCategories,
		TopSuppliers:  topSuppliers,
		MonthlyTrend:  trend,
	}, nil
}

type totalsRow struct {
	Count     int64   `gorm:"column:count"`
	Total     float64 `gorm:"column:total"`
	Average   float64 `gorm:"column:average"`
	Suppliers int64   `gorm:"column:suppliers"`
}

// loadTotals aggregates over invoice creation time in [start, end).
func (s *Service) loadTotals(ctx context.Context, companyID string, start, end time.Time) (totalsRow, error) {
	var row totalsRow
	err := s.db.WithContext(ctx).Raw(
		`SELECT COUNT(*) AS count,
		        COALESCE(SUM(amount), 0) AS total,
		        COALESCE(AVG(amount), 0) AS average,
		        COUNT(DISTINCT supplier_name) AS suppliers
		 FROM invoices
		 WHERE company_id = ? AND created_at >= ? AND created_at < ?`,
		companyID, start, end,
	).Scan(&row).Error
	return row, err
}

func (s *Service) loadStatusCounts(ctx context.Context, companyID string, start, end time.Time) (dashboarddomain.StatusCounts, error) {
	var rows []struct {
		Status string `gorm:"column:status"`
		Count  int64  `gorm:"column:count"`
	}
	err := s.db.WithContext(ctx).Raw(
		`SELECT status, COUNT(*) AS count
		 FROM invoices
		 WHERE company_id = ? AND created_at >= ? AND created_at < ?
		 GROUP BY status`,
		companyID, start, end,
	).Scan(&rows).Error
	if err != nil {
		return dashboarddomain.StatusCounts{}, err
	}

	var counts dashboarddomain.StatusCounts
	for _, row := range rows {
		switch row.Status {
		case "pending":
			counts.Pending = row.Count
		case "confirmed":
			counts.Confirmed = row.Count
		case "paid":
			counts.Paid = row.Count
		}
	}
	return counts, nil
}

func (s *Service) loadOverdueCount(ctx context.Context, companyID string, start, end time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Raw(
		`SELECT COUNT(*)
		 FROM invoices
		 WHERE company_id = ? AND created_at >= ? AND created_at < ?
		   AND due_date IS NOT NULL AND due_date < ? AND status <> ?`,
		companyID, start, end, s.clock.Now(), statusPaidValue,
	).Scan(&count).Error
	return count, err
}

// loadGroups aggregates by category or supplier name, largest total first.
// The column is fixed by the caller, never caller input.
func (s *Service) loadGroups(ctx context.Context, companyID string, start, end time.Time, column string) ([]dashboarddomain.GroupSummary, error) {
	query := `SELECT ` + column + ` AS name,
	                 COUNT(*) AS count,
	                 COALESCE(SUM(amount), 0) AS total,
	                 COALESCE(AVG(amount), 0) AS average
	          FROM invoices
	          WHERE company_id = ? AND created_at >= ? AND created_at < ?
	            AND ` + column + ` IS NOT NULL AND ` + column + ` <> ''
	          GROUP BY ` + column + `
	          ORDER BY total DESC
	          LIMIT ?`

	var rows []dashboarddomain.GroupSummary
	err := s.db.WithContext(ctx).Raw(query, companyID, start, end, topGroupLimit).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	groups := make([]dashboarddomain.GroupSummary, 0, len(rows))
	for _, row := range rows {
		row.Total = periods.Round2(row.Total)
		row.Average = periods.Round2(row.Average)
		groups = append(groups, row)
	}
	return groups, nil
}

// loadMonthlyTrend buckets the trailing six calendar months of invoice
// dates, most recent month first.
func (s *Service) loadMonthlyTrend(ctx context.Context, companyID string, now time.Time) ([]dashboarddomain.MonthPoint, error) {
	windowStart := periods.StartOfMonth(now).AddDate(0, -(trailingMonths - 1), 0)

	var rows []struct {
		InvoiceDate time.Time `gorm:"column:invoice_date"`
		Amount      float64   `gorm:"column:amount"`
	}
	err := s.db.WithContext(ctx).Raw(
		`SELECT invoice_date, amount
		 FROM invoices
		 WHERE company_id = ? AND invoice_date >= ?`,
		companyID, windowStart,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	type bucket struct {
		count int64
		total float64
	}
	buckets := make(map[string]*bucket, trailingMonths)
	for _, row := range rows {
		key := periods.MonthKey(row.InvoiceDate)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
		}
		b.count++
		b.total += row.Amount
	}

	months := periods.MonthRange(windowStart, now)
	trend := make([]dashboarddomain.MonthPoint, 0, len(months))
	for i := len(months) - 1; i >= 0; i-- {
		key := periods.MonthKey(months[i])
		point := dashboarddomain.MonthPoint{Month: key}
		if b, ok := buckets[key]; ok {
			point.Count = b.count
			point.Total = periods.Round2(b.total)
			point.Average = periods.Round2(b.total / float64(b.count))
		}
		trend = append(trend, point)
	}
	return trend, nil
}
