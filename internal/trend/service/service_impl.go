package service

import (
	"context"
	"strings"
	"time"

	"github.com/smallbiznis/facturo/internal/clock"
	"github.com/smallbiznis/facturo/internal/periods"
	trenddomain "github.com/smallbiznis/facturo/internal/trend/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	weeklyWindowMonths = 3
	growthMonths       = 6
)

var weekdayNames = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

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

func New(p Params) trenddomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("trend.service"),
		clock: p.Clock,
	}
}

type invoiceRow struct {
	InvoiceDate  time.Time `gorm:"column:invoice_date"`
	Amount       float64   `gorm:"column:amount"`
	SupplierName string    `gorm:"column:supplier_name"`
}

func (s *Service) Analyze(ctx context.Context, req trenddomain.TrendRequest) (trenddomain.TrendResponse, error) {
	companyID := strings.TrimSpace(req.CompanyID)
	if companyID == "" {
		return trenddomain.TrendResponse{}, trenddomain.ErrCompanyRequired
	}

	months := req.Months
	if months == 0 {
		months = 6
	}
	if months != 6 && months != 12 {
		return trenddomain.TrendResponse{}, trenddomain.ErrInvalidMonths
	}

	now := s.clock.Now()

	// One fetch covers all three views. The growth view needs one month
	// before its six-month window to seed the first pair.
	fetchStart := periods.StartOfMonth(now).AddDate(0, -months, 0)
	if growthStart := periods.StartOfMonth(now).AddDate(0, -growthMonths, 0); growthStart.Before(fetchStart) {
		fetchStart = growthStart
	}

	rows, err := s.loadRows(ctx, companyID, fetchStart)
	if err != nil {
		return trenddomain.TrendResponse{}, err
	}

	return trenddomain.TrendResponse{
		Monthly: buildMonthly(rows, now, months),
		Weekly:  buildWeekly(rows, now),
		Growth:  buildGrowth(rows, now),
	}, nil
}

func (s *Service) loadRows(ctx context.Context, companyID string, from time.Time) ([]invoiceRow, error) {
	var rows []invoiceRow
	err := s.db.WithContext(ctx).Raw(
		`SELECT invoice_date, amount, supplier_name
		 FROM invoices
		 WHERE company_id = ? AND invoice_date >= ?`,
		companyID, from,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func buildMonthly(rows []invoiceRow, now time.Time, months int) []trenddomain.MonthlyPoint {
	windowStart := periods.StartOfMonth(now).AddDate(0, -(months - 1), 0)

	type bucket struct {
		count     int64
		total     float64
		suppliers map[string]struct{}
	}
	buckets := make(map[string]*bucket, months)
	for _, row := range rows {
		if row.InvoiceDate.Before(windowStart) {
			continue
		}
		key := periods.MonthKey(row.InvoiceDate)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{suppliers: make(map[string]struct{})}
			buckets[key] = b
		}
		b.count++
		b.total += row.Amount
		b.suppliers[row.SupplierName] = struct{}{}
	}

	monthly := make([]trenddomain.MonthlyPoint, 0, months)
	for _, month := range periods.MonthRange(windowStart, now) {
		key := periods.MonthKey(month)
		point := trenddomain.MonthlyPoint{Month: key}
		if b, ok := buckets[key]; ok {
			point.Count = b.count
			point.Total = periods.Round2(b.total)
			point.Average = periods.Round2(b.total / float64(b.count))
			point.Suppliers = int64(len(b.suppliers))
		}
		monthly = append(monthly, point)
	}
	return monthly
}

// buildWeekly groups the last three months of invoice dates by day of
// week. Go's Weekday numbering already matches the 0=Sunday convention.
func buildWeekly(rows []invoiceRow, now time.Time) []trenddomain.WeekdayPoint {
	windowStart := now.AddDate(0, -weeklyWindowMonths, 0)

	counts := make([]int64, 7)
	totals := make([]float64, 7)
	for _, row := range rows {
		if row.InvoiceDate.Before(windowStart) {
			continue
		}
		dow := int(row.InvoiceDate.UTC().Weekday())
		counts[dow]++
		totals[dow] += row.Amount
	}

	weekly := make([]trenddomain.WeekdayPoint, 0, 7)
	for dow := 0; dow < 7; dow++ {
		point := trenddomain.WeekdayPoint{
			Weekday: dow,
			Name:    weekdayNames[dow],
			Count:   counts[dow],
			Total:   periods.Round2(totals[dow]),
		}
		if counts[dow] > 0 {
			point.Average = periods.Round2(totals[dow] / float64(counts[dow]))
		}
		weekly = append(weekly, point)
	}
	return weekly
}

// buildGrowth pairs each of the last six calendar months with the prior
// month's total, most recent first.
func buildGrowth(rows []invoiceRow, now time.Time) []trenddomain.GrowthPoint {
	// Seed month precedes the window so the oldest pair has a base.
	seedStart := periods.StartOfMonth(now).AddDate(0, -growthMonths, 0)

	totals := make(map[string]float64, growthMonths+1)
	for _, row := range rows {
		if row.InvoiceDate.Before(seedStart) {
			continue
		}
		totals[periods.MonthKey(row.InvoiceDate)] += row.Amount
	}

	growth := make([]trenddomain.GrowthPoint, 0, growthMonths)
	cursor := periods.StartOfMonth(now)
	for i := 0; i < growthMonths; i++ {
		current := totals[periods.MonthKey(cursor)]
		previous := totals[periods.MonthKey(cursor.AddDate(0, -1, 0))]
		growth = append(growth, trenddomain.GrowthPoint{
			Month:         periods.MonthKey(cursor),
			Total:         periods.Round2(current),
			PreviousTotal: periods.Round2(previous),
			GrowthPct:     periods.ChangePct(current, previous),
		})
		cursor = cursor.AddDate(0, -1, 0)
	}
	return growth
}
