package service

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/smallbiznis/facturo/internal/clock"
	forecastdomain "github.com/smallbiznis/facturo/internal/forecast/domain"
	"github.com/smallbiznis/facturo/internal/periods"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	recentWindowMonths   = 3
	growthWindowMonths   = 6
	seasonalWindowMonths = 12
	recurringMinInvoices = 3
	supplierPatternLimit = 10

	confidenceHigh   = "High"
	confidenceMedium = "Medium"
	confidenceLow    = "Low"

	activityRecent       = "recent"
	activityExpectedSoon = "expected_soon"
	activityOverdue      = "overdue"
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

func New(p Params) forecastdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("forecast.service"),
		clock: p.Clock,
	}
}

type invoiceRow struct {
	InvoiceDate  time.Time `gorm:"column:invoice_date"`
	Amount       float64   `gorm:"column:amount"`
	SupplierName string    `gorm:"column:supplier_name"`
}

func (s *Service) Predict(ctx context.Context, req forecastdomain.PredictRequest) (forecastdomain.Prediction, error) {
	companyID := strings.TrimSpace(req.CompanyID)
	if companyID == "" {
		return forecastdomain.Prediction{}, forecastdomain.ErrCompanyRequired
	}

	now := s.clock.Now()

	// The twelve-month fetch covers every window the heuristic needs.
	rows, err := s.loadRows(ctx, companyID, now.AddDate(0, -seasonalWindowMonths, 0))
	if err != nil {
		return forecastdomain.Prediction{}, err
	}

	recentStart := now.AddDate(0, -recentWindowMonths, 0)
	var recentCount int64
	var recentTotal float64
	for _, row := range rows {
		if row.InvoiceDate.Before(recentStart) {
			continue
		}
		recentCount++
		recentTotal += row.Amount
	}

	recentAvg := 0.0
	if recentCount > 0 {
		recentAvg = recentTotal / float64(recentCount)
	}

	growthRate := s.growthRate(rows, now)

	predictedAmount := periods.Round2(recentAvg * float64(recentCount) * (1 + growthRate/100))
	predictedCount := int64(math.Ceil(float64(recentCount) * 1.1))

	confidence := confidenceLow
	switch {
	case recentCount >= 10:
		confidence = confidenceHigh
	case recentCount >= 5:
		confidence = confidenceMedium
	}

	return forecastdomain.Prediction{
		RecentAverage:   periods.Round2(recentAvg),
		RecentCount:     recentCount,
		GrowthRatePct:   growthRate,
		PredictedAmount: predictedAmount,
		PredictedCount:  predictedCount,
		Confidence:      confidence,
		Seasonal:        buildSeasonal(rows),
		Suppliers:       buildSupplierPattern(rows, now),
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

// growthRate is the percent change between the two most recent calendar
// months' totals inside the six-month window, zero-guarded.
func (s *Service) growthRate(rows []invoiceRow, now time.Time) float64 {
	windowStart := periods.StartOfMonth(now).AddDate(0, -(growthWindowMonths - 1), 0)

	totals := make(map[string]float64, growthWindowMonths)
	for _, row := range rows {
		if row.InvoiceDate.Before(windowStart) {
			continue
		}
		totals[periods.MonthKey(row.InvoiceDate)] += row.Amount
	}

	current := totals[periods.MonthKey(now)]
	previous := totals[periods.MonthKey(periods.StartOfMonth(now).AddDate(0, -1, 0))]
	return periods.ChangePct(current, previous)
}

func buildSeasonal(rows []invoiceRow) []forecastdomain.SeasonalPoint {
	counts := make([]int64, 13)
	totals := make([]float64, 13)
	for _, row := range rows {
		month := int(row.InvoiceDate.UTC().Month())
		counts[month]++
		totals[month] += row.Amount
	}

	seasonal := make([]forecastdomain.SeasonalPoint, 0, 12)
	for month := 1; month <= 12; month++ {
		point := forecastdomain.SeasonalPoint{Month: month}
		if counts[month] > 0 {
			point.AvgAmount = periods.Round2(totals[month] / float64(counts[month]))
			point.AvgCount = float64(counts[month])
		}
		seasonal = append(seasonal, point)
	}
	return seasonal
}

func buildSupplierPattern(rows []invoiceRow, now time.Time) []forecastdomain.SupplierActivity {
	type stats struct {
		count int64
		last  time.Time
	}
	bySupplier := make(map[string]*stats)
	for _, row := range rows {
		st, ok := bySupplier[row.SupplierName]
		if !ok {
			st = &stats{}
			bySupplier[row.SupplierName] = st
		}
		st.count++
		if row.InvoiceDate.After(st.last) {
			st.last = row.InvoiceDate
		}
	}

	suppliers := make([]forecastdomain.SupplierActivity, 0, len(bySupplier))
	for name, st := range bySupplier {
		if st.count < recurringMinInvoices {
			continue
		}
		activity := activityRecent
		switch days := periods.DaysBetween(st.last, now); {
		case days > 60:
			activity = activityOverdue
		case days > 30:
			activity = activityExpectedSoon
		}
		suppliers = append(suppliers, forecastdomain.SupplierActivity{
			SupplierName:    name,
			InvoiceCount:    st.count,
			LastInvoiceDate: st.last,
			Activity:        activity,
		})
	}

	sort.Slice(suppliers, func(i, j int) bool {
		if suppliers[i].InvoiceCount != suppliers[j].InvoiceCount {
			return suppliers[i].InvoiceCount > suppliers[j].InvoiceCount
		}
		return suppliers[i].LastInvoiceDate.After(suppliers[j].LastInvoiceDate)
	})
	if len(suppliers) > supplierPatternLimit {
		suppliers = suppliers[:supplierPatternLimit]
	}
	return suppliers
}
