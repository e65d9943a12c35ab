package service

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/smallbiznis/facturo/internal/clock"
	"github.com/smallbiznis/facturo/internal/periods"
	rankdomain "github.com/smallbiznis/facturo/internal/supplierrank/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultMonths      = 6
	defaultLimit       = 10
	recentSplitMonths  = 3
	recencyCeilingDays = 30
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

func New(p Params) rankdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("supplierrank.service"),
		clock: p.Clock,
	}
}

type invoiceRow struct {
	SupplierName string    `gorm:"column:supplier_name"`
	Amount       float64   `gorm:"column:amount"`
	InvoiceDate  time.Time `gorm:"column:invoice_date"`
}

func (s *Service) Rank(ctx context.Context, req rankdomain.RankRequest) (rankdomain.RankResponse, error) {
	companyID := strings.TrimSpace(req.CompanyID)
	if companyID == "" {
		return rankdomain.RankResponse{}, rankdomain.ErrCompanyRequired
	}

	months := req.Months
	if months == 0 {
		months = defaultMonths
	}
	switch months {
	case 1, 3, 6, 12:
	default:
		return rankdomain.RankResponse{}, rankdomain.ErrInvalidMonths
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	now := s.clock.Now()
	windowStart := now.AddDate(0, -months, 0)

	var rows []invoiceRow
	err := s.db.WithContext(ctx).Raw(
		`SELECT supplier_name, amount, invoice_date
		 FROM invoices
		 WHERE company_id = ? AND invoice_date >= ?`,
		companyID, windowStart,
	).Scan(&rows).Error
	if err != nil {
		return rankdomain.RankResponse{}, err
	}

	suppliers := aggregate(rows, now)

	sort.Slice(suppliers, func(i, j int) bool {
		if suppliers[i].ImportanceScore != suppliers[j].ImportanceScore {
			return suppliers[i].ImportanceScore > suppliers[j].ImportanceScore
		}
		// Equal scores fall back to name order so the ranking is stable
		// across calls.
		return suppliers[i].SupplierName < suppliers[j].SupplierName
	})
	if len(suppliers) > limit {
		suppliers = suppliers[:limit]
	}

	var summaryTotal float64
	for _, supplier := range suppliers {
		summaryTotal += supplier.TotalAmount
	}
	summary := rankdomain.RankSummary{
		TotalSuppliers: len(suppliers),
		TotalAmount:    periods.Round2(summaryTotal),
	}
	if len(suppliers) > 0 {
		summary.AverageSupplierValue = int64(math.Round(summaryTotal / float64(len(suppliers))))
	}

	return rankdomain.RankResponse{Suppliers: suppliers, Summary: summary}, nil
}

// aggregate folds invoice rows into per-supplier stats and scores them:
// importance = volume*0.4 + frequency*0.3 + recency*0.3, where volume is
// total/1000 and recency decays linearly over 30 days.
func aggregate(rows []invoiceRow, now time.Time) []rankdomain.RankedSupplier {
	type stats struct {
		count        int64
		total        float64
		min          float64
		max          float64
		first        time.Time
		last         time.Time
		recentAmount float64
		olderAmount  float64
	}

	recentBoundary := now.AddDate(0, -recentSplitMonths, 0)
	bySupplier := make(map[string]*stats)
	for _, row := range rows {
		st, ok := bySupplier[row.SupplierName]
		if !ok {
			st = &stats{min: row.Amount, max: row.Amount, first: row.InvoiceDate, last: row.InvoiceDate}
			bySupplier[row.SupplierName] = st
		}
		st.count++
		st.total += row.Amount
		if row.Amount < st.min {
			st.min = row.Amount
		}
		if row.Amount > st.max {
			st.max = row.Amount
		}
		if row.InvoiceDate.Before(st.first) {
			st.first = row.InvoiceDate
		}
		if row.InvoiceDate.After(st.last) {
			st.last = row.InvoiceDate
		}
		if row.InvoiceDate.Before(recentBoundary) {
			st.olderAmount += row.Amount
		} else {
			st.recentAmount += row.Amount
		}
	}

	suppliers := make([]rankdomain.RankedSupplier, 0, len(bySupplier))
	for name, st := range bySupplier {
		daysSinceLast := periods.DaysBetween(st.last, now)
		activeDays := periods.DaysBetween(st.first, st.last)

		recency := float64(recencyCeilingDays - min(recencyCeilingDays, daysSinceLast))
		score := (st.total/1000)*0.4 + float64(st.count)*0.3 + recency*0.3

		suppliers = append(suppliers, rankdomain.RankedSupplier{
			SupplierName:         name,
			InvoiceCount:         st.count,
			TotalAmount:          periods.Round2(st.total),
			AverageAmount:        periods.Round2(st.total / float64(st.count)),
			MinAmount:            st.min,
			MaxAmount:            st.max,
			FirstInvoiceDate:     st.first,
			LastInvoiceDate:      st.last,
			DaysSinceLastInvoice: daysSinceLast,
			InvoicesPerMonth:     periods.Round2(float64(st.count) * 30 / float64(max(1, activeDays))),
			RecentAmount:         periods.Round2(st.recentAmount),
			OlderAmount:          periods.Round2(st.olderAmount),
			ImportanceScore:      periods.Round2(score),
		})
	}
	return suppliers
}
