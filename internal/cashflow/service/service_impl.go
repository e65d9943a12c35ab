package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	cashflowdomain "github.com/smallbiznis/facturo/internal/cashflow/domain"
	"github.com/smallbiznis/facturo/internal/clock"
	"github.com/smallbiznis/facturo/internal/periods"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultTrailingMonths = 3
	projectionMonthsAhead = 3
	upcomingLookbackDays  = 30
	upcomingLimit         = 20
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

func New(p Params) cashflowdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("cashflow.service"),
		clock: p.Clock,
	}
}

type dueRow struct {
	ID           snowflake.ID `gorm:"column:id"`
	SupplierName string       `gorm:"column:supplier_name"`
	Amount       float64      `gorm:"column:amount"`
	Currency     string       `gorm:"column:currency"`
	DueDate      time.Time    `gorm:"column:due_date"`
	Status       string       `gorm:"column:status"`
}

func (s *Service) Project(ctx context.Context, req cashflowdomain.CashflowRequest) (cashflowdomain.CashflowResponse, error) {
	companyID := strings.TrimSpace(req.CompanyID)
	if companyID == "" {
		return cashflowdomain.CashflowResponse{}, cashflowdomain.ErrCompanyRequired
	}

	months := req.Months
	if months == 0 {
		months = defaultTrailingMonths
	}
	if months < 1 || months > 24 {
		return cashflowdomain.CashflowResponse{}, cashflowdomain.ErrInvalidMonths
	}

	now := s.clock.Now()
	// Urgency and overdue boundaries are day-based: an invoice due today is
	// not yet overdue no matter the hour.
	today := periods.StartOfDay(now)
	rangeStart := periods.StartOfMonth(now.AddDate(0, -months, 0))
	rangeEnd := periods.StartOfMonth(now.AddDate(0, projectionMonthsAhead, 0)).AddDate(0, 1, 0)

	rows, err := s.loadDueRows(ctx, companyID, rangeStart, rangeEnd)
	if err != nil {
		return cashflowdomain.CashflowResponse{}, err
	}

	upcoming, err := s.loadUpcoming(ctx, companyID, today)
	if err != nil {
		return cashflowdomain.CashflowResponse{}, err
	}

	return cashflowdomain.CashflowResponse{
		Buckets:  buildBuckets(rows, rangeStart, rangeEnd, today),
		Upcoming: upcoming,
	}, nil
}

func (s *Service) loadDueRows(ctx context.Context, companyID string, start, end time.Time) ([]dueRow, error) {
	var rows []dueRow
	err := s.db.WithContext(ctx).Raw(
		`SELECT id, supplier_name, amount, currency, due_date, status
		 FROM invoices
		 WHERE company_id = ? AND due_date IS NOT NULL AND due_date >= ? AND due_date < ?`,
		companyID, start, end,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// buildBuckets assigns every due date in [start, end) to exactly one
// calendar-month bucket.
func buildBuckets(rows []dueRow, start, end time.Time, today time.Time) []cashflowdomain.MonthBucket {
	months := periods.MonthRange(start, end.Add(-time.Nanosecond))
	index := make(map[string]int, len(months))
	buckets := make([]cashflowdomain.MonthBucket, len(months))
	for i, month := range months {
		key := periods.MonthKey(month)
		index[key] = i
		buckets[i] = cashflowdomain.MonthBucket{Month: key}
	}

	for _, row := range rows {
		i, ok := index[periods.MonthKey(row.DueDate)]
		if !ok {
			continue
		}
		switch row.Status {
		case "confirmed":
			buckets[i].PendingPayments += row.Amount
		case "paid":
			buckets[i].CompletedPayments += row.Amount
		}
		if row.DueDate.Before(today) && row.Status != "paid" {
			buckets[i].OverdueCount++
			buckets[i].OverdueAmount += row.Amount
		}
	}

	for i := range buckets {
		buckets[i].PendingPayments = periods.Round2(buckets[i].PendingPayments)
		buckets[i].CompletedPayments = periods.Round2(buckets[i].CompletedPayments)
		buckets[i].OverdueAmount = periods.Round2(buckets[i].OverdueAmount)
	}
	return buckets
}

func (s *Service) loadUpcoming(ctx context.Context, companyID string, today time.Time) ([]cashflowdomain.Obligation, error) {
	var rows []dueRow
	err := s.db.WithContext(ctx).Raw(
		`SELECT id, supplier_name, amount, currency, due_date, status
		 FROM invoices
		 WHERE company_id = ?
		   AND status IN (?, ?)
		   AND due_date IS NOT NULL AND due_date >= ?
		 ORDER BY due_date ASC
		 LIMIT ?`,
		companyID, "confirmed", "pending", today.AddDate(0, 0, -upcomingLookbackDays), upcomingLimit,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	obligations := make([]cashflowdomain.Obligation, 0, len(rows))
	for _, row := range rows {
		obligations = append(obligations, cashflowdomain.Obligation{
			InvoiceID:    row.ID.String(),
			SupplierName: row.SupplierName,
			Amount:       row.Amount,
			Currency:     row.Currency,
			DueDate:      row.DueDate,
			Status:       row.Status,
			Urgency:      classifyUrgency(row.DueDate, today),
		})
	}
	return obligations, nil
}

func classifyUrgency(due, today time.Time) string {
	switch {
	case due.Before(today):
		return cashflowdomain.UrgencyOverdue
	case !due.After(today.AddDate(0, 0, 7)):
		return cashflowdomain.UrgencyDueThisWeek
	case !due.After(today.AddDate(0, 0, 30)):
		return cashflowdomain.UrgencyDueThisMonth
	default:
		return cashflowdomain.UrgencyFuture
	}
}
