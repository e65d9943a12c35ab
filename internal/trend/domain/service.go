// Package domain defines time-bucketed invoice series: monthly trend,
// day-of-week pattern, and month-over-month growth.
package domain

import (
	"context"
	"errors"
)

// TrendRequest selects a company and a trailing span of 6 or 12 calendar
// months (empty defaults to 6). Bucketing uses the invoice date, not the
// creation date.
type TrendRequest struct {
	CompanyID string
	Months    int
}

type MonthlyPoint struct {
	Month     string  `json:"month"`
	Count     int64   `json:"count"`
	Total     float64 `json:"total"`
	Average   float64 `json:"average"`
	Suppliers int64   `json:"suppliers"`
}

// WeekdayPoint is one day-of-week bucket, 0 = Sunday.
type WeekdayPoint struct {
	Weekday int     `json:"weekday"`
	Name    string  `json:"name"`
	Count   int64   `json:"count"`
	Total   float64 `json:"total"`
	Average float64 `json:"average"`
}

// GrowthPoint pairs one calendar month's total with the prior month's and
// the percent growth between them.
type GrowthPoint struct {
	Month         string  `json:"month"`
	Total         float64 `json:"total"`
	PreviousTotal float64 `json:"previous_total"`
	GrowthPct     float64 `json:"growth_pct"`
}

type TrendResponse struct {
	Monthly []MonthlyPoint `json:"monthly"`
	Weekly  []WeekdayPoint `json:"weekly"`
	Growth  []GrowthPoint  `json:"growth"`
}

type Service interface {
	Analyze(ctx context.Context, req TrendRequest) (TrendResponse, error)
}

var (
	ErrCompanyRequired = errors.New("company_required")
	ErrInvalidMonths   = errors.New("invalid_months")
)
