// Package domain defines the dashboard metric contract: point-in-time
// totals for a trailing window plus period-over-period deltas.
package domain

import (
	"context"
	"errors"
)

// DashboardRequest selects a company and a trailing window (7d, 30d, 90d,
// 1y; empty means 30d). Windows bound invoice creation time.
type DashboardRequest struct {
	CompanyID string
	Period    string
}

type StatusCounts struct {
	Pending   int64 `json:"pending"`
	Confirmed int64 `json:"confirmed"`
	Paid      int64 `json:"paid"`
}

// CountDelta compares an integer metric against the equal-length window
// immediately preceding the current one.
type CountDelta struct {
	Current   int64   `json:"current"`
	Previous  int64   `json:"previous"`
	ChangePct float64 `json:"change_pct"`
}

type AmountDelta struct {
	Current   float64 `json:"current"`
	Previous  float64 `json:"previous"`
	ChangePct float64 `json:"change_pct"`
}

// GroupSummary is one row of the top-categories / top-suppliers breakdown.
type GroupSummary struct {
	Name    string  `json:"name"`
	Count   int64   `json:"count"`
	Total   float64 `json:"total"`
	Average float64 `json:"average"`
}

// MonthPoint is one calendar-month bucket of the trailing trend.
type MonthPoint struct {
	Month   string  `json:"month"`
	Count   int64   `json:"count"`
	Total   float64 `json:"total"`
	Average float64 `json:"average"`
}

type DashboardResponse struct {
	InvoiceCount  int64        `json:"invoice_count"`
	TotalAmount   float64      `json:"total_amount"`
	AverageAmount float64      `json:"average_amount"`
	SupplierCount int64        `json:"supplier_count"`
	ByStatus      StatusCounts `json:"by_status"`
	OverdueCount  int64        `json:"overdue_count"`

	Invoices CountDelta  `json:"invoices"`
	Amount   AmountDelta `json:"amount"`

	TopCategories []GroupSummary `json:"top_categories"`
	TopSuppliers  []GroupSummary `json:"top_suppliers"`
	MonthlyTrend  []MonthPoint   `json:"monthly_trend"`
}

type Service interface {
	Get(ctx context.Context, req DashboardRequest) (DashboardResponse, error)
}

var (
	ErrCompanyRequired = errors.New("company_required")
	ErrInvalidPeriod   = errors.New("invalid_period")
)
