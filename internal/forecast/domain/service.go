// Package domain defines the naive next-period projection. The contract is
// the exact heuristic formula, not a statistical forecast.
package domain

import (
	"context"
	"errors"
	"time"
)

type PredictRequest struct {
	CompanyID string
}

// SeasonalPoint is the per-calendar-month-of-year average over the
// trailing twelve months.
type SeasonalPoint struct {
	Month     int     `json:"month"`
	AvgAmount float64 `json:"avg_amount"`
	AvgCount  float64 `json:"avg_count"`
}

// SupplierActivity tags a recurring supplier by how recently they last
// invoiced: "recent", "expected_soon" (>30 days), "overdue" (>60 days).
type SupplierActivity struct {
	SupplierName    string    `json:"supplier_name"`
	InvoiceCount    int64     `json:"invoice_count"`
	LastInvoiceDate time.Time `json:"last_invoice_date"`
	Activity        string    `json:"activity"`
}

type Prediction struct {
	RecentAverage   float64            `json:"recent_average"`
	RecentCount     int64              `json:"recent_count"`
	GrowthRatePct   float64            `json:"growth_rate_pct"`
	PredictedAmount float64            `json:"predicted_amount"`
	PredictedCount  int64              `json:"predicted_count"`
	Confidence      string             `json:"confidence"`
	Seasonal        []SeasonalPoint    `json:"seasonal"`
	Suppliers       []SupplierActivity `json:"suppliers"`
}

type Service interface {
	Predict(ctx context.Context, req PredictRequest) (Prediction, error)
}

var ErrCompanyRequired = errors.New("company_required")
