// Package domain defines the supplier importance ranking: a composite of
// volume, frequency, and recency, recomputed from invoice rows.
package domain

import (
	"context"
	"errors"
	"time"
)

// RankRequest selects a company, a trailing window of 1, 3, 6, or 12
// months (empty defaults to 6), and a result limit (default 10).
type RankRequest struct {
	CompanyID string
	Months    int
	Limit     int
}

type RankedSupplier struct {
	SupplierName         string    `json:"supplier_name"`
	InvoiceCount         int64     `json:"invoice_count"`
	TotalAmount          float64   `json:"total_amount"`
	AverageAmount        float64   `json:"average_amount"`
	MinAmount            float64   `json:"min_amount"`
	MaxAmount            float64   `json:"max_amount"`
	FirstInvoiceDate     time.Time `json:"first_invoice_date"`
	LastInvoiceDate      time.Time `json:"last_invoice_date"`
	DaysSinceLastInvoice int       `json:"days_since_last_invoice"`
	InvoicesPerMonth     float64   `json:"invoices_per_month"`
	RecentAmount         float64   `json:"recent_amount"`
	OlderAmount          float64   `json:"older_amount"`
	ImportanceScore      float64   `json:"importance_score"`
}

type RankSummary struct {
	TotalSuppliers       int     `json:"total_suppliers"`
	TotalAmount          float64 `json:"total_amount"`
	AverageSupplierValue int64   `json:"average_supplier_value"`
}

type RankResponse struct {
	Suppliers []RankedSupplier `json:"suppliers"`
	Summary   RankSummary      `json:"summary"`
}

type Service interface {
	Rank(ctx context.Context, req RankRequest) (RankResponse, error)
}

var (
	ErrCompanyRequired = errors.New("company_required")
	ErrInvalidMonths   = errors.New("invalid_months")
)
