// Package domain defines the cash-flow projection: due-date month buckets
// and a near-term obligation list ordered by urgency.
package domain

import (
	"context"
	"errors"
	"time"
)

// CashflowRequest selects a company and a trailing window in months
// (default 3). Buckets run from (now - Months) to (now + 3 months).
type CashflowRequest struct {
	CompanyID string
	Months    int
}

// MonthBucket is one calendar month of due dates. Buckets partition the
// projected range with no gaps or overlaps.
type MonthBucket struct {
	Month             string  `json:"month"`
	PendingPayments   float64 `json:"pending_payments"`
	CompletedPayments float64 `json:"completed_payments"`
	OverdueCount      int64   `json:"overdue_count"`
	OverdueAmount     float64 `json:"overdue_amount"`
}

// Urgency classifications for an upcoming obligation, relative to today.
const (
	UrgencyOverdue      = "overdue"
	UrgencyDueThisWeek  = "due_this_week"
	UrgencyDueThisMonth = "due_this_month"
	UrgencyFuture       = "future"
)

type Obligation struct {
	InvoiceID    string    `json:"invoice_id"`
	SupplierName string    `json:"supplier_name"`
	Amount       float64   `json:"amount"`
	Currency     string    `json:"currency"`
	DueDate      time.Time `json:"due_date"`
	Status       string    `json:"status"`
	Urgency      string    `json:"urgency"`
}

type CashflowResponse struct {
	Buckets  []MonthBucket `json:"buckets"`
	Upcoming []Obligation  `json:"upcoming"`
}

type Service interface {
	Project(ctx context.Context, req CashflowRequest) (CashflowResponse, error)
}

var (
	ErrCompanyRequired = errors.New("company_required")
	ErrInvalidMonths   = errors.New("invalid_months")
)
