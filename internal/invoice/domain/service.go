package domain

import (
	"context"
	"errors"
	"time"
)

type CreateInvoiceRequest struct {
	CompanyID    string        `json:"company_id"`
	SupplierName string        `json:"supplier_name"`
	Amount       float64       `json:"amount"`
	Currency     string        `json:"currency"`
	InvoiceDate  time.Time     `json:"invoice_date"`
	DueDate      *time.Time    `json:"due_date"`
	TaxID        *string       `json:"tax_id"`
	Description  *string       `json:"description"`
	Category     *string       `json:"category"`
	Status       InvoiceStatus `json:"status"`
}

// UpdateInvoiceRequest is a partial field set; nil fields are left as-is.
// At least one field must be present.
type UpdateInvoiceRequest struct {
	SupplierName *string        `json:"supplier_name"`
	Amount       *float64       `json:"amount"`
	Currency     *string        `json:"currency"`
	InvoiceDate  *time.Time     `json:"invoice_date"`
	DueDate      *time.Time     `json:"due_date"`
	TaxID        *string        `json:"tax_id"`
	Description  *string        `json:"description"`
	Category     *string        `json:"category"`
	Status       *InvoiceStatus `json:"status"`
}

func (r UpdateInvoiceRequest) Empty() bool {
	return r.SupplierName == nil &&
		r.Amount == nil &&
		r.Currency == nil &&
		r.InvoiceDate == nil &&
		r.DueDate == nil &&
		r.TaxID == nil &&
		r.Description == nil &&
		r.Category == nil &&
		r.Status == nil
}

type ListInvoiceRequest struct {
	CompanyID    string
	Status       InvoiceStatus
	SupplierName string
	From         *time.Time
	To           *time.Time
	SortBy       SortKey
	SortDesc     bool
	Limit        int
	Offset       int
}

type ListInvoiceResponse struct {
	Invoices []Invoice `json:"invoices"`
	Total    int64     `json:"total"`
}

// DeletedInvoice is the minimal summary returned after a delete.
type DeletedInvoice struct {
	ID           string  `json:"id"`
	SupplierName string  `json:"supplier_name"`
	Amount       float64 `json:"amount"`
}

type Service interface {
	Create(ctx context.Context, req CreateInvoiceRequest) (Invoice, error)
	Update(ctx context.Context, id string, req UpdateInvoiceRequest) (Invoice, error)
	Delete(ctx context.Context, id string) (DeletedInvoice, error)
	ChangeStatus(ctx context.Context, id string, status InvoiceStatus) (Invoice, error)
	GetByID(ctx context.Context, id string) (Invoice, error)
	List(ctx context.Context, req ListInvoiceRequest) (ListInvoiceResponse, error)
	ListPayments(ctx context.Context, invoiceID string) ([]Payment, error)
}

var (
	ErrCompanyRequired  = errors.New("company_required")
	ErrSupplierRequired = errors.New("supplier_required")
	ErrInvalidAmount    = errors.New("invalid_amount")
	ErrInvalidStatus    = errors.New("invalid_status")
	ErrInvalidID        = errors.New("invalid_id")
	ErrEmptyUpdate      = errors.New("empty_update")
	ErrInvoiceNotFound  = errors.New("invoice_not_found")
)
