package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// SortKey is the closed set of sortable columns. Sorting is specified as a
// typed key, never by concatenating caller input into a query.
type SortKey string

const (
	SortByCreatedAt    SortKey = "created_at"
	SortByInvoiceDate  SortKey = "invoice_date"
	SortByDueDate      SortKey = "due_date"
	SortByAmount       SortKey = "amount"
	SortBySupplierName SortKey = "supplier_name"
)

// Column resolves the key to its column name, falling back to created_at
// for anything outside the allow-list.
func (k SortKey) Column() string {
	switch k {
	case SortByInvoiceDate, SortByDueDate, SortByAmount, SortBySupplierName, SortByCreatedAt:
		return string(k)
	default:
		return string(SortByCreatedAt)
	}
}

type Repository interface {
	Insert(ctx context.Context, tx *gorm.DB, invoice *Invoice) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Invoice, error)
	Find(ctx context.Context, db *gorm.DB, req ListInvoiceRequest) ([]Invoice, int64, error)
	Save(ctx context.Context, db *gorm.DB, invoice *Invoice) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	ListPayments(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) ([]Payment, error)
}
