package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// ApplyInvoice upserts the supplier row for (name, company) inside the
	// caller's transaction: created on first invoice, counters incremented
	// on every subsequent one.
	ApplyInvoice(ctx context.Context, tx *gorm.DB, companyID, name string, amount float64, invoiceDate time.Time, id snowflake.ID) error

	FindByID(ctx context.Context, db *gorm.DB, companyID string, id snowflake.ID) (*Supplier, error)
	FindByName(ctx context.Context, db *gorm.DB, companyID, name string) (*Supplier, error)
	List(ctx context.Context, db *gorm.DB, companyID string) ([]Supplier, error)
}
