// Package domain contains persistence models for the supplier registry.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Supplier is a vendor known to one company. Uniqueness is composite on
// (name, company_id); matching from invoices is by exact string equality.
type Supplier struct {
	ID               snowflake.ID `gorm:"primaryKey" json:"id"`
	CompanyID        string       `gorm:"type:text;not null;uniqueIndex:ux_suppliers_name_company,priority:2" json:"company_id"`
	Name             string       `gorm:"type:text;not null;uniqueIndex:ux_suppliers_name_company,priority:1" json:"name"`
	TaxID            *string      `gorm:"type:text" json:"tax_id"`
	Phone            *string      `gorm:"type:text" json:"phone"`
	Email            *string      `gorm:"type:text" json:"email"`
	Address          *string      `gorm:"type:text" json:"address"`
	Website          *string      `gorm:"type:text" json:"website"`
	PaymentTermsDays int          `gorm:"not null;default:30" json:"payment_terms_days"`
	Rating           *int         `gorm:"" json:"rating"`

	// Running counters maintained on the invoice write path only. They are
	// never decremented on invoice edit or delete; reporting recomputes
	// from invoice rows instead of trusting them.
	TotalInvoices   int64      `gorm:"not null;default:0" json:"total_invoices"`
	TotalAmount     float64    `gorm:"not null;default:0" json:"total_amount"`
	LastInvoiceDate *time.Time `gorm:"" json:"last_invoice_date"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (Supplier) TableName() string { return "suppliers" }
