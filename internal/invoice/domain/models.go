// Package domain contains persistence models for invoice tracking.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// InvoiceStatus represents invoice lifecycle states. The domain intent is
// pending -> confirmed -> paid; the store does not enforce the transition
// order, only membership in the enum.
type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "pending"
	InvoiceStatusConfirmed InvoiceStatus = "confirmed"
	InvoiceStatusPaid      InvoiceStatus = "paid"
)

// Valid reports whether s is a member of the status enum.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusConfirmed, InvoiceStatusPaid:
		return true
	default:
		return false
	}
}

// Invoice represents one purchase document, partitioned by company.
type Invoice struct {
	ID           snowflake.ID  `gorm:"primaryKey" json:"id"`
	CompanyID    string        `gorm:"type:text;not null;index:idx_invoices_company" json:"company_id"`
	SupplierName string        `gorm:"type:text;not null;index" json:"supplier_name"`
	Amount       float64       `gorm:"not null" json:"amount"`
	Currency     string        `gorm:"type:text;not null;default:'EUR'" json:"currency"`
	InvoiceDate  time.Time     `gorm:"not null;index" json:"invoice_date"`
	DueDate      *time.Time    `gorm:"index" json:"due_date"`
	TaxID        *string       `gorm:"type:text" json:"tax_id"`
	Description  *string       `gorm:"type:text" json:"description"`
	Category     *string       `gorm:"type:text" json:"category"`
	Status       InvoiceStatus `gorm:"type:text;not null;default:'pending'" json:"status"`

	// ConfirmedAt is populated exactly once, on first entry into confirmed.
	ConfirmedAt *time.Time `gorm:"" json:"confirmed_at"`
	CreatedAt   time.Time  `gorm:"not null;index" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// Payment is an optional settlement record linked to an invoice. The
// aggregation layer joins payments for display only; they never feed into
// reporting metrics.
type Payment struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	InvoiceID   snowflake.ID `gorm:"not null;index" json:"invoice_id"`
	Amount      float64      `gorm:"not null" json:"amount"`
	PaymentDate time.Time    `gorm:"not null" json:"payment_date"`
	Method      string       `gorm:"type:text" json:"method"`
	CreatedAt   time.Time    `gorm:"not null" json:"created_at"`
}

// TableName sets the database table name.
func (Payment) TableName() string { return "payments" }
