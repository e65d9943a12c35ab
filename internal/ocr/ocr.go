// Package ocr defines the document-extraction collaborator consumed by
// invoice ingestion. The contract is image in, structured best-effort
// extraction out; every field except the confidence score is nullable and
// callers must tolerate partial results. The shipped implementation is a
// simulator; a real vision engine plugs in behind the same interface.
package ocr

import (
	"context"
	"time"
)

// Service extracts invoice fields from a document image.
type Service interface {
	// ProcessImage runs extraction against either an inline payload or a
	// fetchable URL. Exactly one of ImageData / ImageURL must be set.
	ProcessImage(ctx context.Context, req ProcessRequest) (*Extraction, error)
}

// ProcessRequest carries one document image for a company.
type ProcessRequest struct {
	CompanyID string
	ImageURL  string
	ImageData []byte
}

// Extraction is the best-effort result of processing one image. Fields the
// engine could not read are nil.
type Extraction struct {
	SupplierName *string    `json:"supplier_name"`
	Amount       *float64   `json:"amount"`
	Currency     *string    `json:"currency"`
	InvoiceDate  *time.Time `json:"invoice_date"`
	DueDate      *time.Time `json:"due_date"`
	TaxID        *string    `json:"tax_id"`
	Description  *string    `json:"description"`

	// Confidence is the engine's average confidence (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	ProcessedAt        time.Time     `json:"processed_at"`
	ProcessingDuration time.Duration `json:"processing_duration"`
}
