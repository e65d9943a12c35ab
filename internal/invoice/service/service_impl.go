package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/facturo/internal/clock"
	invoicedomain "github.com/smallbiznis/facturo/internal/invoice/domain"
	supplierdomain "github.com/smallbiznis/facturo/internal/supplier/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultCurrency = "EUR"

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         invoicedomain.Repository
	SupplierRepo supplierdomain.Repository
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         invoicedomain.Repository
	supplierRepo supplierdomain.Repository
}

func New(p Params) invoicedomain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("invoice.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		supplierRepo: p.SupplierRepo,
	}
}

// Create persists the invoice and the supplier's running counters in one
// transaction. Either both commit or neither does; a counter upsert failure
// rolls the invoice row back.
func (s *Service) Create(ctx context.Context, req invoicedomain.CreateInvoiceRequest) (invoicedomain.Invoice, error) {
	companyID := strings.TrimSpace(req.CompanyID)
	if companyID == "" {
		return invoicedomain.Invoice{}, invoicedomain.ErrCompanyRequired
	}

	supplierName := strings.TrimSpace(req.SupplierName)
	if supplierName == "" {
		return invoicedomain.Invoice{}, invoicedomain.ErrSupplierRequired
	}

	if req.Amount <= 0 {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidAmount
	}

	status := req.Status
	if status == "" {
		status = invoicedomain.InvoiceStatusPending
	}
	if !status.Valid() {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidStatus
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = defaultCurrency
	}

	now := s.clock.Now()
	invoiceDate := req.InvoiceDate
	if invoiceDate.IsZero() {
		invoiceDate = now
	}

	invoice := invoicedomain.Invoice{
		ID:           s.genID.Generate(),
		CompanyID:    companyID,
		SupplierName: supplierName,
		Amount:       req.Amount,
		Currency:     currency,
		InvoiceDate:  invoiceDate.UTC(),
		DueDate:      req.DueDate,
		TaxID:        req.TaxID,
		Description:  req.Description,
		Category:     req.Category,
		Status:       status,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if status == invoicedomain.InvoiceStatusConfirmed {
		invoice.ConfirmedAt = &now
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &invoice); err != nil {
			return err
		}
		return s.supplierRepo.ApplyInvoice(ctx, tx, companyID, supplierName, invoice.Amount, invoice.InvoiceDate, s.genID.Generate())
	})
	if err != nil {
		s.log.Error("create invoice failed",
			zap.String("company_id", companyID),
			zap.Error(err),
		)
		return invoicedomain.Invoice{}, err
	}

	return invoice, nil
}

func (s *Service) Update(ctx context.Context, id string, req invoicedomain.UpdateInvoiceRequest) (invoicedomain.Invoice, error) {
	if req.Empty() {
		return invoicedomain.Invoice{}, invoicedomain.ErrEmptyUpdate
	}

	invoice, err := s.load(ctx, id)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	if req.SupplierName != nil {
		name := strings.TrimSpace(*req.SupplierName)
		if name == "" {
			return invoicedomain.Invoice{}, invoicedomain.ErrSupplierRequired
		}
		invoice.SupplierName = name
	}
	if req.Amount != nil {
		if *req.Amount <= 0 {
			return invoicedomain.Invoice{}, invoicedomain.ErrInvalidAmount
		}
		invoice.Amount = *req.Amount
	}
	if req.Currency != nil {
		invoice.Currency = strings.ToUpper(strings.TrimSpace(*req.Currency))
	}
	if req.InvoiceDate != nil {
		invoice.InvoiceDate = req.InvoiceDate.UTC()
	}
	if req.DueDate != nil {
		invoice.DueDate = req.DueDate
	}
	if req.TaxID != nil {
		invoice.TaxID = req.TaxID
	}
	if req.Description != nil {
		invoice.Description = req.Description
	}
	if req.Category != nil {
		invoice.Category = req.Category
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return invoicedomain.Invoice{}, invoicedomain.ErrInvalidStatus
		}
		s.applyStatus(invoice, *req.Status)
	}

	invoice.UpdatedAt = s.clock.Now()
	if err := s.repo.Save(ctx, s.db, invoice); err != nil {
		return invoicedomain.Invoice{}, err
	}
	return *invoice, nil
}

// Delete removes the invoice row. Supplier counters are intentionally left
// untouched; they are write-path counters, not a recomputed aggregate.
func (s *Service) Delete(ctx context.Context, id string) (invoicedomain.DeletedInvoice, error) {
	invoice, err := s.load(ctx, id)
	if err != nil {
		return invoicedomain.DeletedInvoice{}, err
	}

	if err := s.repo.Delete(ctx, s.db, invoice.ID); err != nil {
		return invoicedomain.DeletedInvoice{}, err
	}

	return invoicedomain.DeletedInvoice{
		ID:           invoice.ID.String(),
		SupplierName: invoice.SupplierName,
		Amount:       invoice.Amount,
	}, nil
}

func (s *Service) ChangeStatus(ctx context.Context, id string, status invoicedomain.InvoiceStatus) (invoicedomain.Invoice, error) {
	if !status.Valid() {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidStatus
	}

	invoice, err := s.load(ctx, id)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	s.applyStatus(invoice, status)
	invoice.UpdatedAt = s.clock.Now()
	if err := s.repo.Save(ctx, s.db, invoice); err != nil {
		return invoicedomain.Invoice{}, err
	}
	return *invoice, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (invoicedomain.Invoice, error) {
	invoice, err := s.load(ctx, id)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	return *invoice, nil
}

func (s *Service) List(ctx context.Context, req invoicedomain.ListInvoiceRequest) (invoicedomain.ListInvoiceResponse, error) {
	req.CompanyID = strings.TrimSpace(req.CompanyID)
	if req.CompanyID == "" {
		return invoicedomain.ListInvoiceResponse{}, invoicedomain.ErrCompanyRequired
	}
	if req.Status != "" && !req.Status.Valid() {
		return invoicedomain.ListInvoiceResponse{}, invoicedomain.ErrInvalidStatus
	}
	if req.Limit <= 0 || req.Limit > 200 {
		req.Limit = 50
	}

	invoices, total, err := s.repo.Find(ctx, s.db, req)
	if err != nil {
		return invoicedomain.ListInvoiceResponse{}, err
	}
	return invoicedomain.ListInvoiceResponse{Invoices: invoices, Total: total}, nil
}

func (s *Service) ListPayments(ctx context.Context, invoiceID string) ([]invoicedomain.Payment, error) {
	invoice, err := s.load(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListPayments(ctx, s.db, invoice.ID)
}

// applyStatus writes the new status and stamps ConfirmedAt only on the
// first entry into confirmed.
func (s *Service) applyStatus(invoice *invoicedomain.Invoice, status invoicedomain.InvoiceStatus) {
	if status == invoicedomain.InvoiceStatusConfirmed && invoice.ConfirmedAt == nil {
		now := s.clock.Now()
		invoice.ConfirmedAt = &now
	}
	invoice.Status = status
}

func (s *Service) load(ctx context.Context, id string) (*invoicedomain.Invoice, error) {
	invoiceID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, invoicedomain.ErrInvalidID
	}

	invoice, err := s.repo.FindByID(ctx, s.db, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, invoicedomain.ErrInvoiceNotFound
	}
	return invoice, nil
}
