package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/facturo/internal/invoice/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, tx *gorm.DB, invoice *domain.Invoice) error {
	return tx.WithContext(ctx).Create(invoice).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.WithContext(ctx).Where("id = ?", id).First(&invoice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *repo) Find(ctx context.Context, db *gorm.DB, req domain.ListInvoiceRequest) ([]domain.Invoice, int64, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("company_id = ?", req.CompanyID)

	if req.Status != "" {
		stmt = stmt.Where("status = ?", req.Status)
	}
	if req.SupplierName != "" {
		stmt = stmt.Where("supplier_name = ?", req.SupplierName)
	}
	if req.From != nil {
		stmt = stmt.Where("invoice_date >= ?", *req.From)
	}
	if req.To != nil {
		stmt = stmt.Where("invoice_date <= ?", *req.To)
	}

	var total int64
	if err := stmt.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	direction := "asc"
	if req.SortDesc {
		direction = "desc"
	}
	stmt = stmt.Order(req.SortBy.Column() + " " + direction)

	if req.Limit > 0 {
		stmt = stmt.Limit(req.Limit)
	}
	if req.Offset > 0 {
		stmt = stmt.Offset(req.Offset)
	}

	var invoices []domain.Invoice
	if err := stmt.Find(&invoices).Error; err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

func (r *repo) Save(ctx context.Context, db *gorm.DB, invoice *domain.Invoice) error {
	return db.WithContext(ctx).Save(invoice).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Delete(&domain.Invoice{}, "id = ?", id).Error
}

func (r *repo) ListPayments(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) ([]domain.Payment, error) {
	var payments []domain.Payment
	err := db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("payment_date asc").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}
