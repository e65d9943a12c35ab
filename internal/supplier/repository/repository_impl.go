package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/facturo/internal/supplier/domain"
	"github.com/smallbiznis/facturo/pkg/db"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) ApplyInvoice(ctx context.Context, tx *gorm.DB, companyID, name string, amount float64, invoiceDate time.Time, id snowflake.ID) error {
	name = strings.TrimSpace(name)

	existing, err := r.FindByName(ctx, tx, companyID, name)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if existing == nil {
		supplier := domain.Supplier{
			ID:               id,
			CompanyID:        companyID,
			Name:             name,
			PaymentTermsDays: 30,
			TotalInvoices:    1,
			TotalAmount:      amount,
			LastInvoiceDate:  &invoiceDate,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		createErr := tx.WithContext(ctx).Create(&supplier).Error
		if createErr == nil {
			return nil
		}
		if !db.IsDuplicateKeyErr(createErr) {
			return createErr
		}
		// A concurrent first invoice won the (company, name) insert; bump
		// its counters instead.
		existing, err = r.FindByName(ctx, tx, companyID, name)
		if err != nil {
			return err
		}
		if existing == nil {
			return createErr
		}
	}

	return tx.WithContext(ctx).Exec(
		`UPDATE suppliers
		 SET total_invoices = total_invoices + 1,
		     total_amount = total_amount + ?,
		     last_invoice_date = ?,
		     updated_at = ?
		 WHERE id = ?`,
		amount,
		invoiceDate,
		now,
		existing.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, companyID string, id snowflake.ID) (*domain.Supplier, error) {
	var supplier domain.Supplier
	err := db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&supplier).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *repo) FindByName(ctx context.Context, db *gorm.DB, companyID, name string) (*domain.Supplier, error) {
	var supplier domain.Supplier
	err := db.WithContext(ctx).
		Where("company_id = ? AND name = ?", companyID, name).
		First(&supplier).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, companyID string) ([]domain.Supplier, error) {
	var suppliers []domain.Supplier
	err := db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("name asc").
		Find(&suppliers).Error
	if err != nil {
		return nil, err
	}
	return suppliers, nil
}
