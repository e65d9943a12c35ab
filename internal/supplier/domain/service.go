package domain

import (
	"context"
	"errors"
)

type ListSupplierRequest struct {
	CompanyID string
}

type ListSupplierResponse struct {
	Suppliers []Supplier `json:"suppliers"`
}

type Service interface {
	List(ctx context.Context, req ListSupplierRequest) (ListSupplierResponse, error)
	GetByID(ctx context.Context, companyID, id string) (Supplier, error)
}

var (
	ErrCompanyRequired  = errors.New("company_required")
	ErrSupplierNotFound = errors.New("supplier_not_found")
	ErrInvalidID        = errors.New("invalid_id")
)
