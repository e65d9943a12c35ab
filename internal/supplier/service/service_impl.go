package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/facturo/internal/supplier/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("supplier.service"),
		repo: p.Repo,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListSupplierRequest) (domain.ListSupplierResponse, error) {
	companyID := strings.TrimSpace(req.CompanyID)
	if companyID == "" {
		return domain.ListSupplierResponse{}, domain.ErrCompanyRequired
	}

	suppliers, err := s.repo.List(ctx, s.db, companyID)
	if err != nil {
		return domain.ListSupplierResponse{}, err
	}
	return domain.ListSupplierResponse{Suppliers: suppliers}, nil
}

func (s *Service) GetByID(ctx context.Context, companyID, id string) (domain.Supplier, error) {
	companyID = strings.TrimSpace(companyID)
	if companyID == "" {
		return domain.Supplier{}, domain.ErrCompanyRequired
	}

	supplierID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return domain.Supplier{}, domain.ErrInvalidID
	}

	supplier, err := s.repo.FindByID(ctx, s.db, companyID, supplierID)
	if err != nil {
		return domain.Supplier{}, err
	}
	if supplier == nil {
		return domain.Supplier{}, domain.ErrSupplierNotFound
	}
	return *supplier, nil
}
