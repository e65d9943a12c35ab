package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/facturo/internal/clock"
	invoicedomain "github.com/smallbiznis/facturo/internal/invoice/domain"
	invoicerepo "github.com/smallbiznis/facturo/internal/invoice/repository"
	supplierdomain "github.com/smallbiznis/facturo/internal/supplier/domain"
	supplierrepo "github.com/smallbiznis/facturo/internal/supplier/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (invoicedomain.Service, *gorm.DB, *clock.FakeClock) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&invoicedomain.Invoice{},
		&invoicedomain.Payment{},
		&supplierdomain.Supplier{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:           db,
		Log:          zap.NewNop(),
		GenID:        node,
		Clock:        fake,
		Repo:         invoicerepo.Provide(),
		SupplierRepo: supplierrepo.Provide(),
	})
	return svc, db, fake
}

func TestCreate_NewSupplierStartsCounters(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, invoicedomain.CreateInvoiceRequest{
		CompanyID:    "491701234567",
		SupplierName: "Office Supplies GmbH",
		Amount:       100,
	})
	require.NoError(t, err)
	assert.Equal(t, invoicedomain.InvoiceStatusPending, created.Status)
	assert.Equal(t, "EUR", created.Currency)

	var supplier supplierdomain.Supplier
	require.NoError(t, db.First(&supplier, "company_id = ? AND name = ?", "491701234567", "Office Supplies GmbH").Error)
	assert.Equal(t, int64(1), supplier.TotalInvoices)
	assert.Equal(t, 100.0, supplier.TotalAmount)
	require.NotNil(t, supplier.LastInvoiceDate)
}

func TestCreate_AccumulatesSupplierCounters(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, invoicedomain.CreateInvoiceRequest{
		CompanyID:    "491701234567",
		SupplierName: "CloudHost Ltd",
		Amount:       100,
	})
	require.NoError(t, err)

	_, err = svc.Create(ctx, invoicedomain.CreateInvoiceRequest{
		CompanyID:    "491701234567",
		SupplierName: "CloudHost Ltd",
		Amount:       50,
	})
	require.NoError(t, err)

	var supplier supplierdomain.Supplier
	require.NoError(t, db.First(&supplier, "company_id = ? AND name = ?", "491701234567", "CloudHost Ltd").Error)
	assert.Equal(t, int64(2), supplier.TotalInvoices)
	assert.Equal(t, 150.0, supplier.TotalAmount)

	var count int64
	require.NoError(t, db.Model(&supplierdomain.Supplier{}).Where("company_id = ?", "491701234567").Count(&count).Error)
	assert.Equal(t, int64(1), count, "same supplier name must not create a second row")
}

func TestCreate_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  invoicedomain.CreateInvoiceRequest
		want error
	}{
		{"missing company", invoicedomain.CreateInvoiceRequest{SupplierName: "A", Amount: 10}, invoicedomain.ErrCompanyRequired},
		{"missing supplier", invoicedomain.CreateInvoiceRequest{CompanyID: "491701234567", Amount: 10}, invoicedomain.ErrSupplierRequired},
		{"zero amount", invoicedomain.CreateInvoiceRequest{CompanyID: "491701234567", SupplierName: "A"}, invoicedomain.ErrInvalidAmount},
		{"negative amount", invoicedomain.CreateInvoiceRequest{CompanyID: "491701234567", SupplierName: "A", Amount: -5}, invoicedomain.ErrInvalidAmount},
		{"unknown status", invoicedomain.CreateInvoiceRequest{CompanyID: "491701234567", SupplierName: "A", Amount: 10, Status: "archived"}, invoicedomain.ErrInvalidStatus},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestChangeStatus_StampsConfirmedOnce(t *testing.T) {
	svc, _, fake := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, invoicedomain.CreateInvoiceRequest{
		CompanyID:    "491701234567",
		SupplierName: "Metro Cash & Carry",
		Amount:       42.50,
	})
	require.NoError(t, err)
	require.Nil(t, created.ConfirmedAt)

	confirmed, err := svc.ChangeStatus(ctx, created.ID.String(), invoicedomain.InvoiceStatusConfirmed)
	require.NoError(t, err)
	require.NotNil(t, confirmed.ConfirmedAt)
	firstStamp := *confirmed.ConfirmedAt

	fake.Advance(48 * time.Hour)

	_, err = svc.ChangeStatus(ctx, created.ID.String(), invoicedomain.InvoiceStatusPaid)
	require.NoError(t, err)

	reconfirmed, err := svc.ChangeStatus(ctx, created.ID.String(), invoicedomain.InvoiceStatusConfirmed)
	require.NoError(t, err)
	require.NotNil(t, reconfirmed.ConfirmedAt)
	assert.True(t, reconfirmed.ConfirmedAt.Equal(firstStamp), "confirmed_at must keep its first value")
}

func TestChangeStatus_InvalidValueLeavesRowUntouched(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, invoicedomain.CreateInvoiceRequest{
		CompanyID:    "491701234567",
		SupplierName: "Stadtwerke Energie",
		Amount:       80,
	})
	require.NoError(t, err)

	_, err = svc.ChangeStatus(ctx, created.ID.String(), invoicedomain.InvoiceStatus("archived"))
	assert.ErrorIs(t, err, invoicedomain.ErrInvalidStatus)

	reloaded, err := svc.GetByID(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, invoicedomain.InvoiceStatusPending, reloaded.Status)
	assert.Nil(t, reloaded.ConfirmedAt)
	assert.True(t, reloaded.UpdatedAt.Equal(created.UpdatedAt))
}

func TestDelete_LeavesSupplierCountersUntouched(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, invoicedomain.CreateInvoiceRequest{
		CompanyID:    "491701234567",
		SupplierName: "Papierwerk Nord",
		Amount:       120,
	})
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, created.ID.String(), deleted.ID)
	assert.Equal(t, "Papierwerk Nord", deleted.SupplierName)
	assert.Equal(t, 120.0, deleted.Amount)

	_, err = svc.GetByID(ctx, created.ID.String())
	assert.ErrorIs(t, err, invoicedomain.ErrInvoiceNotFound)

	var supplier supplierdomain.Supplier
	require.NoError(t, db.First(&supplier, "company_id = ? AND name = ?", "491701234567", "Papierwerk Nord").Error)
	assert.Equal(t, int64(1), supplier.TotalInvoices)
	assert.Equal(t, 120.0, supplier.TotalAmount)
}

func TestUpdate_RequiresAtLeastOneField(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Update(context.Background(), "1234", invoicedomain.UpdateInvoiceRequest{})
	assert.ErrorIs(t, err, invoicedomain.ErrEmptyUpdate)
}

func TestUpdate_AppliesPartialFields(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, invoicedomain.CreateInvoiceRequest{
		CompanyID:    "491701234567",
		SupplierName: "Office Supplies GmbH",
		Amount:       100,
	})
	require.NoError(t, err)

	amount := 210.55
	category := "office"
	updated, err := svc.Update(ctx, created.ID.String(), invoicedomain.UpdateInvoiceRequest{
		Amount:   &amount,
		Category: &category,
	})
	require.NoError(t, err)
	assert.Equal(t, 210.55, updated.Amount)
	require.NotNil(t, updated.Category)
	assert.Equal(t, "office", *updated.Category)
	assert.Equal(t, "Office Supplies GmbH", updated.SupplierName)
}

func TestList_FiltersByStatusAndSupplier(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for i, req := range []invoicedomain.CreateInvoiceRequest{
		{CompanyID: "491701234567", SupplierName: "CloudHost Ltd", Amount: 10},
		{CompanyID: "491701234567", SupplierName: "CloudHost Ltd", Amount: 20, Status: invoicedomain.InvoiceStatusPaid},
		{CompanyID: "491701234567", SupplierName: "Metro Cash & Carry", Amount: 30},
		{CompanyID: "498009999999", SupplierName: "CloudHost Ltd", Amount: 40},
	} {
		_, err := svc.Create(ctx, req)
		require.NoError(t, err, "seed %d", i)
	}

	resp, err := svc.List(ctx, invoicedomain.ListInvoiceRequest{
		CompanyID:    "491701234567",
		SupplierName: "CloudHost Ltd",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), resp.Total)

	resp, err = svc.List(ctx, invoicedomain.ListInvoiceRequest{
		CompanyID: "491701234567",
		Status:    invoicedomain.InvoiceStatusPaid,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Total)

	_, err = svc.List(ctx, invoicedomain.ListInvoiceRequest{})
	assert.ErrorIs(t, err, invoicedomain.ErrCompanyRequired)
}
