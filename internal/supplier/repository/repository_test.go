package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/facturo/internal/supplier/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openDB(t *testing.T) (*gorm.DB, string) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Supplier{}))
	return db, dsn
}

func TestApplyInvoice_RecoversWhenInsertLosesRace(t *testing.T) {
	db, dsn := openDB(t)
	other, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	company := "491701234567"
	invoiceDate := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	// Simulate a concurrent first invoice committing between the lookup and
	// the insert: right before this session's INSERT runs, another session
	// creates the same (company, name) row.
	raced := false
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("race_first_invoice", func(d *gorm.DB) {
		if raced {
			return
		}
		if _, ok := d.Statement.Dest.(*domain.Supplier); !ok {
			return
		}
		raced = true
		require.NoError(t, other.Create(&domain.Supplier{
			ID:               node.Generate(),
			CompanyID:        company,
			Name:             "CloudHost Ltd",
			PaymentTermsDays: 30,
			TotalInvoices:    1,
			TotalAmount:      40,
			LastInvoiceDate:  &invoiceDate,
			CreatedAt:        invoiceDate,
			UpdatedAt:        invoiceDate,
		}).Error)
	}))

	r := Provide()
	require.NoError(t, r.ApplyInvoice(context.Background(), db, company, "CloudHost Ltd", 60, invoiceDate, node.Generate()))
	require.True(t, raced, "conflicting insert never fired")

	winner, err := r.FindByName(context.Background(), db, company, "CloudHost Ltd")
	require.NoError(t, err)
	require.NotNil(t, winner)
	assert.Equal(t, int64(2), winner.TotalInvoices)
	assert.Equal(t, 100.0, winner.TotalAmount)

	var count int64
	require.NoError(t, db.Model(&domain.Supplier{}).Where("company_id = ?", company).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
