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
	forecastdomain "github.com/smallbiznis/facturo/internal/forecast/domain"
	invoicedomain "github.com/smallbiznis/facturo/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (forecastdomain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&invoicedomain.Invoice{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: clock.NewFakeClock(testNow),
	})
	return svc, db, node
}

func seed(t *testing.T, db *gorm.DB, node *snowflake.Node, company, supplier string, amount float64, invoiceDate time.Time) {
	t.Helper()
	require.NoError(t, db.Create(&invoicedomain.Invoice{
		ID:           node.Generate(),
		CompanyID:    company,
		SupplierName: supplier,
		Amount:       amount,
		Currency:     "EUR",
		InvoiceDate:  invoiceDate,
		Status:       invoicedomain.InvoiceStatusPending,
		CreatedAt:    invoiceDate,
		UpdatedAt:    invoiceDate,
	}).Error)
}

func TestPredict_ExactHeuristicFormula(t *testing.T) {
	svc, db, node := newTestService(t)
	company := "491701234567"

	// June total 300, May total 200, April total 100: six recent invoices
	// averaging 100, with 50% month-over-month growth.
	seed(t, db, node, company, "CloudHost Ltd", 100, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC))
	seed(t, db, node, company, "CloudHost Ltd", 200, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))
	seed(t, db, node, company, "CloudHost Ltd", 100, time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC))
	seed(t, db, node, company, "CloudHost Ltd", 100, time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC))
	seed(t, db, node, company, "CloudHost Ltd", 50, time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC))
	seed(t, db, node, company, "CloudHost Ltd", 50, time.Date(2024, 4, 28, 0, 0, 0, 0, time.UTC))

	prediction, err := svc.Predict(context.Background(), forecastdomain.PredictRequest{CompanyID: company})
	require.NoError(t, err)

	assert.Equal(t, int64(6), prediction.RecentCount)
	assert.Equal(t, 100.0, prediction.RecentAverage)
	assert.Equal(t, 50.0, prediction.GrowthRatePct)
	assert.Equal(t, 900.0, prediction.PredictedAmount, "avg * count * (1 + growth/100)")
	assert.Equal(t, int64(7), prediction.PredictedCount, "ceil(6 * 1.1)")
	assert.Equal(t, "Medium", prediction.Confidence)

	require.Len(t, prediction.Seasonal, 12)
	june := prediction.Seasonal[5]
	assert.Equal(t, 6, june.Month)
	assert.Equal(t, 150.0, june.AvgAmount)
	assert.Equal(t, 2.0, june.AvgCount)

	require.Len(t, prediction.Suppliers, 1)
	assert.Equal(t, "CloudHost Ltd", prediction.Suppliers[0].SupplierName)
	assert.Equal(t, "recent", prediction.Suppliers[0].Activity)
}

func TestPredict_ConfidenceThresholds(t *testing.T) {
	svc, db, node := newTestService(t)

	// Two recent invoices: Low.
	seed(t, db, node, "111", "A", 10, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	seed(t, db, node, "111", "A", 10, time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC))

	// Ten recent invoices: High.
	for day := 1; day <= 10; day++ {
		seed(t, db, node, "222", "B", 10, time.Date(2024, 5, day, 0, 0, 0, 0, time.UTC))
	}

	low, err := svc.Predict(context.Background(), forecastdomain.PredictRequest{CompanyID: "111"})
	require.NoError(t, err)
	assert.Equal(t, "Low", low.Confidence)

	high, err := svc.Predict(context.Background(), forecastdomain.PredictRequest{CompanyID: "222"})
	require.NoError(t, err)
	assert.Equal(t, "High", high.Confidence)
}

func TestPredict_EmptyCompanyYieldsZeroes(t *testing.T) {
	svc, _, _ := newTestService(t)

	prediction, err := svc.Predict(context.Background(), forecastdomain.PredictRequest{CompanyID: "490000000000"})
	require.NoError(t, err)

	assert.Equal(t, int64(0), prediction.RecentCount)
	assert.Equal(t, 0.0, prediction.RecentAverage)
	assert.Equal(t, 0.0, prediction.GrowthRatePct)
	assert.Equal(t, 0.0, prediction.PredictedAmount)
	assert.Equal(t, int64(0), prediction.PredictedCount)
	assert.Equal(t, "Low", prediction.Confidence)
	assert.Empty(t, prediction.Suppliers)
}

func TestPredict_SupplierActivityTags(t *testing.T) {
	svc, db, node := newTestService(t)
	company := "333"

	// Last invoice five days ago: recent.
	seed(t, db, node, company, "Now", 10, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))
	seed(t, db, node, company, "Now", 10, time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC))
	seed(t, db, node, company, "Now", 10, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	// Last invoice 45 days ago: expected_soon.
	seed(t, db, node, company, "Soon", 10, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	seed(t, db, node, company, "Soon", 10, time.Date(2024, 4, 20, 0, 0, 0, 0, time.UTC))
	seed(t, db, node, company, "Soon", 10, time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC))

	// Last invoice 116 days ago: overdue.
	seed(t, db, node, company, "Gone", 10, time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC))
	seed(t, db, node, company, "Gone", 10, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC))
	seed(t, db, node, company, "Gone", 10, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))

	// Below the recurring threshold: excluded.
	seed(t, db, node, company, "Once", 10, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	prediction, err := svc.Predict(context.Background(), forecastdomain.PredictRequest{CompanyID: company})
	require.NoError(t, err)

	require.Len(t, prediction.Suppliers, 3)
	byName := make(map[string]string, 3)
	for _, supplier := range prediction.Suppliers {
		byName[supplier.SupplierName] = supplier.Activity
	}
	assert.Equal(t, "recent", byName["Now"])
	assert.Equal(t, "expected_soon", byName["Soon"])
	assert.Equal(t, "overdue", byName["Gone"])

	// Equal counts fall back to most recent activity first.
	assert.Equal(t, "Now", prediction.Suppliers[0].SupplierName)
	assert.Equal(t, "Gone", prediction.Suppliers[2].SupplierName)
}

func TestPredict_RequiresCompany(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Predict(context.Background(), forecastdomain.PredictRequest{})
	assert.ErrorIs(t, err, forecastdomain.ErrCompanyRequired)
}
