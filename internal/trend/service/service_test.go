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
	trenddomain "github.com/smallbiznis/facturo/internal/trend/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (trenddomain.Service, *gorm.DB, *snowflake.Node) {
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

func TestAnalyze_MonthlyBucketsCoverWholeWindow(t *testing.T) {
	svc, db, node := newTestService(t)

	seed(t, db, node, "491701234567", "A", 100, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))
	seed(t, db, node, "491701234567", "B", 50, time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC))
	seed(t, db, node, "491701234567", "A", 200, time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC))

	resp, err := svc.Analyze(context.Background(), trenddomain.TrendRequest{CompanyID: "491701234567"})
	require.NoError(t, err)

	require.Len(t, resp.Monthly, 6)
	assert.Equal(t, "2024-01", resp.Monthly[0].Month)
	assert.Equal(t, int64(0), resp.Monthly[0].Count)

	may := resp.Monthly[4]
	assert.Equal(t, "2024-05", may.Month)
	assert.Equal(t, int64(1), may.Count)
	assert.Equal(t, 200.0, may.Total)
	assert.Equal(t, int64(1), may.Suppliers)

	june := resp.Monthly[5]
	assert.Equal(t, "2024-06", june.Month)
	assert.Equal(t, int64(2), june.Count)
	assert.Equal(t, 150.0, june.Total)
	assert.Equal(t, 75.0, june.Average)
	assert.Equal(t, int64(2), june.Suppliers)
}

func TestAnalyze_WeekdayBucketsUseSundayZero(t *testing.T) {
	svc, db, node := newTestService(t)

	// 2024-06-10 is a Monday, 2024-05-05 a Sunday.
	seed(t, db, node, "491701234567", "A", 100, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))
	seed(t, db, node, "491701234567", "A", 40, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))
	seed(t, db, node, "491701234567", "A", 200, time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC))

	resp, err := svc.Analyze(context.Background(), trenddomain.TrendRequest{CompanyID: "491701234567"})
	require.NoError(t, err)

	require.Len(t, resp.Weekly, 7)
	sunday := resp.Weekly[0]
	assert.Equal(t, 0, sunday.Weekday)
	assert.Equal(t, "Sunday", sunday.Name)
	assert.Equal(t, int64(1), sunday.Count)
	assert.Equal(t, 200.0, sunday.Total)

	monday := resp.Weekly[1]
	assert.Equal(t, "Monday", monday.Name)
	assert.Equal(t, int64(2), monday.Count)
	assert.Equal(t, 70.0, monday.Average)

	assert.Equal(t, int64(0), resp.Weekly[3].Count)
}

func TestAnalyze_GrowthPairsMostRecentFirst(t *testing.T) {
	svc, db, node := newTestService(t)

	seed(t, db, node, "491701234567", "A", 150, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))
	seed(t, db, node, "491701234567", "A", 200, time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC))
	// Seed month just before the window gives the oldest pair a base.
	seed(t, db, node, "491701234567", "A", 80, time.Date(2023, 12, 15, 0, 0, 0, 0, time.UTC))

	resp, err := svc.Analyze(context.Background(), trenddomain.TrendRequest{CompanyID: "491701234567"})
	require.NoError(t, err)

	require.Len(t, resp.Growth, 6)

	latest := resp.Growth[0]
	assert.Equal(t, "2024-06", latest.Month)
	assert.Equal(t, 150.0, latest.Total)
	assert.Equal(t, 200.0, latest.PreviousTotal)
	assert.Equal(t, -25.0, latest.GrowthPct)

	may := resp.Growth[1]
	assert.Equal(t, "2024-05", may.Month)
	assert.Equal(t, 0.0, may.GrowthPct, "zero base month must not divide")

	january := resp.Growth[5]
	assert.Equal(t, "2024-01", january.Month)
	assert.Equal(t, 80.0, january.PreviousTotal)
	assert.Equal(t, -100.0, january.GrowthPct)
}

func TestAnalyze_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Analyze(context.Background(), trenddomain.TrendRequest{})
	assert.ErrorIs(t, err, trenddomain.ErrCompanyRequired)

	_, err = svc.Analyze(context.Background(), trenddomain.TrendRequest{CompanyID: "491701234567", Months: 4})
	assert.ErrorIs(t, err, trenddomain.ErrInvalidMonths)
}
