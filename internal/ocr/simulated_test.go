package ocr

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/smallbiznis/facturo/internal/clock"
	"github.com/smallbiznis/facturo/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSimulated(t *testing.T, fetchTimeout time.Duration) Service {
	t.Helper()
	return NewSimulated(Params{
		Config: config.Config{
			OCRFetchTimeout: fetchTimeout,
			OCRLatency:      time.Millisecond,
		},
		Log:   zap.NewNop(),
		Clock: clock.NewFakeClock(time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)),
	})
}

func TestProcessImage_InlineData(t *testing.T) {
	svc := newSimulated(t, time.Second)

	extraction, err := svc.ProcessImage(context.Background(), ProcessRequest{
		CompanyID: "491701234567",
		ImageData: []byte("fake-image-bytes"),
	})
	require.NoError(t, err)

	require.NotNil(t, extraction.SupplierName)
	assert.NotEmpty(t, *extraction.SupplierName)
	require.NotNil(t, extraction.Amount)
	assert.Greater(t, *extraction.Amount, 0.0)
	require.NotNil(t, extraction.Currency)
	assert.Equal(t, "EUR", *extraction.Currency)
	require.NotNil(t, extraction.InvoiceDate)
	assert.GreaterOrEqual(t, extraction.Confidence, 0.70)
	assert.LessOrEqual(t, extraction.Confidence, 0.99)
}

func TestProcessImage_FetchesURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("fake-image-bytes"))
	}))
	defer server.Close()

	svc := newSimulated(t, time.Second)

	extraction, err := svc.ProcessImage(context.Background(), ProcessRequest{
		CompanyID: "491701234567",
		ImageURL:  server.URL,
	})
	require.NoError(t, err)
	require.NotNil(t, extraction.SupplierName)
}

func TestProcessImage_FetchFailureSurfacesAsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	svc := newSimulated(t, time.Second)

	_, err := svc.ProcessImage(context.Background(), ProcessRequest{
		CompanyID: "491701234567",
		ImageURL:  server.URL,
	})
	assert.ErrorIs(t, err, ErrFetchFailed)
}

func TestProcessImage_SlowFetchTimesOut(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	svc := newSimulated(t, 20*time.Millisecond)

	_, err := svc.ProcessImage(context.Background(), ProcessRequest{
		CompanyID: "491701234567",
		ImageURL:  server.URL,
	})
	assert.ErrorIs(t, err, ErrFetchTimeout)
}

func TestProcessImage_Validation(t *testing.T) {
	svc := newSimulated(t, time.Second)

	_, err := svc.ProcessImage(context.Background(), ProcessRequest{ImageData: []byte("x")})
	assert.ErrorIs(t, err, ErrCompanyRequired)

	_, err = svc.ProcessImage(context.Background(), ProcessRequest{CompanyID: "491701234567"})
	assert.ErrorIs(t, err, ErrNoImage)
}
