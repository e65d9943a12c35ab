package ocr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/smallbiznis/facturo/internal/clock"
	"github.com/smallbiznis/facturo/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const maxImageBytes = 10 << 20

var sampleSuppliers = []string{
	"Office Supplies GmbH",
	"CloudHost Ltd",
	"Metro Cash & Carry",
	"Stadtwerke Energie",
	"Papierwerk Nord",
}

// Simulated is the stub engine: it fetches (or accepts) the image only to
// validate the input contract, then fabricates a plausible extraction after
// a bounded artificial latency.
type Simulated struct {
	log     *zap.Logger
	clock   clock.Clock
	client  *http.Client
	latency time.Duration

	mu  sync.Mutex
	rnd *rand.Rand
}

type Params struct {
	fx.In

	Config config.Config
	Log    *zap.Logger
	Clock  clock.Clock
}

func NewSimulated(p Params) Service {
	return &Simulated{
		log:     p.Log.Named("ocr.simulated"),
		clock:   p.Clock,
		client:  &http.Client{Timeout: p.Config.OCRFetchTimeout},
		latency: p.Config.OCRLatency,
		rnd:     rand.New(rand.NewSource(p.Clock.Now().UnixNano())),
	}
}

func (s *Simulated) ProcessImage(ctx context.Context, req ProcessRequest) (*Extraction, error) {
	if strings.TrimSpace(req.CompanyID) == "" {
		return nil, ErrCompanyRequired
	}
	if len(req.ImageData) == 0 && strings.TrimSpace(req.ImageURL) == "" {
		return nil, ErrNoImage
	}

	started := s.clock.Now()

	data := req.ImageData
	if len(data) == 0 {
		fetched, err := s.fetch(ctx, req.ImageURL)
		if err != nil {
			return nil, err
		}
		data = fetched
	}
	if len(data) == 0 {
		return nil, ErrUnprocessable
	}

	if err := s.sleep(ctx); err != nil {
		return nil, err
	}

	extraction := s.fabricate(started)
	s.log.Debug("simulated extraction",
		zap.String("company_id", req.CompanyID),
		zap.Int("image_bytes", len(data)),
		zap.Float64("confidence", extraction.Confidence),
	)
	return extraction, nil
}

func (s *Simulated) fetch(ctx context.Context, url string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, ErrFetchFailed
	}
	resp, err := s.client.Do(httpReq)
	if err != nil {
		var urlErr interface{ Timeout() bool }
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			return nil, ErrFetchTimeout
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrFetchTimeout
		}
		return nil, ErrFetchFailed
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrFetchFailed
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, ErrFetchFailed
	}
	return data, nil
}

// sleep applies the artificial processing latency but never outlives the
// request context.
func (s *Simulated) sleep(ctx context.Context) error {
	if s.latency <= 0 {
		return nil
	}
	timer := time.NewTimer(s.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *Simulated) fabricate(started time.Time) *Extraction {
	s.mu.Lock()
	supplier := sampleSuppliers[s.rnd.Intn(len(sampleSuppliers))]
	amount := float64(s.rnd.Intn(95000)+500) / 100
	confidence := 0.70 + s.rnd.Float64()*0.29
	withDue := s.rnd.Intn(4) > 0
	s.mu.Unlock()

	now := s.clock.Now()
	currency := "EUR"
	taxID := fmt.Sprintf("DE%09d", now.UnixNano()%1_000_000_000)
	description := "Simulated extraction"
	invoiceDate := now.AddDate(0, 0, -3)

	extraction := &Extraction{
		SupplierName:       &supplier,
		Amount:             &amount,
		Currency:           &currency,
		InvoiceDate:        &invoiceDate,
		TaxID:              &taxID,
		Description:        &description,
		Confidence:         confidence,
		ProcessedAt:        now,
		ProcessingDuration: now.Sub(started),
	}
	if withDue {
		due := invoiceDate.AddDate(0, 0, 30)
		extraction.DueDate = &due
	}
	return extraction
}
