package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/facturo/internal/cashflow"
	cashflowdomain "github.com/smallbiznis/facturo/internal/cashflow/domain"
	"github.com/smallbiznis/facturo/internal/config"
	"github.com/smallbiznis/facturo/internal/dashboard"
	dashboarddomain "github.com/smallbiznis/facturo/internal/dashboard/domain"
	"github.com/smallbiznis/facturo/internal/forecast"
	forecastdomain "github.com/smallbiznis/facturo/internal/forecast/domain"
	"github.com/smallbiznis/facturo/internal/invoice"
	invoicedomain "github.com/smallbiznis/facturo/internal/invoice/domain"
	obsmetrics "github.com/smallbiznis/facturo/internal/observability/metrics"
	"github.com/smallbiznis/facturo/internal/ocr"
	"github.com/smallbiznis/facturo/internal/supplier"
	supplierdomain "github.com/smallbiznis/facturo/internal/supplier/domain"
	"github.com/smallbiznis/facturo/internal/supplierrank"
	rankdomain "github.com/smallbiznis/facturo/internal/supplierrank/domain"
	"github.com/smallbiznis/facturo/internal/trend"
	trenddomain "github.com/smallbiznis/facturo/internal/trend/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	obsmetrics.Module,
	invoice.Module,
	supplier.Module,
	dashboard.Module,
	trend.Module,
	forecast.Module,
	supplierrank.Module,
	cashflow.Module,
	ocr.Module,
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, log *zap.Logger, m *obsmetrics.Metrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(log))
	r.Use(MetricsMiddleware(m))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{})))

	return r
}

func registerGin(cfg config.Config, log *zap.Logger, m *obsmetrics.Metrics) *gin.Engine {
	return NewEngine(cfg, log, m)
}

func run(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	invoiceSvc  invoicedomain.Service
	supplierSvc supplierdomain.Service
	dashboard   dashboarddomain.Service
	trends      trenddomain.Service
	forecasts   forecastdomain.Service
	ranking     rankdomain.Service
	cashflow    cashflowdomain.Service
	ocrSvc      ocr.Service
	metrics     *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin         *gin.Engine
	Cfg         config.Config
	InvoiceSvc  invoicedomain.Service
	SupplierSvc supplierdomain.Service
	Dashboard   dashboarddomain.Service
	Trends      trenddomain.Service
	Forecasts   forecastdomain.Service
	Ranking     rankdomain.Service
	Cashflow    cashflowdomain.Service
	OCRSvc      ocr.Service
	Metrics     *obsmetrics.Metrics
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:      p.Gin,
		cfg:         p.Cfg,
		invoiceSvc:  p.InvoiceSvc,
		supplierSvc: p.SupplierSvc,
		dashboard:   p.Dashboard,
		trends:      p.Trends,
		forecasts:   p.Forecasts,
		ranking:     p.Ranking,
		cashflow:    p.Cashflow,
		ocrSvc:      p.OCRSvc,
		metrics:     p.Metrics,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/v1", CompanyContext())

	// -------- Invoices --------
	v1.POST("/invoices", s.CreateInvoice)
	v1.GET("/invoices", s.ListInvoices)
	v1.GET("/invoices/:id", s.GetInvoiceByID)
	v1.PATCH("/invoices/:id", s.UpdateInvoice)
	v1.DELETE("/invoices/:id", s.DeleteInvoice)
	v1.POST("/invoices/:id/status", s.ChangeInvoiceStatus)
	v1.GET("/invoices/:id/payments", s.ListInvoicePayments)

	// -------- Suppliers --------
	v1.GET("/suppliers", s.ListSuppliers)
	v1.GET("/suppliers/:id", s.GetSupplierByID)

	// -------- Analytics --------
	v1.GET("/analytics/dashboard", s.GetDashboard)
	v1.GET("/analytics/trends", s.GetTrends)
	v1.GET("/analytics/predictions", s.GetPredictions)
	v1.GET("/analytics/supplier-ranking", s.GetSupplierRanking)
	v1.GET("/analytics/cashflow", s.GetCashflow)

	// -------- OCR --------
	v1.POST("/ocr/process", s.ProcessOCR)
}
