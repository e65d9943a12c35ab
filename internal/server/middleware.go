package server

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/smallbiznis/facturo/internal/companyctx"
	"github.com/smallbiznis/facturo/internal/observability/metrics"
	"go.uber.org/zap"
)

const (
	HeaderCompany   = "X-Company-ID"
	HeaderRequestID = "X-Request-ID"

	contextRequestIDKey = "request_id"
)

// RequestID propagates an inbound request id or generates one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(contextRequestIDKey, id)
		c.Writer.Header().Set(HeaderRequestID, id)
		c.Next()
	}
}

// CompanyContext resolves the tenant partition key from the X-Company-ID
// header or the company_id query param and injects it into the request
// context. Handlers that require it reject the request when absent.
func CompanyContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		companyID := strings.TrimSpace(c.GetHeader(HeaderCompany))
		if companyID == "" {
			companyID = strings.TrimSpace(c.Query("company_id"))
		}
		if companyID != "" {
			ctx := companyctx.WithCompanyID(c.Request.Context(), companyID)
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}

func companyIDFrom(c *gin.Context) string {
	companyID, _ := companyctx.CompanyIDFromContext(c.Request.Context())
	return companyID
}

// RequestLogger emits one structured line per request.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	log = log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetString(contextRequestIDKey)),
		}
		if companyID := companyIDFrom(c); companyID != "" {
			fields = append(fields, zap.String("company_id", companyID))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("error", c.Errors.Last().Error()))
			log.Warn("request failed", fields...)
			return
		}
		log.Info("request", fields...)
	}
}

// MetricsMiddleware records request counts and latency against the route
// template, keeping label cardinality bounded.
func MetricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
