package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	cashflowdomain "github.com/smallbiznis/facturo/internal/cashflow/domain"
	dashboarddomain "github.com/smallbiznis/facturo/internal/dashboard/domain"
	forecastdomain "github.com/smallbiznis/facturo/internal/forecast/domain"
	rankdomain "github.com/smallbiznis/facturo/internal/supplierrank/domain"
	trenddomain "github.com/smallbiznis/facturo/internal/trend/domain"
)

func (s *Server) GetDashboard(c *gin.Context) {
	resp, err := s.dashboard.Get(c.Request.Context(), dashboarddomain.DashboardRequest{
		CompanyID: companyIDFrom(c),
		Period:    strings.TrimSpace(c.Query("period")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetTrends(c *gin.Context) {
	req := trenddomain.TrendRequest{CompanyID: companyIDFrom(c)}
	if months, ok, err := parseOptionalInt(c.Query("months")); err != nil {
		AbortWithError(c, newValidationError("months", "invalid_int", "invalid value"))
		return
	} else if ok {
		req.Months = months
	}

	resp, err := s.trends.Analyze(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPredictions(c *gin.Context) {
	resp, err := s.forecasts.Predict(c.Request.Context(), forecastdomain.PredictRequest{
		CompanyID: companyIDFrom(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetSupplierRanking(c *gin.Context) {
	req := rankdomain.RankRequest{CompanyID: companyIDFrom(c)}
	if months, ok, err := parseOptionalInt(c.Query("months")); err != nil {
		AbortWithError(c, newValidationError("months", "invalid_int", "invalid value"))
		return
	} else if ok {
		req.Months = months
	}
	if limit, ok, err := parseOptionalInt(c.Query("limit")); err != nil {
		AbortWithError(c, newValidationError("limit", "invalid_int", "invalid value"))
		return
	} else if ok {
		req.Limit = limit
	}

	resp, err := s.ranking.Rank(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCashflow(c *gin.Context) {
	req := cashflowdomain.CashflowRequest{CompanyID: companyIDFrom(c)}
	if months, ok, err := parseOptionalInt(c.Query("months")); err != nil {
		AbortWithError(c, newValidationError("months", "invalid_int", "invalid value"))
		return
	} else if ok {
		req.Months = months
	}

	resp, err := s.cashflow.Project(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
