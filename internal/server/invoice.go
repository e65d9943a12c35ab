package server

import (
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	invoicedomain "github.com/smallbiznis/facturo/internal/invoice/domain"
)

func (s *Server) CreateInvoice(c *gin.Context) {
	var req invoicedomain.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if companyID := companyIDFrom(c); companyID != "" {
		req.CompanyID = companyID
	}

	created, err := s.invoiceSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.metrics.RecordInvoiceCreated(string(created.Status))
	c.JSON(http.StatusCreated, gin.H{"data": created})
}

func (s *Server) ListInvoices(c *gin.Context) {
	req := invoicedomain.ListInvoiceRequest{
		CompanyID:    companyIDFrom(c),
		Status:       invoicedomain.InvoiceStatus(strings.TrimSpace(c.Query("status"))),
		SupplierName: strings.TrimSpace(c.Query("supplier_name")),
		SortBy:       invoicedomain.SortKey(strings.TrimSpace(c.Query("sort_by"))),
	}

	from, err := parseOptionalTime(c.Query("from"), false)
	if err != nil {
		AbortWithError(c, newValidationError("from", "invalid_time", "invalid value"))
		return
	}
	req.From = from

	to, err := parseOptionalTime(c.Query("to"), true)
	if err != nil {
		AbortWithError(c, newValidationError("to", "invalid_time", "invalid value"))
		return
	}
	req.To = to

	desc, err := parseOptionalBool(c.Query("sort_desc"))
	if err != nil {
		AbortWithError(c, newValidationError("sort_desc", "invalid_bool", "invalid value"))
		return
	}
	req.SortDesc = desc

	if limit, ok, err := parseOptionalInt(c.Query("limit")); err != nil {
		AbortWithError(c, newValidationError("limit", "invalid_int", "invalid value"))
		return
	} else if ok {
		req.Limit = limit
	}
	if offset, ok, err := parseOptionalInt(c.Query("offset")); err != nil {
		AbortWithError(c, newValidationError("offset", "invalid_int", "invalid value"))
		return
	} else if ok {
		req.Offset = offset
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Invoices, "total": resp.Total})
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	id, ok := invoiceIDParam(c)
	if !ok {
		return
	}

	item, err := s.invoiceSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) UpdateInvoice(c *gin.Context) {
	id, ok := invoiceIDParam(c)
	if !ok {
		return
	}

	var req invoicedomain.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	updated, err := s.invoiceSvc.Update(c.Request.Context(), id, req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": updated})
}

func (s *Server) DeleteInvoice(c *gin.Context) {
	id, ok := invoiceIDParam(c)
	if !ok {
		return
	}

	deleted, err := s.invoiceSvc.Delete(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": deleted})
}

func (s *Server) ChangeInvoiceStatus(c *gin.Context) {
	id, ok := invoiceIDParam(c)
	if !ok {
		return
	}

	var body struct {
		Status invoicedomain.InvoiceStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	updated, err := s.invoiceSvc.ChangeStatus(c.Request.Context(), id, body.Status)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": updated})
}

func (s *Server) ListInvoicePayments(c *gin.Context) {
	id, ok := invoiceIDParam(c)
	if !ok {
		return
	}

	payments, err := s.invoiceSvc.ListPayments(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": payments})
}

func invoiceIDParam(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(c.Param("id"))
	if _, err := snowflake.ParseString(id); err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return "", false
	}
	return id, true
}
