package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	supplierdomain "github.com/smallbiznis/facturo/internal/supplier/domain"
)

func (s *Server) ListSuppliers(c *gin.Context) {
	resp, err := s.supplierSvc.List(c.Request.Context(), supplierdomain.ListSupplierRequest{
		CompanyID: companyIDFrom(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Suppliers})
}

func (s *Server) GetSupplierByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	item, err := s.supplierSvc.GetByID(c.Request.Context(), companyIDFrom(c), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}
