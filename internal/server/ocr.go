package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/facturo/internal/ocr"
)

func (s *Server) ProcessOCR(c *gin.Context) {
	var body struct {
		ImageURL  string `json:"image_url"`
		ImageData []byte `json:"image_data"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	extraction, err := s.ocrSvc.ProcessImage(c.Request.Context(), ocr.ProcessRequest{
		CompanyID: companyIDFrom(c),
		ImageURL:  body.ImageURL,
		ImageData: body.ImageData,
	})
	if err != nil {
		s.metrics.RecordOCRRequest("error")
		AbortWithError(c, err)
		return
	}

	s.metrics.RecordOCRRequest("ok")
	c.JSON(http.StatusOK, gin.H{"data": extraction})
}
