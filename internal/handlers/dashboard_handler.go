package handler

import (
	"net/http"

	"dairy-billing-backend/internal/services/deliveries"

	"github.com/gin-gonic/gin"
)

func (h *DashboardHandler) Dashboard(c *gin.Context) {
	dash, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dash)
}

func (h *DashboardHandler) Products(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"products": h.service.Products()})
}

// ImportEntries accepts a multipart CSV upload in the "file" field.
func (h *DashboardHandler) ImportEntries(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	defer file.Close()

	result, err := h.service.ImportEntries(c.Request.Context(), header.Filename, file)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "import finished",
		"batch":   result.Batch,
		"errors":  result.Errors,
	})
}

type DashboardHandler struct {
	service *deliveries.DeliveryService
}

func NewDashboardHandler(s *deliveries.DeliveryService) *DashboardHandler {
	return &DashboardHandler{service: s}
}
