package handler

import (
	"net/http"

	"dairy-billing-backend/internal/services/deliveries"

	"github.com/gin-gonic/gin"
)

func (h *CustomerHandler) List(c *gin.Context) {
	customers, err := h.service.ListCustomers(c.Request.Context(), c.Query("q"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": customers})
}

func (h *CustomerHandler) Create(c *gin.Context) {
	var payload deliveries.CustomerInput
	if !bindJSON(c, &payload) {
		return
	}

	customer, err := h.service.CreateCustomer(c.Request.Context(), payload)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "customer created", "customer": customer})
}

func (h *CustomerHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id", "customer")
	if !ok {
		return
	}

	customer, err := h.service.GetCustomer(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customer": customer})
}

// Detail is the customer page: entries, bills and month totals.
func (h *CustomerHandler) Detail(c *gin.Context) {
	id, ok := parseID(c, "id", "customer")
	if !ok {
		return
	}

	detail, err := h.service.CustomerDetail(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *CustomerHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id", "customer")
	if !ok {
		return
	}
	var payload deliveries.CustomerInput
	if !bindJSON(c, &payload) {
		return
	}

	customer, err := h.service.UpdateCustomer(c.Request.Context(), id, payload)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "customer updated", "customer": customer})
}

func (h *CustomerHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id", "customer")
	if !ok {
		return
	}

	if err := h.service.DeleteCustomer(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "customer deleted"})
}

type CustomerHandler struct {
	service *deliveries.DeliveryService
}

func NewCustomerHandler(s *deliveries.DeliveryService) *CustomerHandler {
	return &CustomerHandler{service: s}
}
