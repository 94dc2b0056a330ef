package handler

import (
	"net/http"

	"dairy-billing-backend/internal/models"
	"dairy-billing-backend/internal/services/billing"
	"dairy-billing-backend/internal/services/deliveries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type entryRequest struct {
	CustomerID   string          `json:"customer_id" binding:"required,uuid"`
	Date         string          `json:"date" binding:"required"`
	Product      string          `json:"product" binding:"required"`
	Quantity     decimal.Decimal `json:"quantity"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	IsPaid       bool            `json:"is_paid"`
}

// entryPatchRequest carries only the fields being changed. Amount is not accepted.
type entryPatchRequest struct {
	Date         *string          `json:"date"`
	Product      *string          `json:"product"`
	Quantity     *decimal.Decimal `json:"quantity"`
	PricePerUnit *decimal.Decimal `json:"price_per_unit"`
	IsPaid       *bool            `json:"is_paid"`
}

func (h *EntryHandler) List(c *gin.Context) {
	var (
		q   deliveries.EntryQuery
		err error
	)
	q.Query = c.Query("q")
	if q.CustomerID, err = optionalUUID("customer_id", c.Query("customer_id")); err != nil {
		writeError(c, err)
		return
	}
	if q.From, err = optionalDate("from", c.Query("from")); err != nil {
		writeError(c, err)
		return
	}
	if q.To, err = optionalDate("to", c.Query("to")); err != nil {
		writeError(c, err)
		return
	}

	entries, err := h.deliveries.ListEntries(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (h *EntryHandler) Create(c *gin.Context) {
	var payload entryRequest
	if !bindJSON(c, &payload) {
		return
	}
	date, err := parseDate("date", payload.Date)
	if err != nil {
		writeError(c, err)
		return
	}

	entry, err := h.deliveries.CreateEntry(c.Request.Context(), deliveries.EntryInput{
		CustomerID:   uuid.MustParse(payload.CustomerID),
		Date:         date,
		Product:      payload.Product,
		Quantity:     payload.Quantity,
		PricePerUnit: payload.PricePerUnit,
		IsPaid:       payload.IsPaid,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "entry created", "entry": entry})
}

func (h *EntryHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id", "entry")
	if !ok {
		return
	}

	entry, err := h.deliveries.GetEntry(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entry": entry})
}

func (h *EntryHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id", "entry")
	if !ok {
		return
	}
	var payload entryPatchRequest
	if !bindJSON(c, &payload) {
		return
	}

	patch := deliveries.EntryPatch{
		Product:      payload.Product,
		Quantity:     payload.Quantity,
		PricePerUnit: payload.PricePerUnit,
		IsPaid:       payload.IsPaid,
	}
	if payload.Date != nil {
		date, err := parseDate("date", *payload.Date)
		if err != nil {
			writeError(c, err)
			return
		}
		patch.Date = &date
	}

	entry, err := h.deliveries.UpdateEntry(c.Request.Context(), id, patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "entry updated", "entry": entry})
}

func (h *EntryHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id", "entry")
	if !ok {
		return
	}

	if err := h.deliveries.DeleteEntry(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "entry deleted"})
}

func (h *EntryHandler) MarkPaid(c *gin.Context) {
	id, ok := parseID(c, "id", "entry")
	if !ok {
		return
	}

	entry, err := h.billing.MarkEntryPaid(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "entry marked as paid", "entry": entry})
}

func (h *EntryHandler) MarkUnpaid(c *gin.Context) {
	id, ok := parseID(c, "id", "entry")
	if !ok {
		return
	}

	entry, err := h.billing.MarkEntryUnpaid(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "entry marked as unpaid", "entry": entry})
}

func (h *EntryHandler) Payments(c *gin.Context) {
	id, ok := parseID(c, "id", "entry")
	if !ok {
		return
	}

	history, err := h.billing.PaymentHistory(c.Request.Context(), models.SubjectEntry, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": history})
}

type EntryHandler struct {
	deliveries *deliveries.DeliveryService
	billing    *billing.BillingService
}

func NewEntryHandler(d *deliveries.DeliveryService, b *billing.BillingService) *EntryHandler {
	return &EntryHandler{deliveries: d, billing: b}
}
