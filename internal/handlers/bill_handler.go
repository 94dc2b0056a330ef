package handler

import (
	"net/http"
	"strconv"

	"dairy-billing-backend/internal/apperr"
	"dairy-billing-backend/internal/export"
	"dairy-billing-backend/internal/models"
	"dairy-billing-backend/internal/services/billing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// periodRequest selects a customer's month. Month is one-based here and
// converted to the zero-based index the billing service works with.
type periodRequest struct {
	CustomerID string `form:"customer_id" json:"customer_id" binding:"required,uuid"`
	Month      int    `form:"month" json:"month" binding:"required,min=1,max=12"`
	Year       int    `form:"year" json:"year" binding:"required,min=1"`
}

func (p periodRequest) monthIndex() int { return p.Month - 1 }

func (h *BillHandler) Preview(c *gin.Context) {
	var q periodRequest
	if !bindQuery(c, &q) {
		return
	}

	preview, err := h.service.Preview(c.Request.Context(), uuid.MustParse(q.CustomerID), q.monthIndex(), q.Year)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"preview":  preview,
		"month":    preview.Month(),
		"period":   models.PeriodLabel(preview.Month(), preview.Year),
		"can_save": !preview.Empty(),
	})
}

func (h *BillHandler) ExportPreview(c *gin.Context) {
	var q periodRequest
	if !bindQuery(c, &q) {
		return
	}

	preview, err := h.service.Preview(c.Request.Context(), uuid.MustParse(q.CustomerID), q.monthIndex(), q.Year)
	if err != nil {
		writeError(c, err)
		return
	}
	h.render(c, export.FromPreview(*preview, h.currency))
}

func (h *BillHandler) Generate(c *gin.Context) {
	var payload periodRequest
	if !bindJSON(c, &payload) {
		return
	}

	bill, err := h.service.Generate(c.Request.Context(), uuid.MustParse(payload.CustomerID), payload.monthIndex(), payload.Year)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "bill generated", "bill": bill})
}

func (h *BillHandler) List(c *gin.Context) {
	q := billing.BillQuery{Query: c.Query("q")}
	var err error
	if q.CustomerID, err = optionalUUID("customer_id", c.Query("customer_id")); err != nil {
		writeError(c, err)
		return
	}
	if v := c.Query("paid"); v != "" {
		paid, perr := strconv.ParseBool(v)
		if perr != nil {
			writeError(c, apperr.ValidationFields(map[string]string{"paid": "must be true or false"}))
			return
		}
		q.Paid = &paid
	}

	bills, err := h.service.ListBills(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bills": bills})
}

func (h *BillHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id", "bill")
	if !ok {
		return
	}

	detail, err := h.service.GetBill(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *BillHandler) MarkPaid(c *gin.Context) {
	id, ok := parseID(c, "id", "bill")
	if !ok {
		return
	}

	bill, err := h.service.MarkBillPaid(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "bill marked as paid", "bill": bill})
}

func (h *BillHandler) MarkUnpaid(c *gin.Context) {
	id, ok := parseID(c, "id", "bill")
	if !ok {
		return
	}

	bill, err := h.service.MarkBillUnpaid(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "bill marked as unpaid", "bill": bill})
}

func (h *BillHandler) Payments(c *gin.Context) {
	id, ok := parseID(c, "id", "bill")
	if !ok {
		return
	}

	history, err := h.service.PaymentHistory(c.Request.Context(), models.SubjectBill, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": history})
}

// Export renders the stored line-item snapshot, not the current entries.
func (h *BillHandler) Export(c *gin.Context) {
	id, ok := parseID(c, "id", "bill")
	if !ok {
		return
	}

	detail, err := h.service.GetBill(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	h.render(c, export.FromBill(detail.Bill, detail.Customer, detail.LineItems, h.currency))
}

func (h *BillHandler) render(c *gin.Context, doc export.Document) {
	format := c.DefaultQuery("format", export.FormatPDF)
	data, contentType, err := export.Render(doc, format)
	if err != nil {
		writeError(c, apperr.Backend("render "+format, err))
		return
	}
	attachment(c, doc.Filename(format), contentType, data)
}

type BillHandler struct {
	service  *billing.BillingService
	currency string
}

func NewBillHandler(s *billing.BillingService, currency string) *BillHandler {
	return &BillHandler{service: s, currency: currency}
}
