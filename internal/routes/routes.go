package routes

import (
	"net/http"

	"dairy-billing-backend/internal/apperr"
	handler "dairy-billing-backend/internal/handlers"
	"dairy-billing-backend/internal/services/billing"
	"dairy-billing-backend/internal/services/deliveries"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type Services struct {
	Deliveries *deliveries.DeliveryService
	Billing    *billing.BillingService
	Currency   string
}

func RegisterRoutes(r *gin.Engine, s Services) {
	// Binding errors name fields by their json tag.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		apperr.UseJSONNames(v)
	}

	customerHandler := handler.NewCustomerHandler(s.Deliveries)
	entryHandler := handler.NewEntryHandler(s.Deliveries, s.Billing)
	billHandler := handler.NewBillHandler(s.Billing, s.Currency)
	dashboardHandler := handler.NewDashboardHandler(s.Deliveries)

	api := r.Group("/api")

	// Health check
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api.GET("/dashboard", dashboardHandler.Dashboard)
	api.GET("/products", dashboardHandler.Products)

	customers := api.Group("/customers")
	{
		customers.GET("", customerHandler.List)
		customers.POST("", customerHandler.Create)
		customers.GET("/:id", customerHandler.Get)
		customers.PUT("/:id", customerHandler.Update)
		customers.DELETE("/:id", customerHandler.Delete)
		customers.GET("/:id/detail", customerHandler.Detail)
	}

	entries := api.Group("/entries")
	{
		entries.GET("", entryHandler.List)
		entries.POST("", entryHandler.Create)
		entries.GET("/:id", entryHandler.Get)
		entries.PATCH("/:id", entryHandler.Update)
		entries.DELETE("/:id", entryHandler.Delete)
		entries.POST("/:id/paid", entryHandler.MarkPaid)
		entries.POST("/:id/unpaid", entryHandler.MarkUnpaid)
		entries.GET("/:id/payments", entryHandler.Payments)
	}

	api.POST("/imports/entries", dashboardHandler.ImportEntries)

	previews := api.Group("/previews")
	{
		previews.GET("/bill", billHandler.Preview)
		previews.GET("/bill/export", billHandler.ExportPreview)
	}

	bills := api.Group("/bills")
	{
		bills.GET("", billHandler.List)
		bills.POST("", billHandler.Generate)
		bills.GET("/:id", billHandler.Get)
		bills.POST("/:id/paid", billHandler.MarkPaid)
		bills.POST("/:id/unpaid", billHandler.MarkUnpaid)
		bills.GET("/:id/payments", billHandler.Payments)
		bills.GET("/:id/export", billHandler.Export)
	}
}
