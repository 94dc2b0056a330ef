package handler_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"dairy-billing-backend/internal/events"
	"dairy-billing-backend/internal/logging"
	"dairy-billing-backend/internal/models"
	"dairy-billing-backend/internal/repository/memory"
	"dairy-billing-backend/internal/routes"
	"dairy-billing-backend/internal/services/billing"
	"dairy-billing-backend/internal/services/deliveries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	decimal.MarshalJSONWithoutQuotes = true
	os.Exit(m.Run())
}

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	store := memory.New()
	bills := billing.NewBillingService(store, events.Nop{}, billing.Options{Logger: logging.Discard()})
	svc := deliveries.NewDeliveryService(store, models.NewCatalog(), bills, deliveries.Options{Logger: logging.Discard()})

	r := gin.New()
	routes.RegisterRoutes(r, routes.Services{Deliveries: svc, Billing: bills, Currency: "$"})
	return r
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

func createCustomer(t *testing.T, r http.Handler, name string) models.Customer {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/customers", gin.H{"name": name, "address": "123 Main St", "phone": "555-123-4567"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create customer: %d %s", w.Code, w.Body.String())
	}
	return decode[struct {
		Customer models.Customer `json:"customer"`
	}](t, w).Customer
}

func createEntry(t *testing.T, r http.Handler, customerID uuid.UUID, date, product string, qty, price float64) models.Entry {
	t.Helper()
	w := do(t, r, http.MethodPost, "/api/entries", gin.H{
		"customer_id":    customerID,
		"date":           date,
		"product":        product,
		"quantity":       qty,
		"price_per_unit": price,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create entry: %d %s", w.Code, w.Body.String())
	}
	return decode[struct {
		Entry models.Entry `json:"entry"`
	}](t, w).Entry
}

func TestHealth(t *testing.T) {
	w := do(t, newRouter(t), http.MethodGet, "/api/health", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "ok") {
		t.Fatalf("health: %d %s", w.Code, w.Body.String())
	}
}

func TestBillLifecycle(t *testing.T) {
	r := newRouter(t)
	c := createCustomer(t, r, "John Doe")
	createEntry(t, r, c.ID, "2023-04-02", "Low-fat Milk", 1.5, 4)
	createEntry(t, r, c.ID, "2023-04-01", "Whole Milk", 2, 1.5)
	createEntry(t, r, c.ID, "2023-05-01", "Whole Milk", 1, 1.5)

	w := do(t, r, http.MethodGet, "/api/previews/bill?customer_id="+c.ID.String()+"&month=4&year=2023", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("preview: %d %s", w.Code, w.Body.String())
	}
	preview := decode[struct {
		Preview struct {
			LineItems   []models.Entry  `json:"line_items"`
			TotalAmount decimal.Decimal `json:"total_amount"`
		} `json:"preview"`
		Month   int    `json:"month"`
		Period  string `json:"period"`
		CanSave bool   `json:"can_save"`
	}](t, w)
	if !preview.Preview.TotalAmount.Equal(decimal.NewFromInt(9)) || !preview.CanSave {
		t.Fatalf("preview = %+v", preview)
	}
	if len(preview.Preview.LineItems) != 2 || preview.Preview.LineItems[0].Date.Day() != 1 {
		t.Fatalf("line items = %+v", preview.Preview.LineItems)
	}
	if preview.Month != 4 || preview.Period != "April 2023" {
		t.Fatalf("period = %d %q", preview.Month, preview.Period)
	}

	w = do(t, r, http.MethodPost, "/api/bills", gin.H{"customer_id": c.ID, "month": 4, "year": 2023})
	if w.Code != http.StatusCreated {
		t.Fatalf("generate: %d %s", w.Code, w.Body.String())
	}
	bill := decode[struct {
		Bill models.Bill `json:"bill"`
	}](t, w).Bill
	if bill.Month != 4 || bill.IsPaid || bill.PaidOn != nil || !bill.TotalAmount.Equal(decimal.NewFromInt(9)) {
		t.Fatalf("bill = %+v", bill)
	}

	paid := func() models.Bill {
		w := do(t, r, http.MethodPost, "/api/bills/"+bill.ID.String()+"/paid", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("mark paid: %d %s", w.Code, w.Body.String())
		}
		return decode[struct {
			Bill models.Bill `json:"bill"`
		}](t, w).Bill
	}
	first := paid()
	if !first.IsPaid || first.PaidOn == nil {
		t.Fatalf("paid bill = %+v", first.Payment)
	}
	second := paid()
	if !second.PaidOn.Equal(*first.PaidOn) {
		t.Fatalf("repeated mark paid moved paid_on from %v to %v", first.PaidOn, second.PaidOn)
	}

	w = do(t, r, http.MethodPost, "/api/bills/"+bill.ID.String()+"/unpaid", nil)
	unpaid := decode[struct {
		Bill models.Bill `json:"bill"`
	}](t, w).Bill
	if unpaid.IsPaid || unpaid.PaidOn != nil {
		t.Fatalf("unpaid bill = %+v", unpaid.Payment)
	}

	w = do(t, r, http.MethodGet, "/api/bills/"+bill.ID.String()+"/payments", nil)
	history := decode[struct {
		Payments []models.PaymentEvent `json:"payments"`
	}](t, w).Payments
	if len(history) != 2 || history[0].Action != models.ActionMarkPaid || history[1].Action != models.ActionMarkUnpaid {
		t.Fatalf("history = %+v", history)
	}

	w = do(t, r, http.MethodGet, "/api/bills?q=april", nil)
	list := decode[struct {
		Bills []billing.BillSummary `json:"bills"`
	}](t, w).Bills
	if len(list) != 1 || list[0].CustomerName != "John Doe" {
		t.Fatalf("list = %+v", list)
	}

	w = do(t, r, http.MethodGet, "/api/bills/"+bill.ID.String(), nil)
	detail := decode[billing.BillDetail](t, w)
	if detail.Stale || len(detail.LineItems) != 2 || detail.Period != "April 2023" {
		t.Fatalf("detail = %+v", detail)
	}
}

func TestGenerateEmptyPreviewRejected(t *testing.T) {
	r := newRouter(t)
	c := createCustomer(t, r, "Jane Smith")

	w := do(t, r, http.MethodPost, "/api/bills", gin.H{"customer_id": c.ID, "month": 1, "year": 2023})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d %s", w.Code, w.Body.String())
	}
	if body := decode[errorBody](t, w); !strings.Contains(body.Error, "nothing to bill") {
		t.Fatalf("error = %q", body.Error)
	}

	w = do(t, r, http.MethodGet, "/api/bills", nil)
	if n := len(decode[struct {
		Bills []billing.BillSummary `json:"bills"`
	}](t, w).Bills); n != 0 {
		t.Fatalf("%d bills stored after rejected generate", n)
	}
}

func TestPreviewValidation(t *testing.T) {
	r := newRouter(t)
	c := createCustomer(t, r, "Jane Smith")

	cases := []struct {
		name  string
		query string
		field string
		code  int
	}{
		{"missing month", "customer_id=" + c.ID.String() + "&year=2023", "month", http.StatusBadRequest},
		{"month too large", "customer_id=" + c.ID.String() + "&month=13&year=2023", "month", http.StatusBadRequest},
		{"bad customer id", "customer_id=abc&month=1&year=2023", "customer_id", http.StatusBadRequest},
		{"unknown customer", "customer_id=" + uuid.NewString() + "&month=1&year=2023", "", http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(t, r, http.MethodGet, "/api/previews/bill?"+tc.query, nil)
			if w.Code != tc.code {
				t.Fatalf("code = %d, want %d: %s", w.Code, tc.code, w.Body.String())
			}
			if tc.field != "" {
				if _, ok := decode[errorBody](t, w).Fields[tc.field]; !ok {
					t.Fatalf("expected field %q in %s", tc.field, w.Body.String())
				}
			}
		})
	}

	w := do(t, r, http.MethodGet, "/api/previews/bill?customer_id="+c.ID.String()+"&month=2&year=2023", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"can_save":false`) {
		t.Fatalf("empty preview: %d %s", w.Code, w.Body.String())
	}
}

func TestCustomerEndpoints(t *testing.T) {
	r := newRouter(t)

	w := do(t, r, http.MethodPost, "/api/customers", gin.H{"address": "x", "phone": "1", "email": "nope"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	fields := decode[errorBody](t, w).Fields
	if fields["name"] == "" || fields["email"] == "" {
		t.Fatalf("fields = %v", fields)
	}

	c := createCustomer(t, r, "Robert Johnson")
	if w := do(t, r, http.MethodGet, "/api/customers/not-a-uuid", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad id: %d", w.Code)
	}
	if w := do(t, r, http.MethodGet, "/api/customers/"+uuid.NewString(), nil); w.Code != http.StatusNotFound {
		t.Fatalf("unknown id: %d", w.Code)
	}

	w = do(t, r, http.MethodPut, "/api/customers/"+c.ID.String(), gin.H{"name": "Robert Johnson", "address": "789 Pine Rd", "phone": "555-456-7890", "email": "robert@example.com"})
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "789 Pine Rd") {
		t.Fatalf("update: %d %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodGet, "/api/customers?q=robert", nil)
	if n := len(decode[struct {
		Customers []models.Customer `json:"customers"`
	}](t, w).Customers); n != 1 {
		t.Fatalf("search returned %d customers", n)
	}

	createEntry(t, r, c.ID, "2023-04-01", "Skim Milk", 1, 1.25)
	if w := do(t, r, http.MethodDelete, "/api/customers/"+c.ID.String(), nil); w.Code != http.StatusBadRequest {
		t.Fatalf("delete with entries: %d", w.Code)
	}

	w = do(t, r, http.MethodGet, "/api/customers/"+c.ID.String()+"/detail", nil)
	detail := decode[deliveries.CustomerDetail](t, w)
	if len(detail.Entries) != 1 || detail.Customer.Email == nil {
		t.Fatalf("detail = %+v", detail)
	}
}

func TestEntryEndpoints(t *testing.T) {
	r := newRouter(t)
	c := createCustomer(t, r, "John Doe")
	e := createEntry(t, r, c.ID, "2023-04-01", "Whole Milk", 2, 1.5)
	if !e.Amount.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("amount = %s", e.Amount)
	}

	w := do(t, r, http.MethodPost, "/api/entries", gin.H{"customer_id": c.ID, "date": "2023-04-01", "product": "Cheese", "quantity": 1, "price_per_unit": 1})
	if w.Code != http.StatusBadRequest || decode[errorBody](t, w).Fields["product"] == "" {
		t.Fatalf("unknown product: %d %s", w.Code, w.Body.String())
	}
	w = do(t, r, http.MethodPost, "/api/entries", gin.H{"customer_id": uuid.New(), "date": "2023-04-01", "product": "Whole Milk", "quantity": 1, "price_per_unit": 1})
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown customer: %d %s", w.Code, w.Body.String())
	}
	w = do(t, r, http.MethodPost, "/api/entries", gin.H{"customer_id": c.ID, "date": "April 1", "product": "Whole Milk", "quantity": 1, "price_per_unit": 1})
	if w.Code != http.StatusBadRequest || decode[errorBody](t, w).Fields["date"] == "" {
		t.Fatalf("bad date: %d %s", w.Code, w.Body.String())
	}

	w = do(t, r, http.MethodPatch, "/api/entries/"+e.ID.String(), gin.H{"quantity": 3, "amount": 100})
	updated := decode[struct {
		Entry models.Entry `json:"entry"`
	}](t, w).Entry
	if !updated.Amount.Equal(decimal.RequireFromString("4.5")) {
		t.Fatalf("amount after patch = %s, want 4.5", updated.Amount)
	}

	w = do(t, r, http.MethodPost, "/api/entries/"+e.ID.String()+"/paid", nil)
	paid := decode[struct {
		Entry models.Entry `json:"entry"`
	}](t, w).Entry
	if !paid.IsPaid || paid.PaidOn == nil {
		t.Fatalf("paid entry = %+v", paid.Payment)
	}

	w = do(t, r, http.MethodGet, "/api/entries?q=whole&from=2023-04-01&to=2023-05-01", nil)
	list := decode[struct {
		Entries []deliveries.EntryView `json:"entries"`
	}](t, w).Entries
	if len(list) != 1 || list[0].CustomerName != "John Doe" {
		t.Fatalf("list = %+v", list)
	}

	if w := do(t, r, http.MethodDelete, "/api/entries/"+e.ID.String(), nil); w.Code != http.StatusOK {
		t.Fatalf("delete: %d", w.Code)
	}
	if w := do(t, r, http.MethodGet, "/api/entries/"+e.ID.String(), nil); w.Code != http.StatusNotFound {
		t.Fatalf("get after delete: %d", w.Code)
	}
}

func TestExportEndpoints(t *testing.T) {
	r := newRouter(t)
	c := createCustomer(t, r, "John Doe")
	createEntry(t, r, c.ID, "2023-04-01", "Organic Milk", 1, 3)

	period := "customer_id=" + c.ID.String() + "&month=4&year=2023"
	w := do(t, r, http.MethodGet, "/api/previews/bill/export?"+period+"&format=pdf", nil)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "application/pdf" {
		t.Fatalf("pdf export: %d %q", w.Code, w.Header().Get("Content-Type"))
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")) {
		t.Fatal("body is not a PDF")
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "bill-john-doe-april-2023.pdf") {
		t.Fatalf("content disposition = %q", cd)
	}

	w = do(t, r, http.MethodPost, "/api/bills", gin.H{"customer_id": c.ID, "month": 4, "year": 2023})
	bill := decode[struct {
		Bill models.Bill `json:"bill"`
	}](t, w).Bill

	w = do(t, r, http.MethodGet, "/api/bills/"+bill.ID.String()+"/export?format=xlsx", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Header().Get("Content-Type"), "spreadsheetml") {
		t.Fatalf("xlsx export: %d %q", w.Code, w.Header().Get("Content-Type"))
	}

	w = do(t, r, http.MethodGet, "/api/bills/"+bill.ID.String()+"/export?format=docx", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown format: %d", w.Code)
	}
}

func TestImportAndDashboard(t *testing.T) {
	r := newRouter(t)
	c := createCustomer(t, r, "John Doe")

	today := time.Now().UTC().Format("2006-01-02")
	csvData := "customer_id,date,product,quantity,price_per_unit\n" +
		c.ID.String() + "," + today + ",Whole Milk,2,1.50\n" +
		c.ID.String() + ",not-a-date,Whole Milk,2,1.50\n"

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "entries.csv")
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte(csvData))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/imports/entries", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("import: %d %s", w.Code, w.Body.String())
	}
	result := decode[deliveries.ImportResult](t, w)
	if result.Batch.ImportedCount != 1 || len(result.Errors) != 1 || result.Errors[0].Row != 3 {
		t.Fatalf("result = %+v", result)
	}

	if w := do(t, r, http.MethodPost, "/api/imports/entries", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("import without file: %d", w.Code)
	}

	w = do(t, r, http.MethodGet, "/api/dashboard", nil)
	dash := decode[deliveries.Dashboard](t, w)
	if dash.TotalCustomers != 1 || dash.TotalEntries != 1 || len(dash.TodayEntries) != 1 {
		t.Fatalf("dashboard = %+v", dash)
	}
	if !dash.TotalSales.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("total sales = %s", dash.TotalSales)
	}

	w = do(t, r, http.MethodGet, "/api/products", nil)
	if !strings.Contains(w.Body.String(), "Organic Milk") {
		t.Fatalf("products = %s", w.Body.String())
	}
}
