package export

import (
	"bytes"
	"fmt"

	"github.com/phpdave11/gofpdf"
)

var columnWidths = []float64{35, 60, 25, 30, 30}

// WritePDF renders the document as an A4 portrait PDF.
func WritePDF(doc Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(doc.Title+" "+doc.PeriodLabel, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(doc.Title), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	if doc.BillID != nil {
		pdf.CellFormat(0, 6, "Bill ID: "+doc.BillID.String(), "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "Customer", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, line := range []string{
		doc.Customer.Name,
		doc.Customer.Address,
		"Phone: " + doc.Customer.Phone,
		"Email: " + doc.Customer.EmailOrNA(),
	} {
		pdf.CellFormat(0, 5, tr(line), "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	pdf.CellFormat(0, 5, tr("Period: "+doc.PeriodLabel), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, tr("Billing Period: "+doc.PeriodRange()), "", 1, "L", false, 0, "")
	status := "Status: " + doc.Status()
	if doc.PaidOn != nil {
		status += " (paid on " + doc.PaidOn.Format(dateLayout) + ")"
	}
	pdf.CellFormat(0, 5, status, "", 1, "L", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range []string{"Date", "Product", "Quantity", "Unit Price", "Amount"} {
		align := "R"
		if i < 2 {
			align = "L"
		}
		pdf.CellFormat(columnWidths[i], 7, h, "1", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, r := range doc.Table.Rows {
		pdf.CellFormat(columnWidths[0], 6, r.Date.Format(dateLayout), "1", 0, "L", false, 0, "")
		pdf.CellFormat(columnWidths[1], 6, tr(r.Product), "1", 0, "L", false, 0, "")
		pdf.CellFormat(columnWidths[2], 6, r.Quantity.String(), "1", 0, "R", false, 0, "")
		pdf.CellFormat(columnWidths[3], 6, tr(doc.money(r.UnitPrice)), "1", 0, "R", false, 0, "")
		pdf.CellFormat(columnWidths[4], 6, tr(doc.money(r.Amount)), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.SetFont("Helvetica", "B", 10)
	labelWidth := columnWidths[0] + columnWidths[1] + columnWidths[2] + columnWidths[3]
	pdf.CellFormat(labelWidth, 7, "Total", "1", 0, "R", true, 0, "")
	pdf.CellFormat(columnWidths[4], 7, tr(doc.money(doc.Table.Total)), "1", 1, "R", true, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf write: %w", err)
	}
	return buf.Bytes(), nil
}
