package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Bill"

// WriteXLSX renders the document as a single-sheet workbook: a header block,
// the line-item table and a totals row.
func WriteXLSX(doc Document) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("xlsx style: %w", err)
	}
	title, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return nil, fmt.Errorf("xlsx style: %w", err)
	}

	row := 1
	write := func(col int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheetName, cell, v)
	}
	styleRow := func(style int) {
		first, _ := excelize.CoordinatesToCellName(1, row)
		last, _ := excelize.CoordinatesToCellName(5, row)
		_ = f.SetCellStyle(sheetName, first, last, style)
	}

	write(1, doc.Title)
	styleRow(title)
	row++
	if doc.BillID != nil {
		write(1, "Bill ID")
		write(2, doc.BillID.String())
		row++
	}
	for _, kv := range [][2]string{
		{"Customer", doc.Customer.Name},
		{"Address", doc.Customer.Address},
		{"Phone", doc.Customer.Phone},
		{"Email", doc.Customer.EmailOrNA()},
		{"Period", doc.PeriodLabel},
		{"Billing Period", doc.PeriodRange()},
		{"Status", doc.Status()},
	} {
		write(1, kv[0])
		write(2, kv[1])
		row++
	}
	if doc.PaidOn != nil {
		write(1, "Paid On")
		write(2, doc.PaidOn.Format(dateLayout))
		row++
	}
	row++

	for i, h := range []string{"Date", "Product", "Quantity", "Unit Price", "Amount"} {
		write(i+1, h)
	}
	styleRow(bold)
	row++

	for _, r := range doc.Table.Rows {
		write(1, r.Date.Format(dateLayout))
		write(2, r.Product)
		write(3, r.Quantity.String())
		write(4, doc.money(r.UnitPrice))
		write(5, doc.money(r.Amount))
		row++
	}

	write(4, "Total")
	write(5, doc.money(doc.Table.Total))
	styleRow(bold)

	_ = f.SetColWidth(sheetName, "A", "A", 16)
	_ = f.SetColWidth(sheetName, "B", "B", 28)
	_ = f.SetColWidth(sheetName, "C", "E", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
