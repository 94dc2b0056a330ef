package deliveries

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"dairy-billing-backend/internal/apperr"
	"dairy-billing-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var requiredColumns = []string{"customer_id", "date", "product", "quantity", "price_per_unit"}

// Accepted date layouts, tried in order.
var dateLayouts = []string{"2006-01-02", "02-01-2006"}

type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

type ImportResult struct {
	Batch  models.ImportBatch `json:"batch"`
	Errors []RowError         `json:"errors"`
}

// ImportEntries reads delivery entries from CSV (comma or tab separated, with
// a header row). Each valid row is created like a regular entry; invalid rows
// are skipped and reported by row number.
func (s *DeliveryService) ImportEntries(ctx context.Context, filename string, r io.Reader) (*ImportResult, error) {
	batch := &models.ImportBatch{
		ID:        uuid.New(),
		Filename:  filename,
		Status:    models.ImportProcessing,
		StartedAt: s.now().UTC(),
	}
	if err := s.imports.Create(ctx, batch); err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: []RowError{}}
	err := s.importRows(ctx, r, batch, result)

	completed := s.now().UTC()
	batch.CompletedAt = &completed
	batch.Status = models.ImportCompleted
	if err != nil {
		batch.Status = models.ImportFailed
	}
	if uerr := s.imports.Update(ctx, batch); uerr != nil && err == nil {
		err = uerr
	}

	s.logger.InfoContext(ctx, "entries imported",
		"batch_id", batch.ID,
		"file", filename,
		"rows", batch.TotalRows,
		"imported", batch.ImportedCount,
		"skipped", batch.SkippedCount,
		"status", batch.Status,
	)

	result.Batch = *batch
	if err != nil {
		return result, err
	}
	return result, nil
}

func (s *DeliveryService) importRows(ctx context.Context, r io.Reader, batch *models.ImportBatch, result *ImportResult) error {
	br := bufio.NewReader(r)
	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	if sample, _ := br.Peek(1024); !bytes.Contains(sample, []byte(",")) && bytes.Contains(sample, []byte("\t")) {
		reader.Comma = '\t'
	}

	header, err := reader.Read()
	if err != nil {
		return apperr.Validation("cannot read CSV header")
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	var missing []string
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return apperr.Validation("CSV header is missing columns: " + strings.Join(missing, ", "))
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		// Row numbers are file line numbers, so blank lines still count.
		var row int
		var parseErr *csv.ParseError
		switch {
		case errors.As(err, &parseErr):
			row = parseErr.StartLine
		case err == nil:
			row, _ = reader.FieldPos(0)
		}
		if err != nil {
			batch.TotalRows++
			batch.SkippedCount++
			result.Errors = append(result.Errors, RowError{Row: row, Error: err.Error()})
			continue
		}
		if strings.TrimSpace(strings.Join(record, "")) == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		batch.TotalRows++
		in, err := parseRow(record, columns)
		if err == nil {
			_, err = s.CreateEntry(ctx, in)
		}
		if err != nil {
			batch.SkippedCount++
			result.Errors = append(result.Errors, RowError{Row: row, Error: rowMessage(err)})
			s.logger.DebugContext(ctx, "import row skipped", "row", row, "error", err)
			continue
		}
		batch.ImportedCount++
	}
}

func parseRow(record []string, columns map[string]int) (EntryInput, error) {
	field := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var in EntryInput
	id, err := uuid.Parse(field("customer_id"))
	if err != nil {
		return in, fmt.Errorf("invalid customer_id %q", field("customer_id"))
	}
	in.CustomerID = id

	date, err := parseDate(field("date"))
	if err != nil {
		return in, err
	}
	in.Date = date
	in.Product = field("product")

	if in.Quantity, err = decimal.NewFromString(field("quantity")); err != nil {
		return in, fmt.Errorf("invalid quantity %q", field("quantity"))
	}
	if in.PricePerUnit, err = decimal.NewFromString(field("price_per_unit")); err != nil {
		return in, fmt.Errorf("invalid price_per_unit %q", field("price_per_unit"))
	}
	if v := field("is_paid"); v != "" {
		if in.IsPaid, err = strconv.ParseBool(v); err != nil {
			return in, fmt.Errorf("invalid is_paid %q", v)
		}
	}
	return in, nil
}

func parseDate(v string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD or DD-MM-YYYY", v)
}

// rowMessage flattens field errors into one line for the import report.
func rowMessage(err error) string {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || len(appErr.Fields) == 0 {
		return err.Error()
	}
	parts := make([]string, 0, len(appErr.Fields))
	for _, name := range append(requiredColumns, "paid_on") {
		if msg, ok := appErr.Fields[name]; ok {
			parts = append(parts, name+": "+msg)
		}
	}
	return strings.Join(parts, "; ")
}
