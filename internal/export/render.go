package export

import (
	"strings"

	"dairy-billing-backend/internal/apperr"
)

// Render writes the document in the requested format and returns the bytes
// with their content type.
func Render(doc Document, format string) ([]byte, string, error) {
	switch strings.ToLower(format) {
	case FormatXLSX:
		b, err := WriteXLSX(doc)
		return b, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", err
	case FormatPDF:
		b, err := WritePDF(doc)
		return b, "application/pdf", err
	default:
		return nil, "", apperr.ValidationFields(map[string]string{"format": "must be xlsx or pdf"})
	}
}
