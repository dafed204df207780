package entity

import (
	"github.com/shopspring/decimal"

	"github.com/abhiya492/pdf-data-extraction-tool/constants"
)

// Record is the best-effort result of extracting one document. Every field
// is optional: a record with nothing set is a valid outcome (total
// extraction failure), not an error.
type Record struct {
	Kind       constants.DocKind
	SourceFile string

	// Invoice fields.
	InvoiceNumber *string
	Vendor        *string
	Total         *decimal.Decimal
	LineItems     []LineItem

	// Report fields.
	Title   *string
	Summary *string
	Metrics []Metric
	Tables  []Table

	// Shared: raw date string as found in the text. Format resolution is
	// deferred to the tabulator, which decides column-wide.
	Date *string
}

// LineItem is one row of an invoice's itemized table. The schema is whatever
// the detected header row contained; Headers preserves column order.
type LineItem struct {
	Headers []string
	Values  map[string]string
}

// Metric is a labeled observation scanned from a report page. Values that do
// not parse as numbers are kept as the original string rather than dropped.
type Metric struct {
	Label  string
	Number *float64
	Text   string
}

// Value returns the numeric value when present, the raw string otherwise.
func (m Metric) Value() any {
	if m.Number != nil {
		return *m.Number
	}
	return m.Text
}
