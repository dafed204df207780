package extract

import (
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/abhiya492/pdf-data-extraction-tool/constants"
	"github.com/abhiya492/pdf-data-extraction-tool/internal/entity"
)

var (
	invoiceNumberRe = regexp.MustCompile(`(?i)Invoice\s*#?:?\s*([A-Z0-9\-]+)`)
	dateRe          = regexp.MustCompile(`(?i)Date:?\s*(\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4})`)

	// First "Total"-labeled number wins, falling back to a bare
	// currency-prefixed number. Substring labels like "Subtotal" match too;
	// that is the documented behavior of this heuristic, not a defect.
	totalRe = regexp.MustCompile(`(?i)Total:?\s*\$?(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)|\$(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)`)
)

// InvoiceExtractor pulls identifier, date, vendor, total and line items out
// of invoice page text and candidate tables.
type InvoiceExtractor struct {
	Logger *slog.Logger
}

func (e *InvoiceExtractor) Extract(doc *entity.Document) *entity.Record {
	rec := &entity.Record{Kind: constants.KindInvoice, SourceFile: filepath.Base(doc.Path)}

	text := doc.FirstPage()
	if text != "" {
		if m := invoiceNumberRe.FindStringSubmatch(text); m != nil {
			v := strings.TrimSpace(m[1])
			rec.InvoiceNumber = &v
		}
		if m := dateRe.FindStringSubmatch(text); m != nil {
			v := m[1]
			rec.Date = &v
		}
		rec.Total = findAmount(text)
		if line := firstNonEmptyLine(text); line != "" {
			rec.Vendor = &line
		}
	}

	for _, table := range doc.Tables {
		if !hasLineItemHeader(table.Headers) {
			continue
		}
		for _, row := range table.Rows {
			rec.LineItems = append(rec.LineItems, lineItemFromRow(table.Headers, row))
		}
	}

	if e.Logger != nil {
		e.Logger.Debug("extract.invoice",
			"has_number", rec.InvoiceNumber != nil,
			"has_date", rec.Date != nil,
			"has_total", rec.Total != nil,
			"line_items", len(rec.LineItems),
		)
	}
	return rec
}

// findAmount returns the first matched monetary value with thousands
// separators stripped, nil when nothing matched or the digits fail to parse.
func findAmount(text string) *decimal.Decimal {
	m := totalRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	raw := m[1]
	if raw == "" {
		raw = m[2]
	}
	if raw == "" {
		return nil
	}
	raw = strings.ReplaceAll(raw, ",", "")
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil
	}
	return &d
}

// hasLineItemHeader reports whether any header contains a currency or
// quantity keyword. Tables without one are not line-item candidates.
func hasLineItemHeader(headers []string) bool {
	for _, h := range headers {
		lower := strings.ToLower(h)
		for _, kw := range constants.LineItemKeywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return false
}

func lineItemFromRow(headers []string, row []string) entity.LineItem {
	item := entity.LineItem{
		Headers: append([]string(nil), headers...),
		Values:  make(map[string]string, len(headers)),
	}
	for i, h := range headers {
		if i < len(row) {
			item.Values[h] = row[i]
		} else {
			item.Values[h] = ""
		}
	}
	return item
}

// firstNonEmptyLine is the positional vendor/title heuristic: whatever sits
// on the first non-blank line of page one, trimmed, no validation.
func firstNonEmptyLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
