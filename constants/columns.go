package constants

// Fixed column names produced by the tabulator.
const (
	ColInvoiceNumber = "invoice_number"
	ColDate          = "date"
	ColVendor        = "vendor"
	ColTotalAmount   = "total_amount"
	ColLineItemCount = "line_item_count"

	ColTitle      = "title"
	ColSummary    = "summary"
	ColTableCount = "table_count"
)

// MetricColumnPrefix disambiguates dynamic report metrics from fixed columns.
const MetricColumnPrefix = "metric_"

// LineItemKeywords mark a table header as a line-item candidate
// (case-insensitive substring match).
var LineItemKeywords = []string{"price", "amount", "total", "cost"}

// DateLayouts are tried in order when resolving a raw date column.
// The separator alone does not disambiguate day/month order, so the first
// layout that parses every non-null value in the column wins.
var DateLayouts = []string{
	"1/2/2006",
	"2/1/2006",
	"1-2-2006",
	"2-1-2006",
	"1.2.2006",
	"2.1.2006",
}

// MonthKeyLayout is the canonical key for monthly groupings in insights.
const MonthKeyLayout = "2006-01"
