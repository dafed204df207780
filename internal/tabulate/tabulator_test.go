package tabulate

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhiya492/pdf-data-extraction-tool/constants"
	"github.com/abhiya492/pdf-data-extraction-tool/internal/entity"
)

func strPtr(s string) *string { return &s }

func amount(s string) *decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return &d
}

func TestTabulateInvoices(t *testing.T) {
	records := []*entity.Record{
		{
			Kind:          constants.KindInvoice,
			InvoiceNumber: strPtr("INV-1"),
			Vendor:        strPtr("Acme"),
			Total:         amount("100.50"),
			LineItems:     []entity.LineItem{{}, {}},
		},
		{Kind: constants.KindInvoice, InvoiceNumber: strPtr("INV-2")},
	}

	ds := NewTabulator(nil).Tabulate(constants.KindInvoice, records)

	assert.Equal(t, []string{
		constants.ColInvoiceNumber,
		constants.ColDate,
		constants.ColVendor,
		constants.ColTotalAmount,
		constants.ColLineItemCount,
	}, ds.Columns)
	require.Len(t, ds.Rows, 2)

	total, ok := ds.Cell(0, constants.ColTotalAmount).Number()
	require.True(t, ok)
	assert.Equal(t, 100.50, total)
	count, ok := ds.Cell(0, constants.ColLineItemCount).Number()
	require.True(t, ok)
	assert.Equal(t, 2.0, count)

	// Missing fields become explicit nulls, not zero values.
	assert.True(t, ds.Cell(1, constants.ColVendor).IsNull())
	assert.True(t, ds.Cell(1, constants.ColTotalAmount).IsNull())
}

func TestTabulateKeyColumnPromotion(t *testing.T) {
	fullyKeyed := []*entity.Record{
		{InvoiceNumber: strPtr("A-1")},
		{InvoiceNumber: strPtr("A-2")},
	}
	ds := NewTabulator(nil).Tabulate(constants.KindInvoice, fullyKeyed)
	assert.Equal(t, constants.ColInvoiceNumber, ds.KeyColumn)
	assert.Equal(t, "A-2", ds.RowRef(1))

	// One missing identifier keeps the dataset positionally indexed.
	sparse := []*entity.Record{
		{InvoiceNumber: strPtr("A-1")},
		{},
	}
	ds = NewTabulator(nil).Tabulate(constants.KindInvoice, sparse)
	assert.Equal(t, "", ds.KeyColumn)
	assert.Equal(t, "1", ds.RowRef(1))
}

func TestTabulateReportsMetricUnion(t *testing.T) {
	n1, n2, n3 := 10.0, 20.0, 30.0
	records := []*entity.Record{
		{
			Kind:    constants.KindReport,
			Title:   strPtr("R1"),
			Metrics: []entity.Metric{{Label: "Revenue", Number: &n1}, {Label: "Head Count", Number: &n2}},
		},
		{
			Kind:    constants.KindReport,
			Title:   strPtr("R2"),
			Metrics: []entity.Metric{{Label: "Expenses", Number: &n3}},
		},
	}

	ds := NewTabulator(nil).Tabulate(constants.KindReport, records)

	// Fixed columns first, then metric columns in first-seen order.
	assert.Equal(t, []string{
		constants.ColTitle,
		constants.ColDate,
		constants.ColSummary,
		constants.ColTableCount,
		"metric_revenue",
		"metric_head_count",
		"metric_expenses",
	}, ds.Columns)

	v, ok := ds.Cell(0, "metric_revenue").Number()
	require.True(t, ok)
	assert.Equal(t, 10.0, v)

	// Rows lacking a metric get nulls both ways.
	assert.True(t, ds.Cell(0, "metric_expenses").IsNull())
	assert.True(t, ds.Cell(1, "metric_revenue").IsNull())
}

func TestTabulateReportsTextMetric(t *testing.T) {
	records := []*entity.Record{
		{Kind: constants.KindReport, Metrics: []entity.Metric{{Label: "Grade", Text: "12e"}}},
	}
	ds := NewTabulator(nil).Tabulate(constants.KindReport, records)

	c := ds.Cell(0, "metric_grade")
	assert.Equal(t, entity.CellString, c.Kind())
	assert.Equal(t, "12e", c.Render())
	assert.False(t, ds.IsNumeric("metric_grade"))
}

func TestNormalizeMetricKey(t *testing.T) {
	assert.Equal(t, "metric_total_revenue", NormalizeMetricKey("Total Revenue"))
	assert.Equal(t, "metric_ebitda", NormalizeMetricKey("EBITDA"))
}
