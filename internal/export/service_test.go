package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhiya492/pdf-data-extraction-tool/constants"
	"github.com/abhiya492/pdf-data-extraction-tool/internal/common"
	"github.com/abhiya492/pdf-data-extraction-tool/internal/entity"
)

func strPtr(s string) *string { return &s }

func sampleDataset() *entity.Dataset {
	return &entity.Dataset{
		Columns: []string{
			constants.ColInvoiceNumber,
			constants.ColDate,
			constants.ColTotalAmount,
		},
		Rows: []entity.Row{
			{
				constants.ColInvoiceNumber: entity.StringCell("INV-1"),
				constants.ColDate:          entity.TimeCell(time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)),
				constants.ColTotalAmount:   entity.NumberCell(99.5),
			},
			{
				constants.ColInvoiceNumber: entity.StringCell("INV-2"),
				constants.ColDate:          entity.NullCell(),
				constants.ColTotalAmount:   entity.NullCell(),
			},
		},
	}
}

func sampleInvoiceRecords() []*entity.Record {
	total := decimal.RequireFromString("99.50")
	return []*entity.Record{
		{
			Kind:          constants.KindInvoice,
			SourceFile:    "a.pdf",
			InvoiceNumber: strPtr("INV-1"),
			Vendor:        strPtr("Acme"),
			Total:         &total,
			Date:          strPtr("5/1/2023"),
			LineItems: []entity.LineItem{
				{Headers: []string{"Item", "Amount"}, Values: map[string]string{"Item": "Widget", "Amount": "99.50"}},
			},
		},
		{Kind: constants.KindInvoice, SourceFile: "b.pdf"},
	}
}

func TestCSVRequiresTabulatedDataset(t *testing.T) {
	_, err := NewService(nil).CSVBytes(nil)
	assert.ErrorIs(t, err, common.ErrNotTabulated)

	// An empty but tabulated dataset exports a header-only file.
	out, err := NewService(nil).CSVBytes(&entity.Dataset{Columns: []string{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(out))
}

func TestCSVRendersNullsEmpty(t *testing.T) {
	out, err := NewService(nil).CSVBytes(sampleDataset())
	require.NoError(t, err)

	want := "invoice_number,date,total_amount\n" +
		"INV-1,2023-05-01,99.5\n" +
		"INV-2,,\n"
	assert.Equal(t, want, string(out))
}

func TestXLSXRequiresTabulatedDataset(t *testing.T) {
	_, err := NewService(nil).XLSXBytes(nil)
	assert.ErrorIs(t, err, common.ErrNotTabulated)

	out, err := NewService(nil).XLSXBytes(sampleDataset())
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestRecordsJSONInvoiceShape(t *testing.T) {
	out, err := NewService(nil).RecordsJSON(sampleInvoiceRecords())
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	require.Len(t, decoded, 2)

	first := decoded[0]
	assert.Equal(t, "a.pdf", first["filename"])
	assert.Equal(t, "INV-1", first["invoice_number"])
	// Monetary totals are stringified with two decimals, never floats.
	assert.Equal(t, "99.50", first["total_amount"])
	items := first["line_items"].([]any)
	require.Len(t, items, 1)

	// A record with nothing extracted serializes with explicit nulls.
	second := decoded[1]
	assert.Nil(t, second["invoice_number"])
	assert.Nil(t, second["total_amount"])
	assert.Nil(t, second["vendor"])
}

func TestRecordsJSONReportShape(t *testing.T) {
	n := 1500000.0
	records := []*entity.Record{
		{
			Kind:       constants.KindReport,
			SourceFile: "q1.pdf",
			Title:      strPtr("Q1 Report"),
			Metrics:    []entity.Metric{{Label: "Revenue", Number: &n}, {Label: "Grade", Text: "A+"}},
			Tables: []entity.Table{
				{Headers: []string{"Region"}, Rows: [][]string{{"West"}, {"East"}}},
			},
		},
	}

	out, err := NewService(nil).RecordsJSON(records)
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	rec := decoded[0]

	metrics := rec["key_metrics"].(map[string]any)
	assert.Equal(t, 1500000.0, metrics["Revenue"])
	assert.Equal(t, "A+", metrics["Grade"])

	tables := rec["tables"].([]any)
	require.Len(t, tables, 1)
	region := tables[0].(map[string]any)["Region"].([]any)
	assert.Equal(t, []any{"West", "East"}, region)
}

func TestInsightsJSONAlwaysCarriesAnomalies(t *testing.T) {
	ins := &entity.Insights{Values: map[string]any{"total_spend": 600.0}}
	out, err := NewService(nil).InsightsJSON(ins)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, 600.0, decoded["total_spend"])
	// The anomalies key is present even when no anomaly was flagged.
	assert.Equal(t, []any{}, decoded["anomalies"])

	_, err = NewService(nil).InsightsJSON(nil)
	assert.ErrorIs(t, err, common.ErrNoData)
}

func TestExportDeterminism(t *testing.T) {
	svc := NewService(nil)

	// Identical inputs must produce byte-identical CSV and JSON on every
	// run. XLSX embeds timestamps and is deliberately excluded.
	csv1, err := svc.CSVBytes(sampleDataset())
	require.NoError(t, err)
	csv2, err := svc.CSVBytes(sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, csv1, csv2)

	json1, err := svc.RecordsJSON(sampleInvoiceRecords())
	require.NoError(t, err)
	json2, err := svc.RecordsJSON(sampleInvoiceRecords())
	require.NoError(t, err)
	assert.Equal(t, json1, json2)

	ins := &entity.Insights{Values: map[string]any{
		"total_spend":    600.0,
		"monthly_totals": map[string]float64{"2023-01": 300, "2023-02": 300},
	}}
	ins1, err := svc.InsightsJSON(ins)
	require.NoError(t, err)
	ins2, err := svc.InsightsJSON(ins)
	require.NoError(t, err)
	assert.Equal(t, ins1, ins2)
}

func TestWriteAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	ins := &entity.Insights{Values: map[string]any{"total_spend": 99.5}}

	files, err := NewService(nil).WriteAll(constants.KindInvoice, sampleDataset(), sampleInvoiceRecords(), ins, dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "processed_invoices.csv"), files["csv"])
	assert.Equal(t, filepath.Join(dir, "processed_invoices.xlsx"), files["xlsx"])
	assert.Equal(t, filepath.Join(dir, "raw_invoice_data.json"), files["json"])
	assert.Equal(t, filepath.Join(dir, "invoice_insights.json"), files["insights"])

	for _, path := range files {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
}

func TestWriteAllRequiresDataset(t *testing.T) {
	_, err := NewService(nil).WriteAll(constants.KindInvoice, nil, nil, nil, t.TempDir())
	assert.ErrorIs(t, err, common.ErrNotTabulated)
}
