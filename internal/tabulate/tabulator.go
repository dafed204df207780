package tabulate

import (
	"log/slog"
	"strings"

	"github.com/abhiya492/pdf-data-extraction-tool/constants"
	"github.com/abhiya492/pdf-data-extraction-tool/internal/entity"
)

// Tabulator merges heterogeneous per-document records into one uniform
// dataset: one row per record in input order, a column union in first-seen
// order, explicit nulls for missing values.
type Tabulator struct {
	Logger *slog.Logger
}

func NewTabulator(logger *slog.Logger) *Tabulator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tabulator{Logger: logger}
}

// Tabulate builds the dataset for a batch of records of one kind. The output
// is deterministic for deterministic input ordering.
func (t *Tabulator) Tabulate(kind constants.DocKind, records []*entity.Record) *entity.Dataset {
	var ds *entity.Dataset
	if kind == constants.KindReport {
		ds = tabulateReports(records)
	} else {
		ds = tabulateInvoices(records)
	}

	resolveDateColumn(ds, constants.ColDate)
	chooseKeyColumn(ds)

	t.Logger.Info("tabulate.ok",
		"kind", kind,
		"rows", len(ds.Rows),
		"columns", len(ds.Columns),
		"key_column", ds.KeyColumn,
	)
	return ds
}

func tabulateInvoices(records []*entity.Record) *entity.Dataset {
	ds := &entity.Dataset{
		Columns: []string{
			constants.ColInvoiceNumber,
			constants.ColDate,
			constants.ColVendor,
			constants.ColTotalAmount,
			constants.ColLineItemCount,
		},
	}
	for _, rec := range records {
		row := entity.Row{
			constants.ColInvoiceNumber: optionalString(rec.InvoiceNumber),
			constants.ColDate:          optionalString(rec.Date),
			constants.ColVendor:        optionalString(rec.Vendor),
			constants.ColTotalAmount:   optionalAmount(rec),
			constants.ColLineItemCount: entity.NumberCell(float64(len(rec.LineItems))),
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds
}

func tabulateReports(records []*entity.Record) *entity.Dataset {
	ds := &entity.Dataset{
		Columns: []string{
			constants.ColTitle,
			constants.ColDate,
			constants.ColSummary,
			constants.ColTableCount,
		},
	}

	// Column union over dynamic metric keys, tracked in first-seen order
	// across the whole batch so output stays deterministic.
	seen := make(map[string]struct{})
	for _, rec := range records {
		for _, m := range rec.Metrics {
			col := NormalizeMetricKey(m.Label)
			if _, ok := seen[col]; !ok {
				seen[col] = struct{}{}
				ds.Columns = append(ds.Columns, col)
			}
		}
	}

	for _, rec := range records {
		row := entity.Row{
			constants.ColTitle:      optionalString(rec.Title),
			constants.ColDate:       optionalString(rec.Date),
			constants.ColSummary:    optionalString(rec.Summary),
			constants.ColTableCount: entity.NumberCell(float64(len(rec.Tables))),
		}
		for _, m := range rec.Metrics {
			col := NormalizeMetricKey(m.Label)
			if m.Number != nil {
				row[col] = entity.NumberCell(*m.Number)
			} else {
				row[col] = entity.StringCell(m.Text)
			}
		}
		// Rows lacking a metric key get an explicit null.
		for _, col := range ds.Columns {
			if _, ok := row[col]; !ok {
				row[col] = entity.NullCell()
			}
		}
		ds.Rows = append(ds.Rows, row)
	}
	return ds
}

// NormalizeMetricKey maps a metric label to its dataset column name:
// lowercased, spaces to underscores, prefixed to disambiguate from fixed
// columns.
func NormalizeMetricKey(label string) string {
	safe := strings.ToLower(strings.ReplaceAll(label, " ", "_"))
	return constants.MetricColumnPrefix + safe
}

// chooseKeyColumn promotes the identifier column to row key when it is
// fully populated. Any null keeps the dataset positionally indexed.
func chooseKeyColumn(ds *entity.Dataset) {
	if !ds.HasColumn(constants.ColInvoiceNumber) || len(ds.Rows) == 0 {
		return
	}
	for i := range ds.Rows {
		if ds.Cell(i, constants.ColInvoiceNumber).IsNull() {
			return
		}
	}
	ds.KeyColumn = constants.ColInvoiceNumber
}

func optionalString(p *string) entity.Cell {
	if p == nil {
		return entity.NullCell()
	}
	return entity.StringCell(*p)
}

func optionalAmount(rec *entity.Record) entity.Cell {
	if rec.Total == nil {
		return entity.NullCell()
	}
	return entity.NumberCell(rec.Total.InexactFloat64())
}
