package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/abhiya492/pdf-data-extraction-tool/constants"
	"github.com/abhiya492/pdf-data-extraction-tool/internal/common"
	"github.com/abhiya492/pdf-data-extraction-tool/internal/entity"
)

const sheetName = "Processed Data"

// Service renders a tabulated dataset and its companion artifacts to the
// three export forms: delimited text, spreadsheet, and JSON.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// errNotTabulated is returned for a nil dataset: exporting before any
// tabulation happened is caller misuse, not data sparsity. An empty but
// tabulated dataset exports normally (header-only output).
func errNotTabulated() error {
	return common.NewAppError("EXPORT_PRECONDITION",
		"export requires a tabulated dataset; run tabulation first", common.ErrNotTabulated)
}

// CSVBytes renders the dataset as a delimited file: one header line, one
// data row per record, nulls as empty fields.
func (s *Service) CSVBytes(ds *entity.Dataset) ([]byte, error) {
	if ds == nil {
		return nil, errNotTabulated()
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(ds.Columns); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i := range ds.Rows {
		record := make([]string, len(ds.Columns))
		for j, col := range ds.Columns {
			record[j] = ds.Cell(i, col).Render()
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// XLSXBytes renders the dataset as a single-sheet workbook with the same
// layout as the CSV form.
func (s *Service) XLSXBytes(ds *entity.Dataset) ([]byte, error) {
	if ds == nil {
		return nil, errNotTabulated()
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("export.xlsx.close", "error", err)
		}
	}()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("new sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	for j, col := range ds.Columns {
		cell, _ := excelize.CoordinatesToCellName(j+1, 1)
		if err := f.SetCellValue(sheetName, cell, col); err != nil {
			return nil, fmt.Errorf("set header %q: %w", col, err)
		}
	}
	for i := range ds.Rows {
		for j, col := range ds.Columns {
			v := ds.Cell(i, col).Value()
			if v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// RecordsJSON renders the original per-document records (pre-tabulation) as
// a JSON array, non-primitive values stringified. Each record is checked
// against the record schema before the batch is serialized.
func (s *Service) RecordsJSON(records []*entity.Record) ([]byte, error) {
	out := make([]map[string]any, 0, len(records))
	for i, rec := range records {
		m := recordMap(rec)
		if err := validateRecordMap(m); err != nil {
			return nil, fmt.Errorf("record %d (%s): %w", i, rec.SourceFile, err)
		}
		out = append(out, m)
	}
	return json.MarshalIndent(out, "", "    ")
}

// InsightsJSON serializes the insights report, monthly series as
// string-keyed sub-objects and the anomaly list as an array of objects.
func (s *Service) InsightsJSON(ins *entity.Insights) ([]byte, error) {
	if ins == nil {
		return nil, common.ErrNoData
	}
	return json.MarshalIndent(ins, "", "    ")
}

// recordMap flattens a record to its serialized form. Unset optionals are
// kept as explicit nulls so sparse extraction stays visible in the output.
func recordMap(rec *entity.Record) map[string]any {
	m := map[string]any{
		"filename": rec.SourceFile,
		"date":     strOrNil(rec.Date),
	}
	if rec.Kind == constants.KindReport {
		m["title"] = strOrNil(rec.Title)
		m["summary"] = strOrNil(rec.Summary)
		metrics := make(map[string]any, len(rec.Metrics))
		for _, metric := range rec.Metrics {
			metrics[metric.Label] = metric.Value()
		}
		m["key_metrics"] = metrics
		tables := make([]map[string][]string, 0, len(rec.Tables))
		for _, t := range rec.Tables {
			cols := make(map[string][]string, len(t.Headers))
			for _, h := range t.Headers {
				cols[h] = t.Column(h)
			}
			tables = append(tables, cols)
		}
		m["tables"] = tables
		return m
	}

	m["invoice_number"] = strOrNil(rec.InvoiceNumber)
	m["vendor"] = strOrNil(rec.Vendor)
	if rec.Total != nil {
		m["total_amount"] = rec.Total.StringFixed(2)
	} else {
		m["total_amount"] = nil
	}
	items := make([]map[string]string, 0, len(rec.LineItems))
	for _, it := range rec.LineItems {
		items = append(items, it.Values)
	}
	m["line_items"] = items
	return m
}

func strOrNil(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

// WriteAll writes the three export forms plus the insights report into the
// output directory using the batch's canonical file names. Returns a map of
// artifact name to path.
func (s *Service) WriteAll(kind constants.DocKind, ds *entity.Dataset, records []*entity.Record, ins *entity.Insights, outputDir string) (map[string]string, error) {
	if ds == nil {
		return nil, errNotTabulated()
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	files := map[string]string{
		"csv":      filepath.Join(outputDir, fmt.Sprintf("processed_%ss.csv", kind)),
		"xlsx":     filepath.Join(outputDir, fmt.Sprintf("processed_%ss.xlsx", kind)),
		"json":     filepath.Join(outputDir, fmt.Sprintf("raw_%s_data.json", kind)),
		"insights": filepath.Join(outputDir, fmt.Sprintf("%s_insights.json", kind)),
	}

	steps := []struct {
		name  string
		build func() ([]byte, error)
	}{
		{"csv", func() ([]byte, error) { return s.CSVBytes(ds) }},
		{"xlsx", func() ([]byte, error) { return s.XLSXBytes(ds) }},
		{"json", func() ([]byte, error) { return s.RecordsJSON(records) }},
		{"insights", func() ([]byte, error) { return s.InsightsJSON(ins) }},
	}
	for _, step := range steps {
		data, err := step.build()
		if err != nil {
			return nil, fmt.Errorf("export %s: %w", step.name, err)
		}
		if err := os.WriteFile(files[step.name], data, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", step.name, err)
		}
		s.logger.Info("export.ok", "artifact", step.name, "path", files[step.name])
	}
	return files, nil
}
