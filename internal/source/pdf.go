package source

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/abhiya492/pdf-data-extraction-tool/constants"
	"github.com/abhiya492/pdf-data-extraction-tool/internal/common"
	"github.com/abhiya492/pdf-data-extraction-tool/internal/entity"
)

// minCellGap is the horizontal whitespace (in PDF points) that separates two
// words into different table cells. Smaller gaps are normal word spacing.
const minCellGap = 18.0

// PDFSource loads PDF files into per-page text plus candidate tables
// recovered from the page layout.
type PDFSource struct {
	logger *slog.Logger
}

func NewPDFSource(logger *slog.Logger) *PDFSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFSource{logger: logger}
}

// Load reads one PDF into a Document. Any problem with the file itself, a
// missing path, a wrong extension, or an unparseable body, wraps
// ErrLoadFailure so the batch can treat it as a per-document failure.
func (s *PDFSource) Load(ctx context.Context, path string) (*entity.Document, error) {
	ext := constants.NormalizeExt(filepath.Ext(path))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		return nil, common.NewAppError("SOURCE_ERROR",
			fmt.Sprintf("unsupported file type %q: %s", ext, path), common.ErrLoadFailure)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, common.NewAppError("SOURCE_ERROR",
			fmt.Sprintf("read %s: %v", path, err), common.ErrLoadFailure)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, common.NewAppError("SOURCE_ERROR",
			fmt.Sprintf("parse %s: %v", path, err), common.ErrLoadFailure)
	}

	doc := &entity.Document{Path: path}
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			doc.Pages = append(doc.Pages, "")
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			s.logger.Warn("source.page_skip", "path", path, "page", i, "error", err)
			doc.Pages = append(doc.Pages, "")
			continue
		}
		doc.Pages = append(doc.Pages, pageText(rows))
		doc.Tables = append(doc.Tables, pageTables(rows)...)
	}

	s.logger.Debug("source.loaded", "path", path, "pages", len(doc.Pages), "tables", len(doc.Tables))
	return doc, nil
}

// pageText joins each layout row's words with single spaces and rows with
// newlines, mirroring reading order.
func pageText(rows pdf.Rows) string {
	var b strings.Builder
	for i, row := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		for j, word := range row.Content {
			if j > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(word.S)
		}
	}
	return b.String()
}

// pageTables recovers candidate tables from the page layout. Words separated
// by a wide horizontal gap become separate cells; a run of two or more
// consecutive rows that each split into two or more cells is treated as a
// table with the first row as its header.
func pageTables(rows pdf.Rows) []entity.Table {
	cellRows := make([][]string, len(rows))
	for i, row := range rows {
		cellRows[i] = splitCells(row)
	}

	var tables []entity.Table
	start := -1
	flush := func(end int) {
		if start < 0 || end-start < 2 {
			start = -1
			return
		}
		headers := cellRows[start]
		t := entity.Table{Headers: headers}
		for _, cells := range cellRows[start+1 : end] {
			t.Rows = append(t.Rows, fitRow(cells, len(headers)))
		}
		tables = append(tables, t)
		start = -1
	}
	for i, cells := range cellRows {
		if len(cells) >= 2 {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(cellRows))
	return tables
}

// splitCells groups one layout row's words into cells on wide X gaps.
func splitCells(row *pdf.Row) []string {
	var cells []string
	var current strings.Builder
	var prevEnd float64
	for i, word := range row.Content {
		if i > 0 && word.X-prevEnd > minCellGap {
			cells = append(cells, strings.TrimSpace(current.String()))
			current.Reset()
		} else if i > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(word.S)
		prevEnd = word.X + word.W
	}
	if current.Len() > 0 {
		cells = append(cells, strings.TrimSpace(current.String()))
	}
	return cells
}

// fitRow pads or truncates a cell row to the header width so every table row
// aligns column for column.
func fitRow(cells []string, width int) []string {
	out := make([]string, width)
	for i := 0; i < width && i < len(cells); i++ {
		out[i] = cells[i]
	}
	return out
}
