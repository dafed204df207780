package source

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhiya492/pdf-data-extraction-tool/internal/common"
)

func word(s string, x, w float64) pdf.Text {
	return pdf.Text{S: s, X: x, W: w}
}

func TestLoadRejectsWrongExtension(t *testing.T) {
	src := NewPDFSource(nil)
	_, err := src.Load(context.Background(), "/tmp/notes.txt")
	assert.ErrorIs(t, err, common.ErrLoadFailure)
}

func TestLoadMissingFile(t *testing.T) {
	src := NewPDFSource(nil)
	_, err := src.Load(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	assert.ErrorIs(t, err, common.ErrLoadFailure)
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	touch(t, path)

	_, err := NewPDFSource(nil).Load(context.Background(), path)
	assert.ErrorIs(t, err, common.ErrLoadFailure)
}

func TestPageText(t *testing.T) {
	rows := pdf.Rows{
		{Content: pdf.TextHorizontal{word("Acme", 0, 30), word("Corp", 35, 30)}},
		{Content: pdf.TextHorizontal{word("Total:", 0, 35), word("$100", 40, 30)}},
	}
	assert.Equal(t, "Acme Corp\nTotal: $100", pageText(rows))
}

func TestSplitCellsOnWideGaps(t *testing.T) {
	// "Item name" is one cell (narrow gap), then two more cells after wide
	// gaps.
	row := &pdf.Row{Content: pdf.TextHorizontal{
		word("Item", 0, 25),
		word("name", 28, 28),
		word("2", 120, 8),
		word("50.00", 200, 30),
	}}
	assert.Equal(t, []string{"Item name", "2", "50.00"}, splitCells(row))
}

func TestPageTablesDetectsAlignedRows(t *testing.T) {
	tableRow := func(a, b string) *pdf.Row {
		return &pdf.Row{Content: pdf.TextHorizontal{word(a, 0, 30), word(b, 150, 30)}}
	}
	rows := pdf.Rows{
		{Content: pdf.TextHorizontal{word("Some", 0, 30), word("heading", 33, 40)}},
		tableRow("Item", "Amount"),
		tableRow("Widget", "50.00"),
		tableRow("Gadget", "25.00"),
		{Content: pdf.TextHorizontal{word("footer", 0, 30)}},
	}

	tables := pageTables(rows)
	require.Len(t, tables, 1)
	assert.Equal(t, []string{"Item", "Amount"}, tables[0].Headers)
	require.Len(t, tables[0].Rows, 2)
	assert.Equal(t, []string{"Widget", "50.00"}, tables[0].Rows[0])
}

func TestPageTablesIgnoresLoneRow(t *testing.T) {
	rows := pdf.Rows{
		{Content: pdf.TextHorizontal{word("Item", 0, 30), word("Amount", 150, 30)}},
		{Content: pdf.TextHorizontal{word("prose", 0, 30)}},
	}
	assert.Empty(t, pageTables(rows))
}

func TestFitRow(t *testing.T) {
	assert.Equal(t, []string{"a", "b", ""}, fitRow([]string{"a", "b"}, 3))
	assert.Equal(t, []string{"a"}, fitRow([]string{"a", "b"}, 1))
}
