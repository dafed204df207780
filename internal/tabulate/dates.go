package tabulate

import (
	"time"

	"github.com/abhiya492/pdf-data-extraction-tool/constants"
	"github.com/abhiya492/pdf-data-extraction-tool/internal/entity"
)

// resolveDateColumn attempts to parse a raw string column into dates. The
// decision is column-wide, not per-row: the first candidate layout that
// parses every non-null value wins, so day/month ambiguity is resolved
// consistently for the whole batch. If no single layout fits, the column
// keeps its raw strings (explicit degrade).
func resolveDateColumn(ds *entity.Dataset, column string) {
	if !ds.HasColumn(column) {
		return
	}

	raw := make([]string, 0, len(ds.Rows))
	idx := make([]int, 0, len(ds.Rows))
	for i := range ds.Rows {
		c := ds.Cell(i, column)
		if c.IsNull() {
			continue
		}
		if c.Kind() != entity.CellString {
			return
		}
		raw = append(raw, c.Render())
		idx = append(idx, i)
	}
	if len(raw) == 0 {
		return
	}

	for _, layout := range constants.DateLayouts {
		parsed, ok := parseAll(layout, raw)
		if !ok {
			continue
		}
		for j, i := range idx {
			ds.Rows[i][column] = entity.TimeCell(parsed[j])
		}
		return
	}
}

func parseAll(layout string, values []string) ([]time.Time, bool) {
	out := make([]time.Time, len(values))
	for i, v := range values {
		t, err := time.ParseInLocation(layout, v, time.UTC)
		if err != nil {
			return nil, false
		}
		out[i] = t
	}
	return out, true
}
