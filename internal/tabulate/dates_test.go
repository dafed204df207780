package tabulate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhiya492/pdf-data-extraction-tool/constants"
	"github.com/abhiya492/pdf-data-extraction-tool/internal/entity"
)

func dateDataset(values ...any) *entity.Dataset {
	ds := &entity.Dataset{Columns: []string{constants.ColDate}}
	for _, v := range values {
		switch x := v.(type) {
		case string:
			ds.Rows = append(ds.Rows, entity.Row{constants.ColDate: entity.StringCell(x)})
		case nil:
			ds.Rows = append(ds.Rows, entity.Row{constants.ColDate: entity.NullCell()})
		}
	}
	return ds
}

func TestResolveDateColumnUniformFormat(t *testing.T) {
	ds := dateDataset("1/15/2023", "2/20/2023", nil)
	resolveDateColumn(ds, constants.ColDate)

	d0, ok := ds.Cell(0, constants.ColDate).Time()
	require.True(t, ok)
	assert.Equal(t, time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC), d0)
	assert.True(t, ds.Cell(2, constants.ColDate).IsNull())
}

func TestResolveDateColumnDayFirst(t *testing.T) {
	// 13 cannot be a month, so only the day-first layout parses the whole
	// column and every value is read day-first.
	ds := dateDataset("13/1/2023", "2/6/2023")
	resolveDateColumn(ds, constants.ColDate)

	d1, ok := ds.Cell(1, constants.ColDate).Time()
	require.True(t, ok)
	assert.Equal(t, time.June, d1.Month())
	assert.Equal(t, 2, d1.Day())
}

func TestResolveDateColumnAmbiguousPrefersMonthFirst(t *testing.T) {
	// Both readings are valid; the earlier candidate layout (month-first)
	// wins for the whole column.
	ds := dateDataset("1/2/2023")
	resolveDateColumn(ds, constants.ColDate)

	d, ok := ds.Cell(0, constants.ColDate).Time()
	require.True(t, ok)
	assert.Equal(t, time.January, d.Month())
	assert.Equal(t, 2, d.Day())
}

func TestResolveDateColumnMixedFormatsDegrade(t *testing.T) {
	// One unparseable value rejects every layout; the column keeps its raw
	// strings instead of parsing a subset.
	ds := dateDataset("1/15/2023", "not a date")
	resolveDateColumn(ds, constants.ColDate)

	c := ds.Cell(0, constants.ColDate)
	assert.Equal(t, entity.CellString, c.Kind())
	assert.Equal(t, "1/15/2023", c.Render())
}

func TestResolveDateColumnDashSeparator(t *testing.T) {
	ds := dateDataset("3-14-2023", "12-25-2023")
	resolveDateColumn(ds, constants.ColDate)

	d, ok := ds.Cell(0, constants.ColDate).Time()
	require.True(t, ok)
	assert.Equal(t, time.March, d.Month())
	assert.Equal(t, 14, d.Day())
}

func TestResolveDateColumnDashSeparatorDayFirst(t *testing.T) {
	// 25 cannot be a month, so the dash day-first layout carries the column.
	ds := dateDataset("25-12-2023", "1-6-2023")
	resolveDateColumn(ds, constants.ColDate)

	d, ok := ds.Cell(1, constants.ColDate).Time()
	require.True(t, ok)
	assert.Equal(t, time.June, d.Month())
	assert.Equal(t, 1, d.Day())
}

func TestResolveDateColumnDotSeparator(t *testing.T) {
	ds := dateDataset("3.14.2023", "12.25.2023")
	resolveDateColumn(ds, constants.ColDate)

	d, ok := ds.Cell(0, constants.ColDate).Time()
	require.True(t, ok)
	assert.Equal(t, time.March, d.Month())
}

func TestResolveDateColumnAllNull(t *testing.T) {
	ds := dateDataset(nil, nil)
	resolveDateColumn(ds, constants.ColDate)
	assert.True(t, ds.Cell(0, constants.ColDate).IsNull())
}
