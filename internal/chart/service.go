package chart

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/abhiya492/pdf-data-extraction-tool/constants"
	"github.com/abhiya492/pdf-data-extraction-tool/internal/entity"
)

// maxTrendSeries caps how many metric series share the trend chart before it
// becomes unreadable.
const maxTrendSeries = 4

// Service renders PNG charts for a batch: a summary chart per kind and one
// scatter overlay per column that produced anomalies. Charts are best-effort
// output; a dataset too small to plot is skipped silently, not failed.
type Service struct {
	logger *slog.Logger
	width  int
	height int
}

func NewService(logger *slog.Logger, width, height int) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if width <= 0 {
		width = 1024
	}
	if height <= 0 {
		height = 512
	}
	return &Service{logger: logger, width: width, height: height}
}

// WriteAll renders every applicable chart into <outputDir>/charts and returns
// the written paths in a deterministic order.
func (s *Service) WriteAll(kind constants.DocKind, ds *entity.Dataset, ins *entity.Insights, outputDir string) ([]string, error) {
	if ds == nil || len(ds.Rows) == 0 {
		return nil, nil
	}
	chartDir := filepath.Join(outputDir, "charts")
	if err := os.MkdirAll(chartDir, 0o755); err != nil {
		return nil, fmt.Errorf("create chart dir: %w", err)
	}

	var written []string
	add := func(path string, err error) error {
		if err != nil {
			return err
		}
		if path != "" {
			written = append(written, path)
			s.logger.Info("chart.ok", "path", path)
		}
		return nil
	}

	if kind == constants.KindReport {
		if err := add(s.metricTrends(ds, chartDir)); err != nil {
			return written, err
		}
	} else {
		if err := add(s.invoiceSummary(ins, chartDir)); err != nil {
			return written, err
		}
	}

	if ins != nil {
		for _, column := range anomalyColumns(ins.Anomalies) {
			if err := add(s.anomalyOverlay(ds, ins.Anomalies, column, chartDir)); err != nil {
				return written, err
			}
		}
	}
	return written, nil
}

// invoiceSummary draws spend per month as a bar chart, falling back to
// vendor frequency when no month grouping exists. Returns "" when neither
// insight is present.
func (s *Service) invoiceSummary(ins *entity.Insights, chartDir string) (string, error) {
	if ins == nil {
		return "", nil
	}

	var bars []chart.Value
	title := "Monthly Invoice Totals"
	if totals, ok := ins.Values["monthly_totals"].(map[string]float64); ok && len(totals) > 0 {
		for _, month := range sortedKeys(totals) {
			bars = append(bars, chart.Value{Label: month, Value: totals[month]})
		}
	} else if counts, ok := ins.Values["top_vendors"].(map[string]int); ok && len(counts) > 0 {
		title = "Top Vendors by Invoice Count"
		names := make([]string, 0, len(counts))
		for name := range counts {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			bars = append(bars, chart.Value{Label: name, Value: float64(counts[name])})
		}
	}
	if len(bars) == 0 {
		return "", nil
	}

	values := make([]float64, len(bars))
	for i, b := range bars {
		values[i] = b.Value
	}
	graph := chart.BarChart{
		Title:    title,
		Width:    s.width,
		Height:   s.height,
		BarWidth: 60,
		Bars:     bars,
		YAxis:    chart.YAxis{Range: flatRange(values)},
	}
	return s.render(&graph, filepath.Join(chartDir, "invoice_summary.png"))
}

// metricTrends draws the first few numeric metric columns against row order.
// A series needs at least two points to show a trend; columns below that are
// left out, and with no qualifying column no file is written.
func (s *Service) metricTrends(ds *entity.Dataset, chartDir string) (string, error) {
	var series []chart.Series
	var all []float64
	for _, col := range ds.NumericColumns() {
		if !strings.HasPrefix(col, constants.MetricColumnPrefix) {
			continue
		}
		xs, ys := columnPoints(ds, col)
		if len(ys) < 2 {
			continue
		}
		series = append(series, chart.ContinuousSeries{
			Name:    strings.TrimPrefix(col, constants.MetricColumnPrefix),
			XValues: xs,
			YValues: ys,
		})
		all = append(all, ys...)
		if len(series) == maxTrendSeries {
			break
		}
	}
	if len(series) == 0 {
		return "", nil
	}

	graph := chart.Chart{
		Title:  "Report Metric Trends",
		Width:  s.width,
		Height: s.height,
		XAxis:  chart.XAxis{Name: "document"},
		YAxis:  chart.YAxis{Range: flatRange(all)},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return s.render(&graph, filepath.Join(chartDir, "metric_trends.png"))
}

// anomalyOverlay plots one column's values with its flagged points marked in
// red and the column mean as a reference line.
func (s *Service) anomalyOverlay(ds *entity.Dataset, anomalies []entity.Anomaly, column string, chartDir string) (string, error) {
	xs, ys := columnPoints(ds, column)
	if len(ys) < 2 {
		return "", nil
	}

	var meanValue float64
	var flaggedX, flaggedY []float64
	flaggedRows := make(map[string]bool)
	for _, a := range anomalies {
		if a.Column != column {
			continue
		}
		meanValue = a.Mean
		flaggedRows[a.Row] = true
	}
	for i := range ds.Rows {
		if !flaggedRows[ds.RowRef(i)] {
			continue
		}
		if v, ok := ds.Cell(i, column).Number(); ok {
			flaggedX = append(flaggedX, float64(i))
			flaggedY = append(flaggedY, v)
		}
	}

	meanY := make([]float64, len(xs))
	for i := range meanY {
		meanY[i] = meanValue
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("Anomalies in %s", column),
		Width:  s.width,
		Height: s.height,
		XAxis:  chart.XAxis{Name: "document"},
		YAxis:  chart.YAxis{Range: flatRange(ys)},
		Series: []chart.Series{
			chart.ContinuousSeries{Name: column, XValues: xs, YValues: ys},
			chart.ContinuousSeries{
				Name:    "mean",
				XValues: xs,
				YValues: meanY,
				Style: chart.Style{
					StrokeColor:     drawing.ColorFromHex("888888"),
					StrokeDashArray: []float64{4, 4},
				},
			},
			chart.ContinuousSeries{
				Name:    "anomaly",
				XValues: flaggedX,
				YValues: flaggedY,
				Style: chart.Style{
					StrokeWidth: chart.Disabled,
					DotWidth:    6,
					DotColor:    drawing.ColorRed,
				},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	name := fmt.Sprintf("anomalies_%s.png", sanitizeFileName(column))
	return s.render(&graph, filepath.Join(chartDir, name))
}

type renderer interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

func (s *Service) render(graph renderer, path string) (string, error) {
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create chart file: %w", err)
	}
	defer f.Close()
	if err := graph.Render(chart.PNG, f); err != nil {
		return "", fmt.Errorf("render %s: %w", filepath.Base(path), err)
	}
	return path, nil
}

// flatRange returns an explicit padded axis range when every value is
// identical. The renderer rejects a zero-width data range, and uniform data
// (every month totaling the same amount) is a valid batch, not an error.
func flatRange(values []float64) chart.Range {
	if len(values) == 0 {
		return nil
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo != hi {
		return nil
	}
	return &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
}

// columnPoints returns the row index and value of every non-null numeric cell
// in the column, preserving gaps in the X positions.
func columnPoints(ds *entity.Dataset, column string) ([]float64, []float64) {
	var xs, ys []float64
	for i := range ds.Rows {
		if v, ok := ds.Cell(i, column).Number(); ok {
			xs = append(xs, float64(i))
			ys = append(ys, v)
		}
	}
	return xs, ys
}

// anomalyColumns lists the distinct flagged columns in sorted order so chart
// output is deterministic across runs.
func anomalyColumns(anomalies []entity.Anomaly) []string {
	seen := make(map[string]bool)
	var out []string
	for _, a := range anomalies {
		if !seen[a.Column] {
			seen[a.Column] = true
			out = append(out, a.Column)
		}
	}
	sort.Strings(out)
	return out
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sanitizeFileName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '_'
		}
	}, s)
}
