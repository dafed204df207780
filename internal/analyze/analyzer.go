package analyze

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/abhiya492/pdf-data-extraction-tool/constants"
	"github.com/abhiya492/pdf-data-extraction-tool/internal/common"
	"github.com/abhiya492/pdf-data-extraction-tool/internal/entity"
)

// Analyzer computes summary insights and anomaly flags over a dataset
// snapshot. All computations are pure: the caller's dataset is never
// mutated.
type Analyzer struct {
	Logger *slog.Logger

	// AnomalyThreshold is the |z-score| cutoff; 0 falls back to 2.0.
	AnomalyThreshold float64

	// TopN bounds the vendor groupings; 0 falls back to 3.
	TopN int
}

func NewAnalyzer(logger *slog.Logger, threshold float64, topN int) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	if threshold <= 0 {
		threshold = 2.0
	}
	if topN <= 0 {
		topN = 3
	}
	return &Analyzer{Logger: logger, AnomalyThreshold: threshold, TopN: topN}
}

// Analyze produces the insights for a dataset of the given kind. An empty
// or never-built dataset yields ErrNoData, not a panic or a zeroed report.
func (a *Analyzer) Analyze(kind constants.DocKind, ds *entity.Dataset) (*entity.Insights, error) {
	if ds == nil || len(ds.Rows) == 0 {
		return nil, common.ErrNoData
	}
	// Work on a copy so the caller's dataset survives unchanged even if a
	// future grouping step enriches cells in place.
	ds = ds.Clone()

	ins := &entity.Insights{Values: make(map[string]any)}
	if kind == constants.KindReport {
		a.analyzeReports(ds, ins)
	} else {
		a.analyzeInvoices(ds, ins)
	}
	ins.Anomalies = DetectAnomalies(ds, a.AnomalyThreshold)

	a.Logger.Info("analyze.ok",
		"kind", kind,
		"insight_keys", len(ins.Values),
		"anomalies", len(ins.Anomalies),
	)
	return ins, nil
}

func (a *Analyzer) analyzeInvoices(ds *entity.Dataset, ins *entity.Insights) {
	if amounts := numbers(ds.Column(constants.ColTotalAmount)); len(amounts) > 0 {
		ins.Values["total_spend"] = sum(amounts)
		ins.Values["average_invoice_amount"] = mean(amounts)
		ins.Values["max_invoice_amount"] = max(amounts)
		ins.Values["min_invoice_amount"] = min(amounts)
	}

	vendors := stringValues(ds.Column(constants.ColVendor))
	if len(vendors) > 0 {
		counts := make(map[string]int)
		for _, v := range vendors {
			counts[v]++
		}
		ins.Values["vendor_count"] = len(counts)
		ins.Values["top_vendors"] = topCounts(counts, a.TopN)

		if ds.IsNumeric(constants.ColTotalAmount) {
			spend := make(map[string]float64)
			for i := range ds.Rows {
				v := ds.Cell(i, constants.ColVendor)
				amt, ok := ds.Cell(i, constants.ColTotalAmount).Number()
				if v.IsNull() || !ok {
					continue
				}
				spend[v.Render()] += amt
			}
			ins.Values["top_vendors_by_spend"] = topSums(spend, a.TopN)
		}
	}

	months, totals := monthlySums(ds, constants.ColTotalAmount)
	if len(months) > 0 {
		ins.Values["monthly_totals"] = toMonthMap(months, totals)

		// Month-over-month percent change: the first month has no entry
		// (division undefined) and zero-total predecessors are skipped so
		// the serialized report never carries NaN or Inf.
		if len(months) > 1 {
			changes := make(map[string]float64)
			for i := 1; i < len(months); i++ {
				prev := totals[i-1]
				if prev == 0 {
					continue
				}
				changes[months[i]] = (totals[i] - prev) / prev * 100
			}
			if len(changes) > 0 {
				ins.Values["monthly_change"] = changes
			}
		}
	}
}

func (a *Analyzer) analyzeReports(ds *entity.Dataset, ins *entity.Insights) {
	for _, col := range ds.Columns {
		if !strings.HasPrefix(col, constants.MetricColumnPrefix) || !ds.IsNumeric(col) {
			continue
		}
		name := strings.TrimPrefix(col, constants.MetricColumnPrefix)
		values := numbers(ds.Column(col))
		if len(values) == 0 {
			continue
		}
		ins.Values[name+"_avg"] = mean(values)
		ins.Values[name+"_min"] = min(values)
		ins.Values[name+"_max"] = max(values)

		months, means := monthlyMeans(ds, col)
		if len(months) > 1 {
			first, last := means[0], means[len(means)-1]
			pct := 0.0
			// Percent change reports zero rather than dividing by a zero
			// first-period mean.
			if first != 0 {
				pct = (last/first - 1) * 100
			}
			ins.Values[name+"_trend"] = map[string]any{
				"values":     toMonthMap(months, means),
				"change":     last - first,
				"pct_change": pct,
			}
		}
	}
}

// numbers filters a column down to its non-null numeric values in row order.
func numbers(cells []entity.Cell) []float64 {
	var out []float64
	for _, c := range cells {
		if f, ok := c.Number(); ok {
			out = append(out, f)
		}
	}
	return out
}

func stringValues(cells []entity.Cell) []string {
	var out []string
	for _, c := range cells {
		if c.Kind() == entity.CellString {
			out = append(out, c.Render())
		}
	}
	return out
}

func sum(values []float64) float64 {
	s := 0.0
	for _, v := range values {
		s += v
	}
	return s
}

func mean(values []float64) float64 {
	return sum(values) / float64(len(values))
}

func max(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func min(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// topCounts keeps the n highest counts, ties broken by name so the result
// is stable across runs.
func topCounts(counts map[string]int, n int) map[string]int {
	type kv struct {
		key   string
		count int
	}
	entries := make([]kv, 0, len(counts))
	for k, v := range counts {
		entries = append(entries, kv{k, v})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].key < entries[j].key
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	out := make(map[string]int, len(entries))
	for _, e := range entries {
		out[e.key] = e.count
	}
	return out
}

func topSums(sums map[string]float64, n int) map[string]float64 {
	type kv struct {
		key string
		sum float64
	}
	entries := make([]kv, 0, len(sums))
	for k, v := range sums {
		entries = append(entries, kv{k, v})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].sum != entries[j].sum {
			return entries[i].sum > entries[j].sum
		}
		return entries[i].key < entries[j].key
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	out := make(map[string]float64, len(entries))
	for _, e := range entries {
		out[e.key] = e.sum
	}
	return out
}

// monthlySums groups rows by the month of a resolved date column and sums a
// numeric column. Rows without a date are excluded from the grouping; rows
// with a date but a null value contribute nothing to their month's sum.
// Returns chronologically sorted month keys with aligned sums, or empty
// slices when the date column never resolved.
func monthlySums(ds *entity.Dataset, column string) ([]string, []float64) {
	buckets := monthBuckets(ds)
	if len(buckets) == 0 {
		return nil, nil
	}
	months := sortedMonths(buckets)
	sums := make([]float64, len(months))
	for i, m := range months {
		for _, row := range buckets[m] {
			if v, ok := ds.Cell(row, column).Number(); ok {
				sums[i] += v
			}
		}
	}
	return months, sums
}

// monthlyMeans is monthlySums with a per-month mean over the rows that
// actually carry a value. Months where every row is null are dropped.
func monthlyMeans(ds *entity.Dataset, column string) ([]string, []float64) {
	buckets := monthBuckets(ds)
	if len(buckets) == 0 {
		return nil, nil
	}
	var months []string
	var means []float64
	for _, m := range sortedMonths(buckets) {
		s, n := 0.0, 0
		for _, row := range buckets[m] {
			if v, ok := ds.Cell(row, column).Number(); ok {
				s += v
				n++
			}
		}
		if n == 0 {
			continue
		}
		months = append(months, m)
		means = append(means, s/float64(n))
	}
	return months, means
}

func monthBuckets(ds *entity.Dataset) map[string][]int {
	buckets := make(map[string][]int)
	for i := range ds.Rows {
		if t, ok := ds.Cell(i, constants.ColDate).Time(); ok {
			key := t.Format(constants.MonthKeyLayout)
			buckets[key] = append(buckets[key], i)
		}
	}
	return buckets
}

func sortedMonths(buckets map[string][]int) []string {
	months := make([]string, 0, len(buckets))
	for m := range buckets {
		months = append(months, m)
	}
	sort.Strings(months)
	return months
}

func toMonthMap(months []string, values []float64) map[string]float64 {
	out := make(map[string]float64, len(months))
	for i, m := range months {
		out[m] = values[i]
	}
	return out
}
