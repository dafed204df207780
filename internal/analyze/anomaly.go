package analyze

import (
	"math"

	"github.com/abhiya492/pdf-data-extraction-tool/internal/entity"
)

// DetectAnomalies z-score tests every numeric column of the dataset.
// Mean and standard deviation are population statistics over the column's
// non-null values; zero-variance columns are skipped since no point can
// deviate. Every value with |z| >= threshold is flagged, so one row may
// appear once per offending column.
func DetectAnomalies(ds *entity.Dataset, threshold float64) []entity.Anomaly {
	if ds == nil || len(ds.Rows) == 0 {
		return nil
	}
	if threshold <= 0 {
		threshold = 2.0
	}

	var anomalies []entity.Anomaly
	for _, column := range ds.NumericColumns() {
		values := numbers(ds.Column(column))
		if len(values) < 2 {
			continue
		}
		m := mean(values)
		std := populationStd(values, m)
		if std == 0 {
			continue
		}
		for i := range ds.Rows {
			v, ok := ds.Cell(i, column).Number()
			if !ok {
				continue
			}
			z := (v - m) / std
			if math.Abs(z) >= threshold {
				anomalies = append(anomalies, entity.Anomaly{
					Row:    ds.RowRef(i),
					Column: column,
					Value:  v,
					ZScore: z,
					Mean:   m,
					Std:    std,
				})
			}
		}
	}
	return anomalies
}

func populationStd(values []float64, mean float64) float64 {
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)))
}
