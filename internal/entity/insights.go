package entity

import "encoding/json"

// Anomaly flags one value whose absolute z-score met the threshold. A row
// can appear once per offending column; entries are not deduplicated.
type Anomaly struct {
	Row    string  `json:"index"`
	Column string  `json:"column"`
	Value  float64 `json:"value"`
	ZScore float64 `json:"z_score"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
}

// Insights is a fresh, immutable analysis result over a dataset snapshot.
// Values maps metric names to scalars or string-keyed sub-objects (monthly
// series); Anomalies carries the z-score flags.
type Insights struct {
	Values    map[string]any
	Anomalies []Anomaly
}

// MarshalJSON flattens Values and appends the anomaly list under
// "anomalies", matching the serialized report shape consumed downstream.
func (in *Insights) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(in.Values)+1)
	for k, v := range in.Values {
		out[k] = v
	}
	anomalies := in.Anomalies
	if anomalies == nil {
		anomalies = []Anomaly{}
	}
	out["anomalies"] = anomalies
	return json.Marshal(out)
}
