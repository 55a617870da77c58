package domain

// Forecast is the prediction for a single entry. Only the fields
// matching the requested output types are populated.
type Forecast struct {
	ItemID    string               `json:"item_id,omitempty"`
	Mean      []float64            `json:"mean,omitempty"`
	Samples   [][]float64          `json:"samples,omitempty"`
	Quantiles map[string][]float64 `json:"quantiles,omitempty"`
}

// AsDict flattens the forecast into the wire shape: quantile paths
// are promoted to top-level keys ("0.5": [...]) next to "mean" and
// "samples", matching the hosting platform's response contract.
func (f *Forecast) AsDict() map[string]any {
	out := make(map[string]any, 3+len(f.Quantiles))
	if f.ItemID != "" {
		out["item_id"] = f.ItemID
	}
	if f.Mean != nil {
		out["mean"] = f.Mean
	}
	if f.Samples != nil {
		out["samples"] = f.Samples
	}
	if f.Quantiles != nil {
		out["quantiles"] = f.Quantiles
	}
	return out
}
