package domain

// Entry is a single time series as it appears in datasets and
// invocation payloads: a start timestamp and the observed values.
type Entry struct {
	Start         string    `json:"start"`
	Target        []float64 `json:"target"`
	ItemID        string    `json:"item_id,omitempty"`
	FeatStaticCat []int     `json:"feat_static_cat,omitempty"`
}

// Dataset is an ordered collection of entries, one per series.
type Dataset []Entry

// AbsTargetSum returns the sum of absolute target values across all
// entries, the normalization constant for weighted accuracy metrics.
func (d Dataset) AbsTargetSum() float64 {
	var sum float64
	for _, e := range d {
		for _, v := range e.Target {
			if v < 0 {
				sum -= v
			} else {
				sum += v
			}
		}
	}
	return sum
}
