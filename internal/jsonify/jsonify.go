// Package jsonify rewrites non-finite floating point values into
// JSON-legal string stand-ins. encoding/json refuses to marshal NaN
// or infinities, and forecast payloads can legitimately contain them
// (empty context windows, degenerate quantiles).
package jsonify

import "math"

const (
	nanToken    = "NaN"
	posInfToken = "Infinity"
	negInfToken = "-Infinity"
)

// Floats returns a copy of v in which every non-finite float64 has
// been replaced by its string token. Maps and slices are walked
// recursively; all other values pass through unchanged.
func Floats(v any) any {
	switch val := v.(type) {
	case float64:
		return sanitize(val)
	case float32:
		return sanitize(float64(val))
	case []float64:
		out := make([]any, len(val))
		for i, f := range val {
			out[i] = sanitize(f)
		}
		return out
	case [][]float64:
		out := make([]any, len(val))
		for i, row := range val {
			out[i] = Floats(row)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = Floats(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = Floats(item)
		}
		return out
	case map[string][]float64:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = Floats(item)
		}
		return out
	default:
		return v
	}
}

func sanitize(f float64) any {
	switch {
	case math.IsNaN(f):
		return nanToken
	case math.IsInf(f, 1):
		return posInfToken
	case math.IsInf(f, -1):
		return negInfToken
	default:
		return f
	}
}
