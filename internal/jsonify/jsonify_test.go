package jsonify

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloatsProducesValidJSON(t *testing.T) {
	nonCompliant := map[string]any{
		"a": math.NaN(),
		"k": math.Inf(1),
		"b": map[string]any{
			"c": math.NaN(),
			"d": "testing",
			"e": math.Inf(-1),
			"f": math.Inf(1),
			"g": map[string]any{"h": math.NaN()},
		},
	}

	_, err := json.Marshal(nonCompliant)
	require.Error(t, err, "non-finite floats must not be encodable as-is")

	sanitized := Floats(nonCompliant)
	data, err := json.Marshal(sanitized)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "NaN", decoded["a"])
	assert.Equal(t, "Infinity", decoded["k"])

	nested := decoded["b"].(map[string]any)
	assert.Equal(t, "NaN", nested["c"])
	assert.Equal(t, "testing", nested["d"])
	assert.Equal(t, "-Infinity", nested["e"])
	assert.Equal(t, "Infinity", nested["f"])
	assert.Equal(t, "NaN", nested["g"].(map[string]any)["h"])
}

func TestFloatsSlices(t *testing.T) {
	in := []any{1.5, math.NaN(), []float64{math.Inf(1), 2}, [][]float64{{math.Inf(-1)}}}

	out := Floats(in).([]any)

	assert.Equal(t, 1.5, out[0])
	assert.Equal(t, "NaN", out[1])
	assert.Equal(t, []any{"Infinity", 2.0}, out[2])
	assert.Equal(t, []any{[]any{"-Infinity"}}, out[3])

	_, err := json.Marshal(out)
	assert.NoError(t, err)
}

func TestFloatsLeavesFiniteValuesAlone(t *testing.T) {
	in := map[string]any{"x": 3.25, "y": "str", "z": 7, "w": true, "v": nil}

	out := Floats(in).(map[string]any)

	assert.Equal(t, in, out)
}

func TestFloatsFloat32(t *testing.T) {
	assert.Equal(t, "NaN", Floats(float32(math.NaN())))
	assert.InDelta(t, 1.25, Floats(float32(1.25)).(float64), 1e-9)
}
