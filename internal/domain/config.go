package domain

import (
	"encoding/json"

	"github.com/samber/lo"
)

// Output types a forecast payload may carry.
const (
	OutputMean      = "mean"
	OutputSamples   = "samples"
	OutputQuantiles = "quantiles"
)

var knownOutputTypes = []string{OutputMean, OutputSamples, OutputQuantiles}

// Config is the per-request forecast configuration. Interactive
// invocations carry it in the request body; batch transform reads it
// once from the INFERENCE_CONFIG environment variable. Unknown keys
// are retained as hyperparameters so a dynamically constructed
// predictor can consume them.
type Config struct {
	NumSamples  int      `json:"num_samples"`
	OutputTypes []string `json:"output_types"`
	Quantiles   []string `json:"quantiles"`

	// Hyperparameters holds every key of the raw configuration,
	// including the three above. Dynamic mode feeds it to the
	// predictor factory.
	Hyperparameters map[string]any `json:"-"`
}

// DefaultConfig mirrors the platform defaults applied when a request
// omits the configuration object entirely.
func DefaultConfig() Config {
	return Config{
		NumSamples:  100,
		OutputTypes: []string{OutputMean, OutputQuantiles},
		Quantiles:   []string{"0.1", "0.5", "0.9"},
	}
}

func (c *Config) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*c = DefaultConfig()
	c.Hyperparameters = raw

	type plain Config
	if err := json.Unmarshal(data, (*plain)(c)); err != nil {
		return err
	}
	if c.Quantiles == nil {
		c.Quantiles = []string{}
	}
	return nil
}

// Validate rejects output types the serving shell does not know how
// to produce.
func (c Config) Validate() error {
	if c.NumSamples <= 0 {
		return ErrBadConfiguration
	}
	for _, ot := range c.OutputTypes {
		if !lo.Contains(knownOutputTypes, ot) {
			return ErrUnknownOutputType
		}
	}
	return nil
}

// Wants reports whether the given output type was requested.
func (c Config) Wants(outputType string) bool {
	return lo.Contains(c.OutputTypes, outputType)
}
