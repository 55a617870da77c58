// Package forecaster provides the predictor types the serving shell
// can train, serialize, and serve.
package forecaster

import (
	"fmt"
	"sort"

	"forecast-shell/internal/domain"
	"forecast-shell/internal/sagemaker"
)

// Predictor produces a forecast for a single time series entry.
type Predictor interface {
	Predict(entry domain.Entry, cfg domain.Config) (*domain.Forecast, error)
	PredictionLength() int
	// Descriptor identifies the predictor and its hyperparameters
	// for artifact serialization.
	Descriptor() Descriptor
}

// Descriptor is the serializable identity of a predictor.
type Descriptor struct {
	Forecaster      string         `json:"forecaster"`
	Hyperparameters map[string]any `json:"hyperparameters"`
}

// Factory builds a predictor from hyperparameters.
type Factory func(hp sagemaker.Hyperparameters) (Predictor, error)

var registry = map[string]Factory{
	"mean":     NewMeanPredictor,
	"constant": NewConstantPredictor,
}

// New builds a predictor of the named type.
func New(name string, hp sagemaker.Hyperparameters) (Predictor, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownForecaster, name)
	}
	return factory(hp)
}

// Types lists the registered forecaster names.
func Types() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
