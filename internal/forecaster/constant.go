package forecaster

import (
	"fmt"
	"strconv"

	"forecast-shell/internal/domain"
	"forecast-shell/internal/sagemaker"
)

// ConstantPredictor forecasts a fixed value regardless of the input
// series. Useful as a baseline and for exercising the serving path
// without training data.
type ConstantPredictor struct {
	value            float64
	predictionLength int
	numSamples       int
}

func NewConstantPredictor(hp sagemaker.Hyperparameters) (Predictor, error) {
	predictionLength, err := hp.Int("prediction_length", 0)
	if err != nil {
		return nil, err
	}
	if predictionLength <= 0 {
		return nil, fmt.Errorf("%w: prediction_length must be positive", domain.ErrBadHyperparameter)
	}
	numSamples, err := hp.Int("num_samples", 100)
	if err != nil {
		return nil, err
	}
	value, err := strconv.ParseFloat(hp.String("value", "0"), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: value", domain.ErrBadHyperparameter)
	}
	return &ConstantPredictor{
		value:            value,
		predictionLength: predictionLength,
		numSamples:       numSamples,
	}, nil
}

func (p *ConstantPredictor) PredictionLength() int {
	return p.predictionLength
}

func (p *ConstantPredictor) Descriptor() Descriptor {
	return Descriptor{
		Forecaster: "constant",
		Hyperparameters: map[string]any{
			"value":             p.value,
			"prediction_length": p.predictionLength,
			"num_samples":       p.numSamples,
		},
	}
}

func (p *ConstantPredictor) Predict(entry domain.Entry, cfg domain.Config) (*domain.Forecast, error) {
	samples := constantSamples(p.value, p.numSamples, p.predictionLength)
	return assembleForecast(entry, cfg, samples)
}
