package forecaster

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"forecast-shell/internal/domain"
	"forecast-shell/internal/sagemaker"
)

// MeanPredictor forecasts the mean of the context window, broadcast
// over the prediction horizon. It is deterministic: every sample path
// repeats the same value.
type MeanPredictor struct {
	contextLength    int
	predictionLength int
	numSamples       int
}

func NewMeanPredictor(hp sagemaker.Hyperparameters) (Predictor, error) {
	predictionLength, err := hp.Int("prediction_length", 0)
	if err != nil {
		return nil, err
	}
	if predictionLength <= 0 {
		return nil, fmt.Errorf("%w: prediction_length must be positive", domain.ErrBadHyperparameter)
	}
	contextLength, err := hp.Int("context_length", 0)
	if err != nil {
		return nil, err
	}
	numSamples, err := hp.Int("num_samples", 100)
	if err != nil {
		return nil, err
	}
	if numSamples <= 0 {
		return nil, fmt.Errorf("%w: num_samples must be positive", domain.ErrBadHyperparameter)
	}
	return &MeanPredictor{
		contextLength:    contextLength,
		predictionLength: predictionLength,
		numSamples:       numSamples,
	}, nil
}

func (p *MeanPredictor) PredictionLength() int {
	return p.predictionLength
}

func (p *MeanPredictor) Descriptor() Descriptor {
	return Descriptor{
		Forecaster: "mean",
		Hyperparameters: map[string]any{
			"context_length":    p.contextLength,
			"prediction_length": p.predictionLength,
			"num_samples":       p.numSamples,
		},
	}
}

func (p *MeanPredictor) Predict(entry domain.Entry, cfg domain.Config) (*domain.Forecast, error) {
	window := entry.Target
	if p.contextLength > 0 && len(window) > p.contextLength {
		window = window[len(window)-p.contextLength:]
	}

	mean := math.NaN()
	if len(window) > 0 {
		mean = stat.Mean(window, nil)
	}

	samples := constantSamples(mean, p.numSamples, p.predictionLength)
	return assembleForecast(entry, cfg, samples)
}

// constantSamples builds a num x horizon matrix of a single value.
func constantSamples(value float64, num, horizon int) [][]float64 {
	samples := make([][]float64, num)
	for i := range samples {
		row := make([]float64, horizon)
		for t := range row {
			row[t] = value
		}
		samples[i] = row
	}
	return samples
}

// assembleForecast reduces a sample matrix into the output types the
// configuration asks for. The sample count is the predictor's own,
// not the request's: the hosting contract fixes it at training time.
func assembleForecast(entry domain.Entry, cfg domain.Config, samples [][]float64) (*domain.Forecast, error) {
	f := &domain.Forecast{ItemID: entry.ItemID}

	if cfg.Wants(domain.OutputMean) {
		f.Mean = columnMeans(samples)
	}
	if cfg.Wants(domain.OutputSamples) {
		f.Samples = samples
	}
	if cfg.Wants(domain.OutputQuantiles) {
		quantiles, err := columnQuantiles(samples, cfg.Quantiles)
		if err != nil {
			return nil, err
		}
		f.Quantiles = quantiles
	}
	return f, nil
}

func columnMeans(samples [][]float64) []float64 {
	if len(samples) == 0 {
		return nil
	}
	horizon := len(samples[0])
	means := make([]float64, horizon)
	column := make([]float64, len(samples))
	for t := 0; t < horizon; t++ {
		for i, row := range samples {
			column[i] = row[t]
		}
		means[t] = stat.Mean(column, nil)
	}
	return means
}

func columnQuantiles(samples [][]float64, levels []string) (map[string][]float64, error) {
	out := make(map[string][]float64, len(levels))
	if len(samples) == 0 {
		return out, nil
	}
	horizon := len(samples[0])
	column := make([]float64, len(samples))
	for _, level := range levels {
		q, err := strconv.ParseFloat(level, 64)
		if err != nil || q < 0 || q > 1 {
			return nil, fmt.Errorf("%w: quantile %q", domain.ErrBadConfiguration, level)
		}
		path := make([]float64, horizon)
		for t := 0; t < horizon; t++ {
			for i, row := range samples {
				column[i] = row[t]
			}
			sort.Float64s(column)
			path[t] = stat.Quantile(q, stat.Empirical, column, nil)
		}
		out[level] = path
	}
	return out, nil
}
