// Package evaluator scores forecasts against held-out data. Metric
// definitions follow the usual forecasting accuracy suite: absolute
// errors, scaled errors against a seasonal naive baseline, quantile
// (pinball) losses, and interval coverage.
package evaluator

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"

	"forecast-shell/internal/domain"
	"forecast-shell/internal/forecaster"
)

// Report carries aggregate metrics keyed by name, e.g.
// "abs_target_sum", "MASE", "QuantileLoss[0.5]", "Coverage[0.9]".
type Report struct {
	Quantiles []string
	Metrics   map[string]float64
}

// seriesScore holds the per-series intermediate values that are
// averaged or summed into the aggregate report.
type seriesScore struct {
	absTargetSum float64
	absError     float64
	mase         float64
	msis         float64
	smape        float64
	sqError      float64
	points       int
	quantileLoss map[string]float64
	coverage     map[string]float64
}

// Backtest forecasts the held-out tail of every test entry and
// aggregates accuracy metrics. Each test entry is expected to be a
// training series extended by one prediction horizon.
func Backtest(p forecaster.Predictor, test domain.Dataset, quantiles []string) (*Report, error) {
	if len(quantiles) == 0 {
		quantiles = []string{"0.1", "0.5", "0.9"}
	}
	cfg := domain.Config{
		NumSamples:  1,
		OutputTypes: []string{domain.OutputMean, domain.OutputQuantiles},
		Quantiles:   quantiles,
	}

	horizon := p.PredictionLength()
	scores := make([]seriesScore, 0, len(test))
	for i, entry := range test {
		if len(entry.Target) <= horizon {
			return nil, fmt.Errorf("test entry %d: target shorter than prediction horizon", i)
		}
		input := entry
		input.Target = entry.Target[:len(entry.Target)-horizon]
		actual := entry.Target[len(entry.Target)-horizon:]

		forecast, err := p.Predict(input, cfg)
		if err != nil {
			return nil, fmt.Errorf("test entry %d: %w", i, err)
		}
		scores = append(scores, scoreSeries(input.Target, actual, forecast, quantiles))
	}

	return aggregate(scores, quantiles), nil
}

func scoreSeries(context, actual []float64, f *domain.Forecast, quantiles []string) seriesScore {
	s := seriesScore{
		quantileLoss: map[string]float64{},
		coverage:     map[string]float64{},
		points:       len(actual),
	}

	for t, y := range actual {
		s.absTargetSum += math.Abs(y)
		err := y - f.Mean[t]
		s.absError += math.Abs(err)
		s.sqError += err * err
		if denom := math.Abs(y) + math.Abs(f.Mean[t]); denom > 0 {
			s.smape += 2 * math.Abs(err) / denom / float64(len(actual))
		}
	}

	seasonal := seasonalError(context)
	s.mase = safeDiv(s.absError/float64(len(actual)), seasonal)

	for _, level := range quantiles {
		q, _ := strconv.ParseFloat(level, 64)
		path := f.Quantiles[level]
		var loss, covered float64
		for t, y := range actual {
			diff := y - path[t]
			if diff >= 0 {
				loss += 2 * q * diff
			} else {
				loss += 2 * (1 - q) * -diff
			}
			if y < path[t] {
				covered++
			}
		}
		s.quantileLoss[level] = loss
		s.coverage[level] = covered / float64(len(actual))
	}

	s.msis = intervalScore(actual, f, quantiles, seasonal)
	return s
}

// seasonalError is the mean absolute one-step difference of the
// context window, the scale of the naive baseline.
func seasonalError(context []float64) float64 {
	if len(context) < 2 {
		return 0
	}
	var sum float64
	for i := 1; i < len(context); i++ {
		sum += math.Abs(context[i] - context[i-1])
	}
	return sum / float64(len(context)-1)
}

// intervalScore penalizes width plus excursions outside the outermost
// requested quantile band, scaled by the seasonal error.
func intervalScore(actual []float64, f *domain.Forecast, quantiles []string, seasonal float64) float64 {
	levels := lo.Map(quantiles, func(s string, _ int) float64 {
		q, _ := strconv.ParseFloat(s, 64)
		return q
	})
	sort.Float64s(levels)
	lowQ, highQ := levels[0], levels[len(levels)-1]
	if lowQ >= 0.5 || highQ <= 0.5 {
		return 0
	}
	lower := f.Quantiles[quantiles[indexOf(quantiles, lowQ)]]
	upper := f.Quantiles[quantiles[indexOf(quantiles, highQ)]]
	alpha := lowQ + (1 - highQ)

	var score float64
	for t, y := range actual {
		score += upper[t] - lower[t]
		if y < lower[t] {
			score += 2 / alpha * (lower[t] - y)
		}
		if y > upper[t] {
			score += 2 / alpha * (y - upper[t])
		}
	}
	return safeDiv(score/float64(len(actual)), seasonal)
}

func indexOf(quantiles []string, q float64) int {
	_, idx, _ := lo.FindIndexOf(quantiles, func(s string) bool {
		v, _ := strconv.ParseFloat(s, 64)
		return v == q
	})
	return idx
}

func aggregate(scores []seriesScore, quantiles []string) *Report {
	metrics := map[string]float64{}

	var absSum, absErr, sqErr float64
	var points int
	mase := make([]float64, len(scores))
	msis := make([]float64, len(scores))
	smape := make([]float64, len(scores))
	for i, s := range scores {
		absSum += s.absTargetSum
		absErr += s.absError
		sqErr += s.sqError
		points += s.points
		mase[i] = s.mase
		msis[i] = s.msis
		smape[i] = s.smape
	}

	metrics["abs_target_sum"] = absSum
	metrics["abs_error"] = absErr
	metrics["ND"] = safeDiv(absErr, absSum)
	if points > 0 {
		metrics["RMSE"] = math.Sqrt(sqErr / float64(points))
	}
	if len(scores) > 0 {
		metrics["MASE"] = stat.Mean(mase, nil)
		metrics["MSIS"] = stat.Mean(msis, nil)
		metrics["sMAPE"] = stat.Mean(smape, nil)
	}

	var meanWQL float64
	for _, level := range quantiles {
		var loss, coverage float64
		for _, s := range scores {
			loss += s.quantileLoss[level]
			coverage += s.coverage[level]
		}
		wql := safeDiv(loss, absSum)
		metrics[fmt.Sprintf("QuantileLoss[%s]", level)] = loss
		metrics[fmt.Sprintf("wQuantileLoss[%s]", level)] = wql
		if len(scores) > 0 {
			metrics[fmt.Sprintf("Coverage[%s]", level)] = coverage / float64(len(scores))
		}
		meanWQL += wql / float64(len(quantiles))
	}
	metrics["mean_wQuantileLoss"] = meanWQL

	return &Report{Quantiles: quantiles, Metrics: metrics}
}

// safeDiv returns 0 when both operands vanish, so a perfect forecast
// on a constant series scores 0 rather than NaN.
func safeDiv(num, denom float64) float64 {
	if denom == 0 {
		if num == 0 {
			return 0
		}
		return math.Inf(sign(num))
	}
	return num / denom
}

func sign(f float64) int {
	if f < 0 {
		return -1
	}
	return 1
}

// Names returns the metric names in a stable order for logging.
func (r *Report) Names() []string {
	names := lo.Keys(r.Metrics)
	sort.Strings(names)
	return names
}
