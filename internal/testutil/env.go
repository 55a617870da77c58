// Package testutil builds throwaway container layouts and wraps a
// running server for tests.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"forecast-shell/internal/dataset"
	"forecast-shell/internal/domain"
	"forecast-shell/internal/sagemaker"
)

// ConstantDataset builds numSeries series where series i holds the
// value i at every step. The mean forecaster is exact on it, which
// pins every accuracy metric at zero.
func ConstantDataset(numSeries, length int) domain.Dataset {
	ds := make(domain.Dataset, numSeries)
	for i := range ds {
		target := make([]float64, length)
		for t := range target {
			target[t] = float64(i)
		}
		ds[i] = domain.Entry{Start: "2020-01-01 00:00:00", Target: target}
	}
	return ds
}

// TempTrainEnv writes hyperparameters plus constant train and test
// channels under a temp dir and loads the resulting TrainEnv. Train
// series span context+prediction steps; test series add one more
// prediction horizon as the held-out tail.
func TempTrainEnv(t *testing.T, hp map[string]any) *sagemaker.TrainEnv {
	t.Helper()

	base := t.TempDir()
	p := sagemaker.NewPath(base)

	require.NoError(t, os.MkdirAll(p.InputConfig(), 0o755))
	data, err := json.Marshal(hp)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(p.HyperparametersFile(), data, 0o644))

	contextLength := intHyperparameter(t, hp, "context_length")
	predictionLength := intHyperparameter(t, hp, "prediction_length")
	trainLength := contextLength + predictionLength

	train := ConstantDataset(10, trainLength)
	test := ConstantDataset(10, trainLength+predictionLength)
	require.NoError(t, dataset.Write(filepath.Join(p.Channel("train"), "data.json"), train))
	require.NoError(t, dataset.Write(filepath.Join(p.Channel("test"), "data.json"), test))

	env, err := sagemaker.NewTrainEnv(base)
	require.NoError(t, err)
	return env
}

func intHyperparameter(t *testing.T, hp map[string]any, key string) int {
	t.Helper()
	switch v := hp[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		t.Fatalf("hyperparameter %s must be numeric, got %T", key, hp[key])
		return 0
	}
}
