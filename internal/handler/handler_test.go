package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forecast-shell/internal/domain"
	"forecast-shell/internal/forecaster"
	"forecast-shell/internal/middleware"
	"forecast-shell/internal/observability"
	"forecast-shell/internal/sagemaker"
	"forecast-shell/internal/testutil"
)

const (
	contextLength    = 5
	predictionLength = 6
	numSamples       = 4
)

func shellHyperparameters() map[string]any {
	return map[string]any{
		"context_length":    contextLength,
		"prediction_length": predictionLength,
		"num_samples":       numSamples,
	}
}

func newServer(t *testing.T, opts Options) *testutil.ServerFacade {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h, err := New(opts)
	require.NoError(t, err)

	r := gin.New()
	r.Use(middleware.RequestID(), observability.Middleware())
	h.RegisterRoutes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return testutil.NewServerFacade(srv.URL)
}

// staticServer serializes a trained predictor and serves the loaded
// artifact, the deployment path of a real training job.
func staticServer(t *testing.T, env *sagemaker.TrainEnv) *testutil.ServerFacade {
	t.Helper()

	p, err := forecaster.NewMeanPredictor(env.Hyperparameters)
	require.NoError(t, err)
	require.NoError(t, forecaster.Serialize(p, env.Path.Model()))

	loaded, err := forecaster.Load(env.Path.Model())
	require.NoError(t, err)

	return newServer(t, Options{Predictor: loaded, MaxConcurrentTransforms: 1})
}

func dynamicServer(t *testing.T, env *sagemaker.TrainEnv) *testutil.ServerFacade {
	t.Helper()
	return newServer(t, Options{
		ForecasterType:          "mean",
		Hyperparameters:         env.Hyperparameters,
		MaxConcurrentTransforms: 1,
	})
}

func toFloats(t *testing.T, v any) []float64 {
	t.Helper()
	raw, ok := v.([]any)
	require.True(t, ok, "expected array, got %T", v)
	out := make([]float64, len(raw))
	for i, item := range raw {
		f, ok := item.(float64)
		require.True(t, ok, "expected number, got %T", item)
		out[i] = f
	}
	return out
}

func assertConstantForecast(t *testing.T, forecast map[string]any, want float64) {
	t.Helper()

	mean := toFloats(t, forecast["mean"])
	require.Len(t, mean, predictionLength)
	for _, v := range mean {
		assert.Equal(t, want, v)
	}

	samples, ok := forecast["samples"].([]any)
	require.True(t, ok)
	require.Len(t, samples, numSamples)
	for _, row := range samples {
		path := toFloats(t, row)
		require.Len(t, path, predictionLength)
		for _, v := range path {
			assert.Equal(t, want, v)
		}
	}
}

func checkExecutionParameters(t *testing.T, facade *testutil.ServerFacade) {
	t.Helper()

	params, err := facade.ExecutionParameters()
	require.NoError(t, err)

	require.Contains(t, params, "BatchStrategy")
	require.Contains(t, params, "MaxConcurrentTransforms")
	require.Contains(t, params, "MaxPayloadInMB")
	assert.Equal(t, "SINGLE_RECORD", params["BatchStrategy"])
	assert.Equal(t, float64(6), params["MaxPayloadInMB"])
}

// TestServerOnRealPort runs the shell on a real TCP port the way the
// hosting platform does, rather than through httptest.
func TestServerOnRealPort(t *testing.T) {
	gin.SetMode(gin.TestMode)
	env := testutil.TempTrainEnv(t, shellHyperparameters())

	p, err := forecaster.NewMeanPredictor(env.Hyperparameters)
	require.NoError(t, err)
	h, err := New(Options{Predictor: p, MaxConcurrentTransforms: 1})
	require.NoError(t, err)

	r := gin.New()
	h.RegisterRoutes(r)

	port, err := testutil.FreePort()
	require.NoError(t, err)
	srv := &http.Server{Addr: fmt.Sprintf("127.0.0.1:%d", port), Handler: r}
	go srv.ListenAndServe()
	t.Cleanup(func() { srv.Shutdown(context.Background()) })

	facade := testutil.NewServerFacade(fmt.Sprintf("http://127.0.0.1:%d", port))
	require.Eventually(t, func() bool { return facade.Ping() == nil }, 2*time.Second, 10*time.Millisecond)

	checkExecutionParameters(t, facade)
}

func TestPing(t *testing.T) {
	env := testutil.TempTrainEnv(t, shellHyperparameters())
	facade := staticServer(t, env)

	assert.NoError(t, facade.Ping())
}

func TestStaticServerShell(t *testing.T) {
	env := testutil.TempTrainEnv(t, shellHyperparameters())
	facade := staticServer(t, env)

	checkExecutionParameters(t, facade)

	configuration := map[string]any{
		"num_samples":  1, // the predictor's own sample count wins
		"output_types": []string{"mean", "samples"},
		"quantiles":    []string{},
	}

	for i, entry := range env.Datasets["train"] {
		forecasts, err := facade.Invocations(domain.Dataset{entry}, configuration)
		require.NoError(t, err)
		require.Len(t, forecasts, 1)
		assertConstantForecast(t, forecasts[0], float64(i))
	}
}

func TestDynamicServerShell(t *testing.T) {
	env := testutil.TempTrainEnv(t, shellHyperparameters())
	facade := dynamicServer(t, env)

	checkExecutionParameters(t, facade)

	configuration := map[string]any{
		"output_types": []string{"mean", "samples"},
		"quantiles":    []string{},
	}
	for k, v := range shellHyperparameters() {
		configuration[k] = v
	}

	for i, entry := range env.Datasets["train"] {
		forecasts, err := facade.Invocations(domain.Dataset{entry}, configuration)
		require.NoError(t, err)
		require.Len(t, forecasts, 1)
		assertConstantForecast(t, forecasts[0], float64(i))
	}
}

func TestBatchTransformShell(t *testing.T) {
	env := testutil.TempTrainEnv(t, shellHyperparameters())

	inferenceConfig := map[string]any{
		"output_types": []string{"mean", "samples"},
		"quantiles":    []string{},
	}
	for k, v := range shellHyperparameters() {
		inferenceConfig[k] = v
	}
	rawConfig, err := json.Marshal(inferenceConfig)
	require.NoError(t, err)

	facade := newServer(t, Options{
		ForecasterType:          "mean",
		Hyperparameters:         env.Hyperparameters,
		MaxConcurrentTransforms: 1,
		BatchMode:               true,
		InferenceConfig:         string(rawConfig),
	})

	checkExecutionParameters(t, facade)

	for i, entry := range env.Datasets["train"] {
		forecasts, err := facade.BatchInvocations(domain.Dataset{entry})
		require.NoError(t, err)
		require.Len(t, forecasts, 1)
		assertConstantForecast(t, forecasts[0], float64(i))
	}
}

func TestBatchMatchesInteractive(t *testing.T) {
	env := testutil.TempTrainEnv(t, shellHyperparameters())

	configuration := map[string]any{
		"output_types": []string{"mean", "samples"},
		"quantiles":    []string{},
	}
	for k, v := range shellHyperparameters() {
		configuration[k] = v
	}
	rawConfig, err := json.Marshal(configuration)
	require.NoError(t, err)

	interactive := dynamicServer(t, env)
	batch := newServer(t, Options{
		ForecasterType:          "mean",
		Hyperparameters:         env.Hyperparameters,
		MaxConcurrentTransforms: 1,
		BatchMode:               true,
		InferenceConfig:         string(rawConfig),
	})

	entries := env.Datasets["train"]
	fromInteractive, err := interactive.Invocations(entries, configuration)
	require.NoError(t, err)
	fromBatch, err := batch.BatchInvocations(entries)
	require.NoError(t, err)

	assert.Equal(t, fromInteractive, fromBatch)
}

func TestInvocationsSanitizesNonFiniteForecasts(t *testing.T) {
	env := testutil.TempTrainEnv(t, shellHyperparameters())
	facade := staticServer(t, env)

	// An empty target gives a NaN mean, which must arrive as the
	// JSON-legal "NaN" token rather than breaking encoding.
	forecasts, err := facade.Invocations(domain.Dataset{{Start: "2020-01-01 00:00:00"}}, map[string]any{
		"output_types": []string{"mean"},
		"quantiles":    []string{},
	})
	require.NoError(t, err)
	require.Len(t, forecasts, 1)

	mean, ok := forecasts[0]["mean"].([]any)
	require.True(t, ok)
	require.Len(t, mean, predictionLength)
	for _, v := range mean {
		assert.Equal(t, "NaN", v)
	}
}

func TestInvocationsDefaultsConfiguration(t *testing.T) {
	env := testutil.TempTrainEnv(t, shellHyperparameters())
	facade := staticServer(t, env)

	body, err := json.Marshal(map[string]any{"instances": env.Datasets["train"][:1]})
	require.NoError(t, err)
	resp, err := http.Post(facade.BaseURL+"/invocations", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var decoded struct {
		Predictions []map[string]any `json:"predictions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	require.Len(t, decoded.Predictions, 1)

	// Default output types are mean + quantiles at 0.1/0.5/0.9.
	assert.Contains(t, decoded.Predictions[0], "mean")
	assert.Contains(t, decoded.Predictions[0], "quantiles")
	assert.NotContains(t, decoded.Predictions[0], "samples")
}

func TestInvocationsRejectsEmptyInstances(t *testing.T) {
	env := testutil.TempTrainEnv(t, shellHyperparameters())
	facade := staticServer(t, env)

	_, err := facade.Invocations(domain.Dataset{}, map[string]any{
		"output_types": []string{"mean"},
	})
	assert.Error(t, err)
}

func TestInvocationsRejectsUnknownOutputType(t *testing.T) {
	env := testutil.TempTrainEnv(t, shellHyperparameters())
	facade := staticServer(t, env)

	_, err := facade.Invocations(env.Datasets["train"][:1], map[string]any{
		"output_types": []string{"median-of-means"},
	})
	assert.Error(t, err)
}

func TestNewRequiresPredictorOrType(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestNewBatchModeRequiresInferenceConfig(t *testing.T) {
	_, err := New(Options{ForecasterType: "mean", BatchMode: true})
	assert.ErrorIs(t, err, domain.ErrBadConfiguration)
}

func TestNewBatchModeRejectsMalformedConfig(t *testing.T) {
	_, err := New(Options{ForecasterType: "mean", BatchMode: true, InferenceConfig: "{"})
	assert.ErrorIs(t, err, domain.ErrBadConfiguration)
}
