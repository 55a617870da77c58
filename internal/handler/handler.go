// Package handler exposes the hosting platform's serving contract:
// /ping, /execution-parameters, and /invocations.
package handler

import (
	"encoding/json"
	"fmt"

	"github.com/gin-gonic/gin"

	"forecast-shell/internal/domain"
	"forecast-shell/internal/forecaster"
	"forecast-shell/internal/sagemaker"
)

// Options selects the serving mode. Exactly one of Predictor (static
// mode, a deserialized artifact) or ForecasterType (dynamic mode, a
// predictor built per request from the configuration) must be set.
type Options struct {
	Predictor       forecaster.Predictor
	ForecasterType  string
	Hyperparameters sagemaker.Hyperparameters

	MaxConcurrentTransforms int

	// BatchMode switches /invocations to JSON-lines bodies with the
	// configuration fixed by InferenceConfig (raw JSON).
	BatchMode       bool
	InferenceConfig string
}

type Handler struct {
	opts        Options
	batchConfig domain.Config
}

func New(opts Options) (*Handler, error) {
	if opts.Predictor == nil && opts.ForecasterType == "" {
		return nil, fmt.Errorf("%w: serving needs a predictor or a forecaster type", domain.ErrPredictorNotFound)
	}
	if opts.MaxConcurrentTransforms <= 0 {
		opts.MaxConcurrentTransforms = 1
	}

	h := &Handler{opts: opts}
	if opts.BatchMode {
		if opts.InferenceConfig == "" {
			return nil, fmt.Errorf("%w: batch mode without INFERENCE_CONFIG", domain.ErrBadConfiguration)
		}
		if err := json.Unmarshal([]byte(opts.InferenceConfig), &h.batchConfig); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrBadConfiguration, err)
		}
		if err := h.batchConfig.Validate(); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/ping", h.Ping)
	r.GET("/execution-parameters", h.ExecutionParameters)
	r.POST("/invocations", h.Invocations)
}

// predictorFor resolves the predictor for one request. Static mode
// always serves the loaded artifact; dynamic mode builds a fresh one
// from the environment hyperparameters overlaid with the request
// configuration.
func (h *Handler) predictorFor(cfg domain.Config) (forecaster.Predictor, error) {
	if h.opts.Predictor != nil {
		return h.opts.Predictor, nil
	}
	hp := h.opts.Hyperparameters.Merge(cfg.Hyperparameters)
	return forecaster.New(h.opts.ForecasterType, hp)
}
