package handler

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"forecast-shell/internal/dataset"
	"forecast-shell/internal/domain"
	"forecast-shell/internal/jsonify"
	"forecast-shell/internal/observability"
)

const (
	batchStrategy = "SINGLE_RECORD"
	maxPayloadMB  = 6

	jsonLinesContentType = "application/jsonlines"
)

// Ping is the hosting platform's container health check.
func (h *Handler) Ping(c *gin.Context) {
	c.Status(http.StatusOK)
}

// ExecutionParameters advertises the batch-transform limits. The
// strategy and payload cap are fixed by the serving contract.
func (h *Handler) ExecutionParameters(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"BatchStrategy":           batchStrategy,
		"MaxConcurrentTransforms": h.opts.MaxConcurrentTransforms,
		"MaxPayloadInMB":          maxPayloadMB,
	})
}

type invocationsRequest struct {
	Instances     []domain.Entry `json:"instances"`
	Configuration *domain.Config `json:"configuration"`
}

// Invocations forecasts a batch of series. Interactive requests carry
// instances plus a configuration object; in batch-transform mode the
// body is JSON lines of entries and the configuration comes from the
// environment.
func (h *Handler) Invocations(c *gin.Context) {
	if h.opts.BatchMode {
		h.batchInvocations(c)
		return
	}

	var req invocationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		observability.InvocationsTotal.WithLabelValues("interactive", "error").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Instances) == 0 {
		observability.InvocationsTotal.WithLabelValues("interactive", "error").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrMissingInstances.Error()})
		return
	}

	cfg := domain.DefaultConfig()
	if req.Configuration != nil {
		cfg = *req.Configuration
	}

	predictions, err := h.forecastAll(req.Instances, cfg)
	if err != nil {
		observability.InvocationsTotal.WithLabelValues("interactive", "error").Inc()
		log.WithError(err).Error("invocations failed")
		mapDomainError(c, err)
		return
	}

	observability.InvocationsTotal.WithLabelValues("interactive", "ok").Inc()
	c.JSON(http.StatusOK, gin.H{"predictions": predictions})
}

func (h *Handler) batchInvocations(c *gin.Context) {
	entries, err := dataset.Decode(c.Request.Body)
	if err != nil {
		observability.InvocationsTotal.WithLabelValues("batch", "error").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	predictions, err := h.forecastAll(entries, h.batchConfig)
	if err != nil {
		observability.InvocationsTotal.WithLabelValues("batch", "error").Inc()
		log.WithError(err).Error("batch invocations failed")
		mapDomainError(c, err)
		return
	}

	var body bytes.Buffer
	for _, p := range predictions {
		line, err := json.Marshal(p)
		if err != nil {
			observability.InvocationsTotal.WithLabelValues("batch", "error").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "encode forecast"})
			return
		}
		body.Write(append(line, '\n'))
	}

	observability.InvocationsTotal.WithLabelValues("batch", "ok").Inc()
	c.Data(http.StatusOK, jsonLinesContentType, body.Bytes())
}

// forecastAll runs the predictor over every entry and sanitizes each
// payload for strict JSON encoding.
func (h *Handler) forecastAll(entries domain.Dataset, cfg domain.Config) ([]map[string]any, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	predictor, err := h.predictorFor(cfg)
	if err != nil {
		return nil, err
	}

	predictions := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		forecast, err := predictor.Predict(entry, cfg)
		if err != nil {
			return nil, err
		}
		predictions = append(predictions, jsonify.Floats(forecast.AsDict()).(map[string]any))
	}
	observability.ForecastSeriesTotal.Add(float64(len(entries)))
	return predictions, nil
}
