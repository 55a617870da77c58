package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"forecast-shell/internal/domain"
)

func mapDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrPredictorNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, domain.ErrBadConfiguration),
		errors.Is(err, domain.ErrUnknownOutputType),
		errors.Is(err, domain.ErrUnknownForecaster),
		errors.Is(err, domain.ErrBadHyperparameter),
		errors.Is(err, domain.ErrEmptyTarget),
		errors.Is(err, domain.ErrMissingInstances):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
