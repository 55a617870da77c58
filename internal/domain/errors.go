package domain

import "errors"

var (
	ErrPredictorNotFound = errors.New("no serialized predictor found in model directory")
	ErrUnknownForecaster = errors.New("unknown forecaster type")
	ErrEmptyTarget       = errors.New("entry target must not be empty")
	ErrBadConfiguration  = errors.New("invalid forecast configuration")
	ErrUnknownOutputType = errors.New("unknown output type requested")
	ErrMissingInstances  = errors.New("request must carry at least one instance")
	ErrMissingChannel    = errors.New("required data channel not found")
	ErrBadHyperparameter = errors.New("invalid hyperparameter value")
)
