package sagemaker

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"forecast-shell/internal/domain"
)

// Hyperparameters holds the decoded hyperparameters.json. The
// platform delivers every value as a JSON string, so the accessors
// accept both native numbers and their string spellings.
type Hyperparameters map[string]any

func ReadHyperparameters(path string) (Hyperparameters, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var hp Hyperparameters
	if err := json.Unmarshal(data, &hp); err != nil {
		return nil, fmt.Errorf("hyperparameters: %w", err)
	}
	return hp, nil
}

// Int returns the named hyperparameter as an int, or fallback when
// the key is absent.
func (hp Hyperparameters) Int(key string, fallback int) (int, error) {
	raw, ok := hp[key]
	if !ok {
		return fallback, nil
	}
	switch v := raw.(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%w: %s=%q", domain.ErrBadHyperparameter, key, v)
		}
		return n, nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: %s=%q", domain.ErrBadHyperparameter, key, v)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("%w: %s has type %T", domain.ErrBadHyperparameter, key, raw)
	}
}

// String returns the named hyperparameter as a string, or fallback
// when the key is absent.
func (hp Hyperparameters) String(key, fallback string) string {
	raw, ok := hp[key]
	if !ok {
		return fallback
	}
	if s, ok := raw.(string); ok {
		return s
	}
	return fmt.Sprint(raw)
}

// Merge returns a copy of hp with overrides applied on top.
func (hp Hyperparameters) Merge(overrides map[string]any) Hyperparameters {
	out := make(Hyperparameters, len(hp)+len(overrides))
	for k, v := range hp {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}
	return out
}
