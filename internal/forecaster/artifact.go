package forecaster

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"forecast-shell/internal/domain"
	"forecast-shell/internal/sagemaker"
)

// ArtifactName is the serialized predictor file inside the model dir.
const ArtifactName = "predictor.json"

// Serialize writes the predictor's descriptor into modelDir.
func Serialize(p Predictor, modelDir string) error {
	if err := os.MkdirAll(modelDir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(p.Descriptor(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(modelDir, ArtifactName), data, 0o644)
}

// Load restores a predictor from a serialized descriptor in modelDir.
func Load(modelDir string) (Predictor, error) {
	data, err := os.ReadFile(filepath.Join(modelDir, ArtifactName))
	if os.IsNotExist(err) {
		return nil, domain.ErrPredictorNotFound
	}
	if err != nil {
		return nil, err
	}

	var desc Descriptor
	if err := json.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("predictor artifact: %w", err)
	}
	return New(desc.Forecaster, sagemaker.Hyperparameters(desc.Hyperparameters))
}
