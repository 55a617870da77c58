package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Server Server
	Paths  Paths
	Batch  Batch
	Logger Logger
}

type Server struct {
	Host                    string
	Port                    int
	MaxConcurrentTransforms int
	// ForecasterType enables dynamic mode: when set, the server
	// builds a predictor from each request's configuration instead
	// of loading a serialized artifact.
	ForecasterType string
}

type Paths struct {
	// Base is the root of the container filesystem contract,
	// /opt/ml in production and a temp dir in tests.
	Base string
}

type Batch struct {
	// Enabled mirrors SAGEMAKER_BATCH.
	Enabled bool
	// InferenceConfig is the raw JSON value of INFERENCE_CONFIG.
	InferenceConfig string
}

type Logger struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SAGEMAKER_BIND_TO_PORT", 8080)
	v.SetDefault("SAGEMAKER_MAX_CONCURRENT_TRANSFORMS", 1)
	v.SetDefault("SAGEMAKER_BATCH", false)
	v.SetDefault("INFERENCE_CONFIG", "")
	v.SetDefault("FORECASTER_TYPE", "")
	v.SetDefault("ML_BASE_PATH", "/opt/ml")
	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "text")

	// Env
	v.AutomaticEnv()

	cfg := &Config{
		Server: Server{
			Host:                    v.GetString("SERVER_HOST"),
			Port:                    v.GetInt("SAGEMAKER_BIND_TO_PORT"),
			MaxConcurrentTransforms: v.GetInt("SAGEMAKER_MAX_CONCURRENT_TRANSFORMS"),
			ForecasterType:          v.GetString("FORECASTER_TYPE"),
		},
		Paths: Paths{
			Base: v.GetString("ML_BASE_PATH"),
		},
		Batch: Batch{
			Enabled:         v.GetBool("SAGEMAKER_BATCH"),
			InferenceConfig: v.GetString("INFERENCE_CONFIG"),
		},
		Logger: Logger{
			Level:  v.GetString("LOGGER_LEVEL"),
			Format: v.GetString("LOGGER_FORMAT"),
		},
	}

	return cfg, nil
}
