package sagemaker

import (
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"forecast-shell/internal/dataset"
	"forecast-shell/internal/domain"
)

// TrainEnv is everything a training job sees: hyperparameters and the
// datasets wired into the container's data channels.
type TrainEnv struct {
	Path            Path
	Hyperparameters Hyperparameters
	Datasets        map[string]domain.Dataset
}

// NewTrainEnv loads hyperparameters and all present data channels
// from the layout rooted at base.
func NewTrainEnv(base string) (*TrainEnv, error) {
	p := NewPath(base)

	hp, err := ReadHyperparameters(p.HyperparametersFile())
	if err != nil {
		return nil, fmt.Errorf("load train env: %w", err)
	}

	env := &TrainEnv{
		Path:            p,
		Hyperparameters: hp,
		Datasets:        map[string]domain.Dataset{},
	}

	channels, err := listChannels(p.Data())
	if err != nil {
		return nil, err
	}
	for _, name := range channels {
		ds, err := dataset.ReadChannel(p.Channel(name))
		if err != nil {
			return nil, fmt.Errorf("channel %s: %w", name, err)
		}
		env.Datasets[name] = ds
		log.WithFields(log.Fields{"channel": name, "series": len(ds)}).Info("loaded data channel")
	}

	if _, ok := env.Datasets["train"]; !ok {
		return nil, fmt.Errorf("%w: train", domain.ErrMissingChannel)
	}
	return env, nil
}

// WriteFailure records err in the output/failure file the platform
// surfaces to the user when a job dies.
func (e *TrainEnv) WriteFailure(err error) {
	if mkErr := os.MkdirAll(e.Path.Output(), 0o755); mkErr != nil {
		log.WithError(mkErr).Error("create output dir")
		return
	}
	if wrErr := os.WriteFile(e.Path.FailureFile(), []byte(err.Error()), 0o644); wrErr != nil {
		log.WithError(wrErr).Error("write failure file")
	}
}

// ServeEnv is what the inference server sees: just the model
// directory; batch-transform settings come from the process
// environment via config.
type ServeEnv struct {
	Path Path
}

func NewServeEnv(base string) *ServeEnv {
	return &ServeEnv{Path: NewPath(base)}
}

func listChannels(dataDir string) ([]string, error) {
	infos, err := os.ReadDir(dataDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var names []string
	for _, info := range infos {
		if info.IsDir() {
			names = append(names, filepath.Base(info.Name()))
		}
	}
	return names, nil
}
