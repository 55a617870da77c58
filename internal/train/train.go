// Package train implements the training entrypoint of the shell:
// build a predictor from hyperparameters, serialize it to the model
// directory, and backtest it against the test channel when present.
package train

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"forecast-shell/internal/domain"
	"forecast-shell/internal/evaluator"
	"forecast-shell/internal/forecaster"
	"forecast-shell/internal/sagemaker"
)

// Run trains and, if a test channel exists, evaluates. The forecaster
// type may come from the FORECASTER_TYPE environment or from the
// "forecaster_name" hyperparameter; the argument wins when non-empty.
func Run(env *sagemaker.TrainEnv, forecasterType string) error {
	if forecasterType == "" {
		forecasterType = env.Hyperparameters.String("forecaster_name", "")
	}
	if forecasterType == "" {
		return fmt.Errorf("%w: no forecaster type configured (known: %s)",
			domain.ErrUnknownForecaster, strings.Join(forecaster.Types(), ", "))
	}

	log.WithFields(log.Fields{
		"forecaster": forecasterType,
		"series":     len(env.Datasets["train"]),
	}).Info("starting training")

	predictor, err := forecaster.New(forecasterType, env.Hyperparameters)
	if err != nil {
		return err
	}

	if err := forecaster.Serialize(predictor, env.Path.Model()); err != nil {
		return fmt.Errorf("serialize predictor: %w", err)
	}
	log.WithField("model_dir", env.Path.Model()).Info("predictor serialized")

	test, ok := env.Datasets["test"]
	if !ok {
		log.Info("no test channel, skipping evaluation")
		return nil
	}

	// Evaluate the round-tripped artifact, not the in-memory
	// predictor, so serving sees exactly what was scored.
	loaded, err := forecaster.Load(env.Path.Model())
	if err != nil {
		return err
	}

	report, err := evaluator.Backtest(loaded, test, nil)
	if err != nil {
		return fmt.Errorf("backtest: %w", err)
	}
	logScores(report)
	return nil
}

// logScores emits one scoreboard line per metric; downstream tooling
// greps for the "#test_score" prefix.
func logScores(r *evaluator.Report) {
	for _, name := range r.Names() {
		log.Infof("#test_score (local, %s): %g", name, r.Metrics[name])
	}
}
