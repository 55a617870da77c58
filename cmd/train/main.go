package main

import (
	log "github.com/sirupsen/logrus"

	"forecast-shell/internal/config"
	"forecast-shell/internal/sagemaker"
	"forecast-shell/internal/train"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	initLogger(cfg)

	env, err := sagemaker.NewTrainEnv(cfg.Paths.Base)
	if err != nil {
		log.Fatalf("load train env: %v", err)
	}

	if err := train.Run(env, cfg.Server.ForecasterType); err != nil {
		env.WriteFailure(err)
		log.Fatalf("training failed: %v", err)
	}

	log.Info("training finished")
}

func initLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
