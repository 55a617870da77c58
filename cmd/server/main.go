package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"forecast-shell/internal/config"
	"forecast-shell/internal/forecaster"
	"forecast-shell/internal/handler"
	"forecast-shell/internal/middleware"
	"forecast-shell/internal/observability"
	"forecast-shell/internal/sagemaker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	initLogger(cfg)

	serveEnv := sagemaker.NewServeEnv(cfg.Paths.Base)

	opts := handler.Options{
		MaxConcurrentTransforms: cfg.Server.MaxConcurrentTransforms,
		BatchMode:               cfg.Batch.Enabled,
		InferenceConfig:         cfg.Batch.InferenceConfig,
	}

	if cfg.Server.ForecasterType != "" {
		// Dynamic mode: predictors are built per request from the
		// configuration, seeded with the training hyperparameters
		// when the file is present.
		opts.ForecasterType = cfg.Server.ForecasterType
		if hp, err := sagemaker.ReadHyperparameters(serveEnv.Path.HyperparametersFile()); err == nil {
			opts.Hyperparameters = hp
		}
		log.WithField("forecaster", cfg.Server.ForecasterType).Info("serving in dynamic mode")
	} else {
		predictor, err := forecaster.Load(serveEnv.Path.Model())
		if err != nil {
			log.Fatalf("load predictor: %v", err)
		}
		opts.Predictor = predictor
		log.WithField("model_dir", serveEnv.Path.Model()).Info("serving serialized predictor")
	}

	h, err := handler.New(opts)
	if err != nil {
		log.Fatalf("init handler: %v", err)
	}

	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logging(), observability.Middleware(), gin.Recovery())
	h.RegisterRoutes(router)
	router.GET("/metrics", gin.WrapH(observability.Handler()))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Infof("starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced shutdown: %v", err)
	}

	log.Info("server stopped")
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
