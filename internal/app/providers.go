package app

import (
	"path/filepath"

	"go.uber.org/zap"

	"meetscribe/internal/app/api/assemblyai"
	"meetscribe/internal/app/capture"
	"meetscribe/internal/app/logger"
	"meetscribe/internal/app/store"
	"meetscribe/internal/app/transcribe"
	"meetscribe/internal/config"
)

func provideLogger(cfg *config.Config) (*zap.SugaredLogger, func(), error) {
	log, err := logger.New(cfg.Debug)
	if err != nil {
		return nil, nil, err
	}
	return log, func() { _ = log.Sync() }, nil
}

func provideEngine(log *zap.SugaredLogger) (capture.Engine, error) {
	return capture.NewFFmpegEngine(log)
}

func provideCatalog(cfg *config.Config) (*store.Catalog, func(), error) {
	catalog, err := store.NewCatalog(filepath.Join(cfg.MeetingsDir, "catalog.db"))
	if err != nil {
		return nil, nil, err
	}
	return catalog, func() { _ = catalog.Close() }, nil
}

func provideStore(cfg *config.Config, catalog *store.Catalog, log *zap.SugaredLogger) (*store.Store, error) {
	return store.New(cfg.MeetingsDir, catalog, log)
}

func provideSpeechService(cfg *config.Config, log *zap.SugaredLogger) transcribe.SpeechService {
	return assemblyai.NewClient(cfg.Transcription.BaseURL, cfg.APIKey, log)
}

func provideOrchestrator(cfg *config.Config, svc transcribe.SpeechService, log *zap.SugaredLogger) *transcribe.Orchestrator {
	return transcribe.NewOrchestrator(svc, retryPolicy(cfg.Transcription.Submit), retryPolicy(cfg.Transcription.Poll), log)
}

func retryPolicy(rc config.RetryPolicyConfig) transcribe.RetryPolicy {
	return transcribe.RetryPolicy{
		MaxAttempts:     rc.MaxAttempts,
		InitialInterval: rc.InitialInterval(),
		MaxInterval:     rc.MaxInterval(),
		Multiplier:      rc.Multiplier,
	}
}
