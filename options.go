package depload

import (
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Option func(*containerConfig)

func WithLogger(logger *zap.Logger) Option {
	return func(cfg *containerConfig) {
		cfg.logger = logger
	}
}

// WithCircular lets Start order services that depend on each other instead
// of failing with a circular dependency error.
func WithCircular(circular bool) Option {
	return func(cfg *containerConfig) {
		cfg.circular = circular
	}
}

func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(cfg *containerConfig) {
		cfg.tracerProvider = provider
	}
}

func WithStartObserver(hook StartHook) Option {
	return func(cfg *containerConfig) {
		cfg.onStart = append(cfg.onStart, hook)
	}
}

func WithStopObserver(hook StopHook) Option {
	return func(cfg *containerConfig) {
		cfg.onStop = append(cfg.onStop, hook)
	}
}

func WithStatusObserver(hook StatusHook) Option {
	return func(cfg *containerConfig) {
		cfg.onStatus = append(cfg.onStatus, hook)
	}
}
