package depload

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// Config is the serializable part of the container configuration.
//
//	circular: true
//	log_level: debug
type Config struct {
	Circular bool   `yaml:"circular"`
	LogLevel string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error dpanic panic fatal"`
}

func ParseConfig(data []byte) (Config, error) {
	return LoadConfig(bytes.NewReader(data))
}

// LoadConfig decodes a YAML document. Unknown keys are rejected.
func LoadConfig(r io.Reader) (Config, error) {
	var cfg Config

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the field constraints LoadConfig enforces.
func (cfg Config) Validate() error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// WithConfig applies cfg. A non-empty LogLevel replaces the logger with a
// production zap logger at that level. An invalid LogLevel falls back to
// info and the rejection is logged as a warning. If the production logger
// cannot be built the current logger is kept and the failure is logged
// through it.
func WithConfig(cfg Config) Option {
	return func(c *containerConfig) {
		c.circular = cfg.Circular

		if cfg.LogLevel == "" {
			return
		}

		level := zapcore.InfoLevel
		invalid := cfg.Validate()
		if invalid == nil {
			level, invalid = zapcore.ParseLevel(cfg.LogLevel)
		}
		if invalid != nil {
			level = zapcore.InfoLevel
		}

		zc := zap.NewProductionConfig()
		zc.Level = zap.NewAtomicLevelAt(level)
		logger, err := zc.Build()
		if err != nil {
			if c.logger == nil {
				c.logger = zap.NewNop()
			}
			c.logger.Warn("failed to build configured logger", zap.String("log_level", cfg.LogLevel), zap.Error(err))
			return
		}

		if invalid != nil {
			logger.Warn("ignoring log_level, using info", zap.String("log_level", cfg.LogLevel), zap.Error(invalid))
		}
		c.logger = logger
	}
}
