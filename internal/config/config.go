// Package config loads runtime settings from the environment and the logger settings from JSON.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/erilali/spamcontest/internal/logger"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

var validate = validator.New()

type Config struct {
	DiscordToken       string        `env:"DISCORD_TOKEN,required,notEmpty"`
	NatsURL            string        `env:"NATS_URL" envDefault:"nats://127.0.0.1:4222" validate:"required_if=NatsEnabled true,omitempty,url"`
	NatsEnabled        bool          `env:"NATS_ENABLED" envDefault:"true"`
	JetStreamRetention time.Duration `env:"JETSTREAM_RETENTION" envDefault:"24h" validate:"gt=0"`
	HTTPAddr           string        `env:"HTTP_ADDR" envDefault:":8080" validate:"required,hostname_port"`
	SinkCapacity       int           `env:"SINK_CAPACITY" envDefault:"8" validate:"gte=1,lte=4096"`
	// LogLevel overrides the level of the logger config file.
	LogLevel string `env:"LOG_LEVEL" validate:"omitempty,oneof=trace debug info warn error fatal panic"`
}

// LoadEnvFile loads path into the process environment without overriding variables that are
// already set. A missing file is reported with fs.ErrNotExist.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("env file %s: %w", path, fs.ErrNotExist)
		}
		return fmt.Errorf("loading env file %s: %w", path, err)
	}
	return nil
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing environment: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return cfg, fmt.Errorf("validating environment: %w", err)
	}
	return cfg, nil
}

// LoggerConfig applies the LOG_LEVEL override and then flagLevel to base.
func (c Config) LoggerConfig(base logger.LogConfig, flagLevel string) logger.LogConfig {
	if c.LogLevel != "" {
		base.Level = c.LogLevel
	}
	if flagLevel != "" {
		base.Level = flagLevel
	}
	return base
}

// LoadLoggerConfig loads the logger configuration from a JSON file
func LoadLoggerConfig(filePath string) (logger.LogConfig, error) {
	config := logger.DefaultLogConfig()
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return config, err
	}
	defer file.Close()
	decoder := json.NewDecoder(file)
	if err := decoder.Decode(&config); err != nil {
		return config, err
	}
	return config, nil
}
