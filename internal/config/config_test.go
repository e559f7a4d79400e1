package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/erilali/spamcontest/internal/logger"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	req := require.New(t)
	t.Setenv("DISCORD_TOKEN", "secret")

	cfg, err := Load()
	req.NoError(err)
	req.Equal(Config{
		DiscordToken:       "secret",
		NatsURL:            "nats://127.0.0.1:4222",
		NatsEnabled:        true,
		JetStreamRetention: 24 * time.Hour,
		HTTPAddr:           ":8080",
		SinkCapacity:       8,
	}, cfg)
}

func TestLoad_Overrides(t *testing.T) {
	req := require.New(t)
	t.Setenv("DISCORD_TOKEN", "secret")
	t.Setenv("NATS_ENABLED", "false")
	t.Setenv("JETSTREAM_RETENTION", "90m")
	t.Setenv("SINK_CAPACITY", "32")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	req.NoError(err)
	req.False(cfg.NatsEnabled)
	req.Equal(90*time.Minute, cfg.JetStreamRetention)
	req.Equal(32, cfg.SinkCapacity)
	req.Equal("debug", cfg.LogLevel)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing token", env: map[string]string{"DISCORD_TOKEN": ""}},
		{name: "bad capacity", env: map[string]string{"DISCORD_TOKEN": "x", "SINK_CAPACITY": "0"}},
		{name: "unparsable capacity", env: map[string]string{"DISCORD_TOKEN": "x", "SINK_CAPACITY": "many"}},
		{name: "bad retention", env: map[string]string{"DISCORD_TOKEN": "x", "JETSTREAM_RETENTION": "-1h"}},
		{name: "bad nats url", env: map[string]string{"DISCORD_TOKEN": "x", "NATS_URL": "not a url"}},
		{name: "unknown log level", env: map[string]string{"DISCORD_TOKEN": "x", "LOG_LEVEL": "chatty"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
		})
	}
}

func TestLoad_NatsURLIgnoredWhenDisabled(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "x")
	t.Setenv("NATS_ENABLED", "false")
	t.Setenv("NATS_URL", "")

	_, err := Load()
	require.NoError(t, err)
}

func TestLoad_ValidationErrorsAreTyped(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "x")
	t.Setenv("SINK_CAPACITY", "0")

	_, err := Load()
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Equal(t, "SinkCapacity", verrs[0].Field())
}

func TestLoad_MissingTokenIsEnvError(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")
	os.Unsetenv("DISCORD_TOKEN")

	_, err := Load()
	require.ErrorAs(t, err, &env.AggregateError{})
}

func TestLoadEnvFile(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	req.NoError(os.WriteFile(path, []byte("DISCORD_TOKEN=from-file\nHTTP_ADDR=:9090\n"), 0o600))
	t.Setenv("DISCORD_TOKEN", "")
	os.Unsetenv("DISCORD_TOKEN")
	t.Setenv("HTTP_ADDR", ":7070")

	req.NoError(LoadEnvFile(path))
	cfg, err := Load()
	req.NoError(err)
	req.Equal("from-file", cfg.DiscordToken)
	// variables already set win over the file
	req.Equal(":7070", cfg.HTTPAddr)

	err = LoadEnvFile(filepath.Join(dir, "missing.env"))
	req.ErrorIs(err, fs.ErrNotExist)
}

func TestConfig_LoggerConfigLevelPrecedence(t *testing.T) {
	req := require.New(t)
	base := logger.DefaultLogConfig()

	req.Equal("info", Config{}.LoggerConfig(base, "").Level)
	req.Equal("debug", Config{LogLevel: "debug"}.LoggerConfig(base, "").Level)
	req.Equal("warn", Config{LogLevel: "debug"}.LoggerConfig(base, "warn").Level)

	t.Setenv("DISCORD_TOKEN", "x")
	t.Setenv("LOG_LEVEL", "error")
	cfg, err := Load()
	req.NoError(err)
	got := cfg.LoggerConfig(base, "")
	req.Equal("error", got.Level)
	req.Equal(base.FilePath, got.FilePath)
}

func TestLoadLoggerConfig(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()

	cfg, err := LoadLoggerConfig(filepath.Join(dir, "absent.json"))
	req.NoError(err)
	req.Equal("info", cfg.Level)

	path := filepath.Join(dir, "logger_config.json")
	req.NoError(os.WriteFile(path, []byte(`{"level":"debug","log_to_json":false,"max_size":3}`), 0o600))
	cfg, err = LoadLoggerConfig(path)
	req.NoError(err)
	req.Equal("debug", cfg.Level)
	req.False(cfg.LogToJSON)
	req.Equal(3, cfg.MaxSize)
	req.Equal(5, cfg.MaxBackups)

	req.NoError(os.WriteFile(path, []byte(`{"level":`), 0o600))
	_, err = LoadLoggerConfig(path)
	req.Error(err)
}
