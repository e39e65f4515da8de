// Package config loads service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full set of service settings.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	SeedData        bool
	RedisAddr       string
	RunLogDBPath    string
	OTLPEndpoint    string
	ServiceName     string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

const (
	keyHTTPAddr        = "HTTP_ADDR"
	keyLogLevel        = "LOG_LEVEL"
	keySeedData        = "SEED_DATA"
	keyRedisAddr       = "REDIS_ADDR"
	keyRunLogDBPath    = "RUNLOG_DB_PATH"
	keyOTLPEndpoint    = "OTEL_EXPORTER_OTLP_ENDPOINT"
	keyServiceName     = "OTEL_SERVICE_NAME"
	keyAllowedOrigins  = "CORS_ALLOWED_ORIGINS"
	keyShutdownTimeout = "SHUTDOWN_TIMEOUT"
)

// Load reads envFile (if it exists) into the process environment and then
// resolves every setting from the environment, falling back to defaults.
// An empty envFile skips the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.SetDefault(keyHTTPAddr, ":5000")
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keySeedData, true)
	v.SetDefault(keyRedisAddr, "")
	v.SetDefault(keyRunLogDBPath, "")
	v.SetDefault(keyOTLPEndpoint, "")
	v.SetDefault(keyServiceName, "grubdash")
	v.SetDefault(keyAllowedOrigins, "*")
	v.SetDefault(keyShutdownTimeout, "5s")
	v.AutomaticEnv()

	timeout, err := time.ParseDuration(v.GetString(keyShutdownTimeout))
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", keyShutdownTimeout, err)
	}

	cfg := Config{
		HTTPAddr:        v.GetString(keyHTTPAddr),
		LogLevel:        v.GetString(keyLogLevel),
		SeedData:        v.GetBool(keySeedData),
		RedisAddr:       v.GetString(keyRedisAddr),
		RunLogDBPath:    v.GetString(keyRunLogDBPath),
		OTLPEndpoint:    v.GetString(keyOTLPEndpoint),
		ServiceName:     v.GetString(keyServiceName),
		AllowedOrigins:  splitList(v.GetString(keyAllowedOrigins)),
		ShutdownTimeout: timeout,
	}
	if cfg.HTTPAddr == "" {
		return Config{}, fmt.Errorf("config: %s must not be empty", keyHTTPAddr)
	}
	return cfg, nil
}

// splitList parses a comma separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
