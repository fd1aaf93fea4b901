package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

const (
	ModeFold      = "fold"
	ModePipelined = "pipelined"

	SinkCSV      = "csv"
	SinkPostgres = "postgres"
	SinkRedis    = "redis"
)

type Config struct {
	Mode      string        `validate:"oneof=fold pipelined"`
	Buffer    int           `validate:"gte=1,lte=1000000"`
	LogLevel  string        `validate:"oneof=debug info warn error"`
	Sink      string        `validate:"oneof=csv postgres redis"`
	Port      string        `validate:"required,numeric"`
	JWTSecret string
	RedisTTL  time.Duration `validate:"gte=0"`
}

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string]string{
	"engine.mode":        "ENGINE_MODE",
	"engine.buffer":      "ENGINE_BUFFER",
	"log.level":          "LOG_LEVEL",
	"output.sink":        "OUTPUT_SINK",
	"server.port":        "PORT",
	"server.jwt_secret":  "JWT_SECRET_KEY",
	"database.host":      "DATABASE_HOST",
	"database.port":      "DATABASE_PORT",
	"database.user":      "DATABASE_USER",
	"database.password":  "DATABASE_PASSWORD",
	"database.name":      "DATABASE_NAME",
	"database.ssl_mode":  "DATABASE_SSL_MODE",
	"redis.host":         "REDIS_HOST",
	"redis.port":         "REDIS_PORT",
	"redis.password":     "REDIS_PASSWORD",
	"redis.db":           "REDIS_DB",
	"redis.snapshot_ttl": "REDIS_SNAPSHOT_TTL",
}

func setDefaults() {
	viper.SetDefault("engine.mode", ModeFold)
	viper.SetDefault("engine.buffer", 1024)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("output.sink", SinkCSV)
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.jwt_secret", "")
	viper.SetDefault("redis.snapshot_ttl", 24*time.Hour)
}

// Load reads an optional config file, applies environment overrides and
// validates the result. A missing file is not an error.
//
// A dotenv file (".env" extension) holds the same variable names as
// envBindings; its entries are exported into the process environment
// unless already set there, so real environment variables win. Any other
// file type is read by viper under the dotted keys.
func Load(envFile string) (*Config, error) {
	setDefaults()
	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if envFile != "" {
		if err := readFile(envFile); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		Mode:      strings.ToLower(viper.GetString("engine.mode")),
		Buffer:    viper.GetInt("engine.buffer"),
		LogLevel:  strings.ToLower(viper.GetString("log.level")),
		Sink:      strings.ToLower(viper.GetString("output.sink")),
		Port:      viper.GetString("server.port"),
		JWTSecret: viper.GetString("server.jwt_secret"),
		RedisTTL:  viper.GetDuration("redis.snapshot_ttl"),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func readFile(path string) error {
	if filepath.Ext(path) == ".env" {
		if err := gotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("read env file %s: %w", path, err)
		}
		return nil
	}

	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return nil
}
