package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	LogLevel         string `json:"log_level"`
	LogFormat        string `json:"log_format"`
	DatabaseDriver   string `json:"database_driver"`
	DatabaseURL      string `json:"database_url"`
	DatabaseName     string `json:"database_name"`
	DatabaseUser     string `json:"database_user"`
	DatabaseHost     string `json:"database_host"`
	DatabasePassword string `json:"database_password"`
	SlackWebhookURL  string `json:"slack_webhook_url"`
	Addr             string `json:"addr"`
}

// envVars maps environment variables to the configuration keys they override.
var envVars = map[string]string{
	"LOG_LEVEL":         "log_level",
	"LOG_FORMAT":        "log_format",
	"DATABASE_DRIVER":   "database_driver",
	"DATABASE_URL":      "database_url",
	"DATABASE_NAME":     "database_name",
	"DATABASE_USER":     "database_user",
	"DATABASE_HOST":     "database_host",
	"DATABASE_PASSWORD": "database_password",
	"SLACK_WEBHOOK_URL": "slack_webhook_url",
	"ADDR":              "addr",
}

func DefaultConfig() *Config {
	return &Config{
		LogLevel:         "info",
		LogFormat:        "json",
		DatabaseDriver:   "postgres",
		DatabaseName:     "qanda",
		DatabaseUser:     "postgres",
		DatabasePassword: "postgres",
		DatabaseHost:     "127.0.0.1",
		Addr:             "localhost:4000",
	}
}

// Load reads the configuration from, in increasing order of precedence, the config.json file
// and the environment. Variables defined in a .env file are added to the environment first,
// without overriding existing ones.
func (c *Config) Load() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	err = c.LoadFile("config.json")
	if err != nil {
		return err
	}

	return c.LoadEnv(os.LookupEnv)
}

// LoadFile decodes the JSON file at path onto the configuration. A missing file is ignored.
func (c *Config) LoadFile(path string) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	return json.NewDecoder(f).Decode(c)
}

// LoadEnv overrides the configuration with non empty variables returned by lookup.
func (c *Config) LoadEnv(lookup func(string) (string, bool)) error {
	values := map[string]interface{}{}
	for name, key := range envVars {
		if v, ok := lookup(name); ok && v != "" {
			values[key] = v
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           c,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(values)
}

// DSN returns the connection string of the database: DatabaseURL if set, or one built from
// the individual settings otherwise.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}

	return fmt.Sprintf(
		"user=%v dbname=%v sslmode=disable password=%v host=%v",
		c.DatabaseUser,
		c.DatabaseName,
		c.DatabasePassword,
		c.DatabaseHost,
	)
}

func SetupLogger(cfg *Config) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Str("input", cfg.LogLevel).Msg("Cannot parse log level")
	}
	zerolog.SetGlobalLevel(level)

	if cfg.LogFormat == "" || cfg.LogFormat == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		return zerolog.New(output).With().Timestamp().Logger()
	}
}
