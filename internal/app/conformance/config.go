package conformance

import (
	"fmt"
	"log/slog"
	"time"

	platformconfig "github.com/Apurer/petstore-api-tests/internal/platform/config"
)

// Config carries environment-driven settings for a conformance run.
type Config struct {
	BaseURI        string        `env:"PETSTORE_BASE_URI" validate:"required,url"`
	RequestTimeout time.Duration `env:"PETSTORE_REQUEST_TIMEOUT" envDefault:"30s" validate:"gt=0"`
	// FixtureSeed fixes the fixture id sequence. Zero seeds from the clock.
	FixtureSeed  uint64 `env:"PETSTORE_FIXTURE_SEED" envDefault:"0"`
	UploadField  string `env:"PETSTORE_UPLOAD_FIELD" envDefault:"file" validate:"required"`
	LogRequests  bool   `env:"PETSTORE_LOG_REQUESTS" envDefault:"false"`
	LogResponses bool   `env:"PETSTORE_LOG_RESPONSES" envDefault:"false"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	Environment  string `env:"ENVIRONMENT" envDefault:"local"`
}

// LoadConfig reads the environment, applies overrides in order and validates
// the result. Overrides let command-line flags win over the environment.
func LoadConfig(overrides ...func(*Config)) (Config, error) {
	var cfg Config
	if err := platformconfig.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("load conformance config: %w", err)
	}
	for _, override := range overrides {
		if override != nil {
			override(&cfg)
		}
	}
	if err := platformconfig.Validate(&cfg); err != nil {
		return Config{}, fmt.Errorf("load conformance config: %w", err)
	}
	return cfg, nil
}

func (c Config) logLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
