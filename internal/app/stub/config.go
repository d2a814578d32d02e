package stub

import (
	"fmt"
	"time"

	platformconfig "github.com/Apurer/petstore-api-tests/internal/platform/config"
)

// Config carries environment-driven settings for the stub process.
type Config struct {
	Port            int           `env:"PORT" envDefault:"8080" validate:"gt=0,lte=65535"`
	PostgresDSN     string        `env:"POSTGRES_DSN"`
	BasePath        string        `env:"BASE_PATH" envDefault:"/v2"`
	UploadField     string        `env:"UPLOAD_FIELD" envDefault:"file" validate:"required"`
	MaxUploadBytes  int64         `env:"MAX_UPLOAD_BYTES" envDefault:"8388608" validate:"gt=0"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s" validate:"gt=0"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"local"`
}

// LoadConfig reads environment variables, applies defaults, and validates them.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := platformconfig.Load(&cfg); err != nil {
		return Config{}, fmt.Errorf("load stub config: %w", err)
	}
	return cfg, nil
}

// Addr is the listen address derived from Port.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
