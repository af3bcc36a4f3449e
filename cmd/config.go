package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"custody/internal/pkg/errs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Ledger drivers selectable with LEDGER_DRIVER.
const (
	LedgerDriverMemory   = "memory"
	LedgerDriverPostgres = "postgres"
)

type Config struct {
	HTTPPort   string `env:"HTTP_PORT"  envDefault:"8080"`
	DBHost     string `env:"DB_HOST"    envDefault:"localhost"`
	DBPort     string `env:"DB_PORT"    envDefault:"5432"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME"`
	DBSslMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	LedgerDriver          string        `env:"LEDGER_DRIVER"           envDefault:"postgres"`
	LedgerTimeout         time.Duration `env:"LEDGER_TIMEOUT"          envDefault:"10s"`
	ProjectionSyncTimeout time.Duration `env:"PROJECTION_SYNC_TIMEOUT" envDefault:"10s"`
	ResyncSchedule        string        `env:"RESYNC_SCHEDULE"         envDefault:"0 * * * * *"`
	ResyncPageSize        int           `env:"RESYNC_PAGE_SIZE"        envDefault:"100"`
	ResyncConcurrency     int           `env:"RESYNC_CONCURRENCY"      envDefault:"8"`

	KafkaEnabled           bool   `env:"KAFKA_ENABLED"             envDefault:"false"`
	KafkaHost              string `env:"KAFKA_HOST"`
	KafkaOrderChangedTopic string `env:"KAFKA_ORDER_CHANGED_TOPIC" envDefault:"order.changed"`
}

// LoadConfig reads the optional .env file at path into the process environment
// and parses the configuration from it. Variables already set win over the file.
func LoadConfig(path string) (Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings that have no safe default.
func (c Config) Validate() error {
	var problems []error
	if c.LedgerDriver != LedgerDriverMemory && c.LedgerDriver != LedgerDriverPostgres {
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause("LEDGER_DRIVER",
			fmt.Errorf("want %q or %q, got %q", LedgerDriverMemory, LedgerDriverPostgres, c.LedgerDriver)))
	}
	if c.KafkaEnabled && c.KafkaHost == "" {
		problems = append(problems, errs.NewValueIsRequiredError("KAFKA_HOST"))
	}
	if c.ResyncPageSize < 0 {
		problems = append(problems, errs.NewValueIsOutOfRangeError("RESYNC_PAGE_SIZE", c.ResyncPageSize, 0, nil))
	}
	if c.ResyncConcurrency < 0 {
		problems = append(problems, errs.NewValueIsOutOfRangeError("RESYNC_CONCURRENCY", c.ResyncConcurrency, 0, nil))
	}
	return errors.Join(problems...)
}

// DSN is the postgres connection string for the projection store and the
// postgres ledger.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}
