package config

import (
	"errors"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when the configuration cannot be read or does not validate.
var ErrInvalidConfig = errors.New("invalid configuration")

const (
	DriverPGX  = "pgx"
	DriverSQL  = "sql"
	DriverSQLX = "sqlx"

	envDatabaseDSN       = "FILTER_DATABASE_DSN"
	envDatabaseDriver    = "FILTER_DATABASE_DRIVER"
	envAttributesTable   = "FILTER_ATTRIBUTES_TABLE"
	envSearchLimit       = "FILTER_ATTRIBUTES_SEARCH_LIMIT"
	envLogLevel          = "FILTER_LOG_LEVEL"
	envLogFormat         = "FILTER_LOG_FORMAT"
	envCatalogFile       = "FILTER_CATALOG_FILE"
	envObservability     = "FILTER_OBSERVABILITY_ENABLED"
	defaultServiceName   = "filterctl"
	defaultSearchTimeout = 5 * time.Second
)

// Config is the complete filterctl configuration.
type Config struct {
	Database      DatabaseConfig      `yaml:"database"`
	Attributes    AttributesConfig    `yaml:"attributes"`
	Query         QueryConfig         `yaml:"query"`
	Log           LogConfig           `yaml:"log"`
	Observability ObservabilityConfig `yaml:"observability"`
	CatalogFile   string              `yaml:"catalog_file"`
}

// DatabaseConfig describes the PostgreSQL connection. Pool settings apply to every driver.
type DatabaseConfig struct {
	Driver            string        `yaml:"driver" validate:"oneof=pgx sql sqlx"`
	DSN               string        `yaml:"dsn"`
	ReplicaDSN        string        `yaml:"replica_dsn"`
	MaxConns          int32         `yaml:"max_conns" validate:"gte=1"`
	MinConns          int32         `yaml:"min_conns" validate:"gte=0,ltefield=MaxConns"`
	MaxConnLifetime   time.Duration `yaml:"max_conn_lifetime" validate:"gte=0"`
	MaxConnIdleTime   time.Duration `yaml:"max_conn_idle_time" validate:"gte=0"`
	HealthCheckPeriod time.Duration `yaml:"health_check_period" validate:"gte=0"`
	ConnectTimeout    time.Duration `yaml:"connect_timeout" validate:"gte=0"`
}

// AttributesConfig configures the attribute store.
type AttributesConfig struct {
	Table         string        `yaml:"table" validate:"required"`
	SearchLimit   uint          `yaml:"search_limit" validate:"gte=1"`
	SearchTimeout time.Duration `yaml:"search_timeout" validate:"gt=0"`
}

// QueryConfig configures how filter rows are rendered as SQL.
type QueryConfig struct {
	ProductTable      string            `yaml:"product_table" validate:"required"`
	SelectColumns     []string          `yaml:"select_columns" validate:"min=1,dive,required"`
	AttributesColumn  string            `yaml:"attributes_column" validate:"required"`
	Columns           map[string]string `yaml:"columns" validate:"dive,keys,required,endkeys,required"`
	ConstraintColumns map[string]string `yaml:"constraint_columns" validate:"dive,keys,required,endkeys,required"`
}

// LogConfig configures the slog logger.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json text"`
}

// ObservabilityConfig switches the OpenTelemetry adapters on.
type ObservabilityConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name" validate:"required_if=Enabled true"`
}

// Default returns the configuration used when no file and no environment overrides are given.
func Default() Config {
	return Config{
		Database: DatabaseConfig{
			Driver:            DriverPGX,
			MaxConns:          8,
			MinConns:          2,
			MaxConnLifetime:   time.Hour,
			MaxConnIdleTime:   5 * time.Minute,
			HealthCheckPeriod: time.Minute,
			ConnectTimeout:    5 * time.Second,
		},
		Attributes: AttributesConfig{
			Table:         "attributes",
			SearchLimit:   50,
			SearchTimeout: defaultSearchTimeout,
		},
		Query: QueryConfig{
			ProductTable:     "products",
			SelectColumns:    []string{"id", "name"},
			AttributesColumn: "attributes",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Observability: ObservabilityConfig{
			ServiceName: defaultServiceName,
		},
	}
}

var configValidator = validator.New()

// Load reads the YAML file at path on top of Default, applies FILTER_* environment overrides and validates.
// An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return Config{}, errors.Join(ErrInvalidConfig, err)
		}
		defer f.Close()

		if err := decode(f, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the configuration against its constraints.
func (c Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return errors.Join(ErrInvalidConfig, err)
	}

	return nil
}

func decode(r io.Reader, cfg *Config) error {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return errors.Join(ErrInvalidConfig, err)
	}

	return nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	stringOverrides := map[string]*string{
		envDatabaseDSN:     &cfg.Database.DSN,
		envDatabaseDriver:  &cfg.Database.Driver,
		envAttributesTable: &cfg.Attributes.Table,
		envLogLevel:        &cfg.Log.Level,
		envLogFormat:       &cfg.Log.Format,
		envCatalogFile:     &cfg.CatalogFile,
	}

	for key, target := range stringOverrides {
		if value, ok := lookup(key); ok {
			*target = value
		}
	}

	if value, ok := lookup(envSearchLimit); ok {
		limit, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return errors.Join(ErrInvalidConfig, errors.New(envSearchLimit), err)
		}

		cfg.Attributes.SearchLimit = uint(limit)
	}

	if value, ok := lookup(envObservability); ok {
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return errors.Join(ErrInvalidConfig, errors.New(envObservability), err)
		}

		cfg.Observability.Enabled = enabled
	}

	return nil
}
