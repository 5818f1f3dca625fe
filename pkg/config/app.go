package config

import (
	"fmt"
	"time"
)

// EnvPrefix prefixes every environment override, e.g. TODO_STORAGE_PATH.
const EnvPrefix = "TODO"

// Storage backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQL    = "sql"
)

// DefaultFilePath is where the file backend stores todos when no path is set.
const DefaultFilePath = "todos.json"

// Config is the configuration shared by the CLI and the HTTP API.
type Config struct {
	Storage StorageConfig `yaml:"storage" json:"storage"`
	HTTP    HTTPConfig    `yaml:"http" json:"http"`
	Log     LogConfig     `yaml:"log" json:"log"`
	Tracing TracingConfig `yaml:"tracing" json:"tracing"`
	Events  EventsConfig  `yaml:"events" json:"events"`
}

// StorageConfig selects and configures the repository backend.
type StorageConfig struct {
	Backend string `yaml:"backend" json:"backend"`

	// Path is the JSON file used by the file backend.
	Path string `yaml:"path" json:"path"`

	// Driver is one of sqlite3, postgres, pgx for the sql backend.
	Driver       string `yaml:"driver" json:"driver"`
	DSN          string `yaml:"dsn" json:"dsn"`
	MaxOpenConns int    `yaml:"max_open_conns" json:"max_open_conns" env:"MAX_OPEN_CONNS"`
	MaxIdleConns int    `yaml:"max_idle_conns" json:"max_idle_conns" env:"MAX_IDLE_CONNS"`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr            string   `yaml:"addr" json:"addr"`
	ReadTimeout     Duration `yaml:"read_timeout" json:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout    Duration `yaml:"write_timeout" json:"write_timeout" env:"WRITE_TIMEOUT"`
	IdleTimeout     Duration `yaml:"idle_timeout" json:"idle_timeout" env:"IDLE_TIMEOUT"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout" json:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	MaxBodySize     int      `yaml:"max_body_size" json:"max_body_size" env:"MAX_BODY_SIZE"`

	// RequestTimeout bounds the context handed to use cases; 0 disables it.
	RequestTimeout Duration `yaml:"request_timeout" json:"request_timeout" env:"REQUEST_TIMEOUT"`

	// MaxInFlight sheds requests beyond this many concurrent ones; 0 disables it.
	MaxInFlight int `yaml:"max_in_flight" json:"max_in_flight" env:"MAX_IN_FLIGHT"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// TracingConfig configures OpenTelemetry export. Exporter "none" disables it.
type TracingConfig struct {
	Exporter    string  `yaml:"exporter" json:"exporter"`
	ZipkinURL   string  `yaml:"zipkin_url" json:"zipkin_url" env:"ZIPKIN_URL"`
	ServiceName string  `yaml:"service_name" json:"service_name" env:"SERVICE_NAME"`
	SampleRatio float64 `yaml:"sample_ratio" json:"sample_ratio" env:"SAMPLE_RATIO"`
}

// EventsConfig configures change event publishing. An empty NATSURL disables it.
type EventsConfig struct {
	NATSURL       string `yaml:"nats_url" json:"nats_url" env:"NATS_URL"`
	SubjectPrefix string `yaml:"subject_prefix" json:"subject_prefix" env:"SUBJECT_PREFIX"`
}

// Enabled reports whether events should be published.
func (c EventsConfig) Enabled() bool {
	return c.NATSURL != ""
}

// Default returns a configuration that runs without any file or env.
func Default() Config {
	return Config{
		Storage: StorageConfig{
			Backend:      BackendFile,
			Path:         DefaultFilePath,
			Driver:       "sqlite3",
			MaxOpenConns: 25,
			MaxIdleConns: 5,
		},
		HTTP: HTTPConfig{
			Addr:            ":8000",
			ReadTimeout:     Duration(10 * time.Second),
			WriteTimeout:    Duration(10 * time.Second),
			IdleTimeout:     Duration(60 * time.Second),
			ShutdownTimeout: Duration(10 * time.Second),
			MaxBodySize:     1 << 20,
			RequestTimeout:  Duration(5 * time.Second),
			MaxInFlight:     1024,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Tracing: TracingConfig{
			Exporter:    "none",
			ServiceName: "todos",
			SampleRatio: 1,
		},
		Events: EventsConfig{
			SubjectPrefix: "todos",
		},
	}
}

// Validators returns the checks applied by LoadConfig.
func Validators() []Validator {
	return []Validator{
		OneOfValidator("Storage.Backend", BackendMemory, BackendFile, BackendSQL),
		When(backendIs(BackendFile), RequiredFields("Storage.Path")),
		When(backendIs(BackendSQL),
			RequiredFields("Storage.DSN"),
			OneOfValidator("Storage.Driver", "sqlite3", "postgres", "pgx"),
			RangeValidator("Storage.MaxOpenConns", 1, 1000),
		),
		RangeValidator("HTTP.MaxInFlight", 0, 1000000),
		OneOfValidator("Log.Format", "text", "json"),
		OneOfValidator("Log.Level", "debug", "info", "warn", "error"),
		OneOfValidator("Tracing.Exporter", "none", "stdout", "zipkin"),
		When(func(c interface{}) bool { return asConfig(c).Tracing.Exporter == "zipkin" },
			RequiredFields("Tracing.ZipkinURL"),
		),
		StringLengthValidator("Tracing.ServiceName", 1, 128),
		RangeValidator("Tracing.SampleRatio", 0, 1),
		When(func(c interface{}) bool { return asConfig(c).Events.Enabled() },
			StringLengthValidator("Events.SubjectPrefix", 1, 128),
		),
	}
}

// LoadConfig starts from Default, overlays path when non-empty, applies
// TODO_* environment overrides and validates the result.
func LoadConfig(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := Load(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to load config file: %w", err)
		}
	}
	if err := ApplyEnvOverrides(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to apply env overrides: %w", err)
	}
	if err := Validate(&cfg, Validators()...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func backendIs(backend string) func(interface{}) bool {
	return func(c interface{}) bool {
		return asConfig(c).Storage.Backend == backend
	}
}

func asConfig(c interface{}) Config {
	switch v := c.(type) {
	case *Config:
		return *v
	case Config:
		return v
	default:
		return Config{}
	}
}
