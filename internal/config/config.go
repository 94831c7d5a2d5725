package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "github.com/vinotumich/FIN427/internal/errors"
)

// EnvPrefix namespaces every environment variable read by Load (FIN427_*)
const EnvPrefix = "FIN427"

// Config represents the complete application configuration
type Config struct {
	Logging       LoggingConfig       `yaml:"logging" envconfig:"LOGGING"`
	Paths         PathsConfig         `yaml:"paths" envconfig:"PATHS"`
	Processing    ProcessingConfig    `yaml:"processing" envconfig:"PROCESSING"`
	Report        ReportConfig        `yaml:"report" envconfig:"REPORT"`
	Observability ObservabilityConfig `yaml:"observability" envconfig:"OBSERVABILITY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// PathsConfig contains file system paths for one run
type PathsConfig struct {
	// Input is the raw panel, .csv or .xlsx
	Input string `yaml:"input" envconfig:"INPUT"`
	// Output is the cleaned panel CSV; removed before each clean run
	Output string `yaml:"output" envconfig:"OUTPUT"`
	// StatsDir receives descriptive/missing-value tables; defaults to Output's dir
	StatsDir string `yaml:"stats_dir" envconfig:"STATS_DIR"`
}

// ProcessingConfig controls the streaming transform
type ProcessingConfig struct {
	ChunkSize   int      `yaml:"chunk_size" envconfig:"CHUNK_SIZE" validate:"min=1"`
	TailPolicy  string   `yaml:"tail_policy" envconfig:"TAIL_POLICY" validate:"oneof=degrade strict"`
	EntityCol   string   `yaml:"entity_column" envconfig:"ENTITY_COLUMN" validate:"required"`
	DateCol     string   `yaml:"date_column" envconfig:"DATE_COLUMN" validate:"required"`
	MarkerCol   string   `yaml:"marker_column" envconfig:"MARKER_COLUMN" validate:"required"`
	ValueCol    string   `yaml:"value_column" envconfig:"VALUE_COLUMN" validate:"required"`
	Passthrough []string `yaml:"passthrough" envconfig:"PASSTHROUGH" validate:"dive,required"`
	Sheet       string   `yaml:"sheet" envconfig:"SHEET"`
}

// ReportConfig controls the descriptive statistics tables
type ReportConfig struct {
	// Column limits describe to one column; empty describes every numeric one
	Column          string    `yaml:"column" envconfig:"COLUMN"`
	Percentiles     []float64 `yaml:"percentiles" envconfig:"PERCENTILES" validate:"dive,gt=0,lt=100"`
	MinObservations int       `yaml:"min_observations" envconfig:"MIN_OBSERVATIONS" validate:"min=0"`
	Excel           bool      `yaml:"excel" envconfig:"EXCEL"`
}

// ObservabilityConfig controls tracing and metrics output
type ObservabilityConfig struct {
	// TraceFile receives stdout-exporter spans; empty disables tracing
	TraceFile string `yaml:"trace_file" envconfig:"TRACE_FILE"`
	// MetricsFile receives a Prometheus textfile dump; empty disables metrics
	MetricsFile string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/panelclean.log",
		},
		Processing: ProcessingConfig{
			ChunkSize:   300_000,
			TailPolicy:  "degrade",
			EntityCol:   "PERMNO",
			DateCol:     "date",
			MarkerCol:   "TICKER",
			ValueCol:    "SHROUT",
			Passthrough: []string{"TICKER", "COMNAM", "PERMCO", "CUSIP", "NWPERM"},
		},
		Report: ReportConfig{
			Percentiles:     []float64{1, 5, 12.5, 25, 50, 87.5, 95, 99},
			MinObservations: 100,
			Excel:           true,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// FIN427_* environment variables, in increasing precedence. An empty
// configFile falls back to the FIN427_CONFIG variable and then to the first
// existing well-known location.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile == "" {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config from file", err).
				WithContext("file", configFile)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg; keys absent from the file keep
// their current value
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if p := os.Getenv(EnvPrefix + "_CONFIG"); p != "" {
		return p
	}

	locations := []string{
		"panelclean.yaml",
		"configs/panelclean.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Validate checks struct constraints and the cross-field rules validator
// tags cannot express
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return apperrors.NewConfigError("config validation failed", err)
	}

	p := c.Processing
	required := map[string]string{
		"entity_column": p.EntityCol,
		"date_column":   p.DateCol,
		"value_column":  p.ValueCol,
	}
	for _, col := range p.Passthrough {
		for key, name := range required {
			if strings.EqualFold(col, name) {
				return apperrors.NewConfigError(
					fmt.Sprintf("passthrough column %q duplicates %s", col, key), nil)
			}
		}
	}
	return nil
}

// StatsDir returns the directory for report tables
func (c *Config) StatsDir() string {
	if c.Paths.StatsDir != "" {
		return c.Paths.StatsDir
	}
	if c.Paths.Output != "" {
		return filepath.Dir(c.Paths.Output)
	}
	return "."
}
