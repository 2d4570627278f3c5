// Package config builds the stats-report runtime configuration from, in
// increasing precedence, built-in defaults, a JSON config file, the
// environment (including a .env file) and command-line flags.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/banshee-data/statsreport/internal/report"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "STATS_REPORT"

// Output formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// DotEnvFile is loaded into the environment, if present, before variables
// are read. Variables already set win over the file.
var DotEnvFile = ".env"

// Config is the effective stats-report configuration. Sqlite is spelled that
// way because split_words would derive SQ_LITE from SQLite.
type Config struct {
	EnableGeolocation bool   `json:"enable_geolocation" split_words:"true"`
	TargetCRS         *int   `json:"target_crs,omitempty" split_words:"true" validate:"omitempty,gt=0"`
	MetadataDir       string `json:"metadata_dir" split_words:"true"`
	Format            string `json:"format" validate:"oneof=csv xlsx"`
	Output            string `json:"output" validate:"required_if=Format xlsx"`
	Sqlite            string `json:"sqlite"`
	Plot              string `json:"plot"`
	Verbose           bool   `json:"verbose"`
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{Format: FormatCSV}
}

// Flags holds the command-line values registered by RegisterFlags.
type Flags struct {
	fs         *flag.FlagSet
	configPath string
	values     Config
}

// RegisterFlags defines the configuration flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	fs.StringVar(&f.configPath, "config", "", "path to a JSON config file")
	fs.BoolVar(&f.values.EnableGeolocation, "enable-geolocation", false, "add latitude/longitude columns from image metadata")
	fs.Func("target-crs", "EPSG code to project positions to (requires -enable-geolocation)", func(s string) error {
		code, err := strconv.Atoi(strings.TrimPrefix(strings.ToUpper(s), "EPSG:"))
		if err != nil {
			return fmt.Errorf("invalid EPSG code %q", s)
		}
		f.values.TargetCRS = &code
		return nil
	})
	fs.StringVar(&f.values.MetadataDir, "metadata-dir", "", "directory that relative metadata paths are resolved against")
	fs.StringVar(&f.values.Format, "format", FormatCSV, "output format: csv or xlsx")
	fs.StringVar(&f.values.Output, "output", "", "output file (default stdout; required for xlsx)")
	fs.StringVar(&f.values.Sqlite, "sqlite", "", "also store the report in this SQLite database")
	fs.StringVar(&f.values.Plot, "plot", "", "also render a PNG chart of per-image means to this file")
	fs.BoolVar(&f.values.Verbose, "verbose", false, "log per-record progress to stderr")
	return f
}

// Load layers the configuration sources. fs must already be parsed.
func (f *Flags) Load() (*Config, error) {
	cfg := Default()

	if f.configPath != "" {
		if err := LoadFile(f.configPath, cfg); err != nil {
			return nil, err
		}
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}

	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "enable-geolocation":
			cfg.EnableGeolocation = f.values.EnableGeolocation
		case "target-crs":
			cfg.TargetCRS = f.values.TargetCRS
		case "metadata-dir":
			cfg.MetadataDir = f.values.MetadataDir
		case "format":
			cfg.Format = f.values.Format
		case "output":
			cfg.Output = f.values.Output
		case "sqlite":
			cfg.Sqlite = f.values.Sqlite
		case "plot":
			cfg.Plot = f.values.Plot
		case "verbose":
			cfg.Verbose = f.values.Verbose
		}
	})
	return cfg, nil
}

// LoadFile overlays the JSON file at path onto cfg. Fields absent from the
// file keep their current values.
func LoadFile(path string, cfg *Config) error {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return fmt.Errorf("%w: config file must have .json extension, got %q", report.ErrConfiguration, ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return fmt.Errorf("%w: failed to stat config file: %w", report.ErrConfiguration, err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return fmt.Errorf("%w: config file too large: %d bytes (max %d)", report.ErrConfiguration, fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return fmt.Errorf("%w: failed to read config file: %w", report.ErrConfiguration, err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("%w: failed to parse config JSON: %w", report.ErrConfiguration, err)
	}
	return nil
}

// ApplyEnv overlays STATS_REPORT_* variables onto cfg, after loading
// DotEnvFile if it exists. Keys derive from the field names with no tag, so
// envconfig never falls back to the bare names (OUTPUT, FORMAT, ...).
func ApplyEnv(cfg *Config) error {
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: load %s: %w", report.ErrConfiguration, DotEnvFile, err)
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return fmt.Errorf("%w: failed to load config from env: %w", report.ErrConfiguration, err)
	}
	return nil
}

var configValidator = newConfigValidator()

func newConfigValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks field values and the report column options.
func (c *Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("%w: %w", report.ErrConfiguration, err)
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, describeField(fe))
		}
		return fmt.Errorf("%w: %s", report.ErrConfiguration, strings.Join(msgs, "; "))
	}
	return c.ReportConfig().Validate()
}

func describeField(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", fe.Field(), fe.Param(), fe.Value())
	case "required_if":
		return fmt.Sprintf("%s is required when %s", fe.Field(), strings.Replace(strings.ToLower(fe.Param()), " ", " is ", 1))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}

// ReportConfig returns the column options for the report assembler.
func (c *Config) ReportConfig() report.Config {
	return report.Config{
		IncludeGeo: c.EnableGeolocation,
		TargetCRS:  c.TargetCRS,
	}
}
