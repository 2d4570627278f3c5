package config

import (
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/statsreport/internal/report"
)

func intPtr(v int) *int { return &v }

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func load(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	fs := flag.NewFlagSet("stats-report", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	f := RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return f.Load()
}

func noDotEnv(t *testing.T) {
	t.Helper()
	prev := DotEnvFile
	DotEnvFile = filepath.Join(t.TempDir(), "absent.env")
	t.Cleanup(func() { DotEnvFile = prev })
}

func TestLoad_Defaults(t *testing.T) {
	noDotEnv(t)

	cfg, err := load(t)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, FormatCSV, cfg.Format)
	assert.Nil(t, cfg.TargetCRS)
	require.NoError(t, cfg.Validate())
}

func TestLoad_Precedence(t *testing.T) {
	noDotEnv(t)
	path := writeFile(t, "report.json", `{
  "enable_geolocation": true,
  "target_crs": 32617,
  "metadata_dir": "/from/file",
  "output": "file.csv"
}`)
	t.Setenv("STATS_REPORT_METADATA_DIR", "/from/env")
	t.Setenv("STATS_REPORT_OUTPUT", "env.csv")

	cfg, err := load(t, "-config", path, "-output", "flag.csv")
	require.NoError(t, err)

	assert.True(t, cfg.EnableGeolocation, "file value kept")
	assert.Equal(t, intPtr(32617), cfg.TargetCRS, "file value kept")
	assert.Equal(t, "/from/env", cfg.MetadataDir, "env overrides file")
	assert.Equal(t, "flag.csv", cfg.Output, "flag overrides env")
}

func TestLoad_UnsetFlagsDoNotOverride(t *testing.T) {
	noDotEnv(t)
	t.Setenv("STATS_REPORT_FORMAT", "xlsx")
	t.Setenv("STATS_REPORT_VERBOSE", "true")

	cfg, err := load(t, "-output", "out.xlsx")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, cfg.Format)
	assert.True(t, cfg.Verbose)
}

func TestLoad_TargetCRSFlag(t *testing.T) {
	noDotEnv(t)

	cfg, err := load(t, "-enable-geolocation", "-target-crs", "EPSG:32633")
	require.NoError(t, err)
	assert.Equal(t, intPtr(32633), cfg.TargetCRS)

	cfg, err = load(t, "-target-crs", "4326")
	require.NoError(t, err)
	assert.Equal(t, intPtr(4326), cfg.TargetCRS)

	fs := flag.NewFlagSet("stats-report", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	RegisterFlags(fs)
	assert.Error(t, fs.Parse([]string{"-target-crs", "utm"}))
}

func TestLoad_EnvTargetCRS(t *testing.T) {
	noDotEnv(t)
	t.Setenv("STATS_REPORT_ENABLE_GEOLOCATION", "true")
	t.Setenv("STATS_REPORT_TARGET_CRS", "3857")

	cfg, err := load(t)
	require.NoError(t, err)
	assert.True(t, cfg.EnableGeolocation)
	assert.Equal(t, intPtr(3857), cfg.TargetCRS)

	t.Setenv("STATS_REPORT_TARGET_CRS", "web-mercator")
	_, err = load(t)
	assert.True(t, errors.Is(err, report.ErrConfiguration))
}

func TestApplyEnv_IgnoresUnprefixedNames(t *testing.T) {
	noDotEnv(t)
	for name, value := range map[string]string{
		"OUTPUT":             "/tmp/somewhere.csv",
		"ENABLE_GEOLOCATION": "true",
		"FORMAT":             "xlsx",
		"PLOT":               "means.png",
		"SQLITE":             "report.db",
		"VERBOSE":            "true",
		"TARGET_CRS":         "32617",
		"METADATA_DIR":       "/exif",
	} {
		t.Setenv(name, value)
	}

	cfg := Default()
	require.NoError(t, ApplyEnv(cfg))
	assert.Equal(t, Default(), cfg)
}

func TestApplyEnv_PrefixedKeys(t *testing.T) {
	noDotEnv(t)
	t.Setenv("STATS_REPORT_SQLITE", "report.db")
	t.Setenv("STATS_REPORT_METADATA_DIR", "/exif")
	t.Setenv("STATS_REPORT_OUTPUT", "out.csv")

	cfg := Default()
	require.NoError(t, ApplyEnv(cfg))
	assert.Equal(t, "report.db", cfg.Sqlite)
	assert.Equal(t, "/exif", cfg.MetadataDir)
	assert.Equal(t, "out.csv", cfg.Output)
	assert.Equal(t, FormatCSV, cfg.Format)
}

func TestLoad_DotEnv(t *testing.T) {
	DotEnvFile = writeFile(t, ".env", "STATS_REPORT_PLOT=means.png\n")
	t.Cleanup(func() {
		DotEnvFile = ".env"
		os.Unsetenv("STATS_REPORT_PLOT")
	})

	cfg, err := load(t)
	require.NoError(t, err)
	assert.Equal(t, "means.png", cfg.Plot)
}

func TestLoadFile_Errors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{"missing", func(t *testing.T) string { return "/nonexistent/path/to/report.json" }},
		{"wrong extension", func(t *testing.T) string { return writeFile(t, "report.yaml", "{}") }},
		{"invalid json", func(t *testing.T) string { return writeFile(t, "report.json", `{"format": `) }},
		{"unknown key", func(t *testing.T) string { return writeFile(t, "report.json", `{"colour": "red"}`) }},
		{"wrong type", func(t *testing.T) string { return writeFile(t, "report.json", `{"target_crs": "32617"}`) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := LoadFile(tt.path(t), Default())
			require.Error(t, err)
			assert.True(t, errors.Is(err, report.ErrConfiguration))
		})
	}
}

func TestLoadFile_Partial(t *testing.T) {
	cfg := Default()
	cfg.Output = "keep.csv"
	require.NoError(t, LoadFile(writeFile(t, "report.json", `{"verbose": true}`), cfg))

	assert.True(t, cfg.Verbose)
	assert.Equal(t, "keep.csv", cfg.Output)
	assert.Equal(t, FormatCSV, cfg.Format)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "defaults", cfg: *Default()},
		{name: "xlsx with output", cfg: Config{Format: FormatXLSX, Output: "r.xlsx"}},
		{name: "geo with crs", cfg: Config{Format: FormatCSV, EnableGeolocation: true, TargetCRS: intPtr(32617)}},
		{
			name:    "unknown format",
			cfg:     Config{Format: "json"},
			wantErr: `format must be one of [csv xlsx], got "json"`,
		},
		{
			name:    "xlsx to stdout",
			cfg:     Config{Format: FormatXLSX},
			wantErr: "output is required when format is xlsx",
		},
		{
			name:    "non-positive crs",
			cfg:     Config{Format: FormatCSV, EnableGeolocation: true, TargetCRS: intPtr(0)},
			wantErr: "target_crs must be greater than 0",
		},
		{
			name:    "crs without geolocation",
			cfg:     Config{Format: FormatCSV, TargetCRS: intPtr(32617)},
			wantErr: "requires geolocation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, report.ErrConfiguration))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestReportConfig(t *testing.T) {
	cfg := Config{EnableGeolocation: true, TargetCRS: intPtr(32617)}
	rc := cfg.ReportConfig()
	assert.True(t, rc.IncludeGeo)
	assert.True(t, rc.Projected())
	assert.Equal(t, 32617, *rc.TargetCRS)
}
