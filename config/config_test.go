package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	flags := NewFlagSet("timingsummary")
	require.NoError(t, flags.Parse(args))
	return Load(flags)
}

func setenv(t *testing.T, key, value string) {
	t.Helper()
	require.NoError(t, os.Setenv(key, value))
	t.Cleanup(func() { os.Unsetenv(key) })
}

func TestLoad_Defaults(t *testing.T) {
	config, err := load(t)
	require.NoError(t, err)

	assert.Equal(t, "tmp", config.RootDir)
	assert.Equal(t, ".txt", config.Extension)
	assert.Equal(t, []float64{0, 50, 75, 90, 98, 100}, config.Percentiles)
	assert.False(t, config.Histogram.Enabled)
	assert.Equal(t, 10, config.Histogram.Bins)
	assert.Equal(t, "stdout", config.Reporting.Driver)
	assert.Equal(t, "timing_summary", config.Reporting.InfluxDBMeasurement)
	assert.Equal(t, "info", config.Logging.Level)
}

func TestLoad_Flags(t *testing.T) {
	config, err := load(t,
		"--extension", ".log",
		"-p", "50,99.9",
		"--histogram",
		"--histogram-bins", "4",
		"--plot", "out.png",
		"--log-level", "debug",
		"benchmarks",
	)
	require.NoError(t, err)

	assert.Equal(t, "benchmarks", config.RootDir)
	assert.Equal(t, ".log", config.Extension)
	assert.Equal(t, []float64{50, 99.9}, config.Percentiles)
	assert.True(t, config.Histogram.Enabled)
	assert.Equal(t, 4, config.Histogram.Bins)
	assert.Equal(t, "out.png", config.Histogram.PlotPath)
	assert.Equal(t, "debug", config.Logging.Level)
}

func TestLoad_RootDirFlag(t *testing.T) {
	config, err := load(t, "-d", "runs")
	require.NoError(t, err)
	assert.Equal(t, "runs", config.RootDir)
}

func TestLoad_Env(t *testing.T) {
	setenv(t, "TIMINGSUMMARY_ROOTDIR", "from-env")
	setenv(t, "TIMINGSUMMARY_PERCENTILES", "p90,p95")
	setenv(t, "TIMINGSUMMARY_REPORTING_DRIVER", "influxdb")
	setenv(t, "TIMINGSUMMARY_REPORTING_INFLUXDBHOST", "http://localhost:8086")
	setenv(t, "TIMINGSUMMARY_REPORTING_INFLUXDBTOKEN", "token")
	setenv(t, "TIMINGSUMMARY_REPORTING_INFLUXDBORG", "org")
	setenv(t, "TIMINGSUMMARY_REPORTING_INFLUXDBBUCKET", "bucket")

	config, err := load(t)
	require.NoError(t, err)

	assert.Equal(t, "from-env", config.RootDir)
	assert.Equal(t, []float64{90, 95}, config.Percentiles)
	assert.Equal(t, "influxdb", config.Reporting.Driver)
	assert.Equal(t, "http://localhost:8086", config.Reporting.InfluxDBHost)
	assert.Equal(t, "bucket", config.Reporting.InfluxDBBucket)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	setenv(t, "TIMINGSUMMARY_EXTENSION", ".env")

	config, err := load(t, "-e", ".flag")
	require.NoError(t, err)
	assert.Equal(t, ".flag", config.Extension)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timingsummary.yaml")
	contents := `
rootDir: results
percentiles: [25, 50, 99.5]
histogram:
  enabled: true
  bins: 20
logging:
  json: true
`
	require.NoError(t, ioutil.WriteFile(path, []byte(contents), 0644))

	config, err := load(t, "--config", path)
	require.NoError(t, err)

	assert.Equal(t, "results", config.RootDir)
	assert.Equal(t, []float64{25, 50, 99.5}, config.Percentiles)
	assert.True(t, config.Histogram.Enabled)
	assert.Equal(t, 20, config.Histogram.Bins)
	assert.True(t, config.Logging.JSON)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := load(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "Rank above 100", args: []string{"-p", "50,101"}},
		{name: "Negative rank", args: []string{"--percentiles=-1"}},
		{name: "Unparseable rank", args: []string{"-p", "median"}},
		{name: "No ranks", args: []string{"-p", ""}},
		{name: "Empty extension", args: []string{"-e", ""}},
		{name: "Unknown reporter", args: []string{"--reporter", "graphite"}},
		{name: "InfluxDB without host", args: []string{"--reporter", "influxdb"}},
		{name: "Zero histogram bins", args: []string{"--histogram-bins", "0"}},
		{name: "Unknown log level", args: []string{"--log-level", "verbose"}},
		{name: "Two root directories", args: []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(t, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestParsePercentiles(t *testing.T) {
	ranks, err := parsePercentiles([]string{"0, 50", "P75", "p99.9", ""})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 50, 75, 99.9}, ranks)
}
