package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "TIMINGSUMMARY"

type Config struct {
	RootDir   string    `mapstructure:"rootDir" validate:"required"`
	Extension string    `mapstructure:"extension" validate:"required"`
	Histogram Histogram `mapstructure:"histogram"`
	Reporting Reporting `mapstructure:"reporting"`
	Logging   Logging   `mapstructure:"logging"`

	// RawPercentiles holds the ranks as read from flags, env or file. Each
	// entry may itself be a comma separated list.
	RawPercentiles []string `mapstructure:"percentiles"`
	// Percentiles is parsed from RawPercentiles.
	Percentiles []float64 `mapstructure:"-" validate:"min=1,dive,gte=0,lte=100"`
}

type Histogram struct {
	Enabled  bool   `mapstructure:"enabled"`
	Bins     int    `mapstructure:"bins" validate:"gte=1"`
	PlotPath string `mapstructure:"plotPath"`
}

type Reporting struct {
	Driver string `mapstructure:"driver" validate:"oneof=stdout influxdb"`
	// The InfluxDB settings are only needed by the influxdb driver.
	InfluxDBHost        string `mapstructure:"influxdbHost" validate:"required_if=Driver influxdb"`
	InfluxDBToken       string `mapstructure:"influxdbToken" validate:"required_if=Driver influxdb"`
	InfluxDBOrg         string `mapstructure:"influxdbOrg" validate:"required_if=Driver influxdb"`
	InfluxDBBucket      string `mapstructure:"influxdbBucket" validate:"required_if=Driver influxdb"`
	InfluxDBMeasurement string `mapstructure:"influxdbMeasurement" validate:"required"`
}

type Logging struct {
	Level string `mapstructure:"level" validate:"oneof=panic fatal error warn warning info debug trace"`
	JSON  bool   `mapstructure:"json"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("rootDir", "tmp")
	v.SetDefault("extension", ".txt")
	v.SetDefault("percentiles", []string{"0", "50", "75", "90", "98", "100"})

	v.SetDefault("histogram.enabled", false)
	v.SetDefault("histogram.bins", 10)
	v.SetDefault("histogram.plotPath", "")

	v.SetDefault("reporting.driver", "stdout")
	v.SetDefault("reporting.influxdbHost", "")
	v.SetDefault("reporting.influxdbToken", "")
	v.SetDefault("reporting.influxdbOrg", "")
	v.SetDefault("reporting.influxdbBucket", "")
	v.SetDefault("reporting.influxdbMeasurement", "timing_summary")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.json", false)
}

// NewFlagSet declares the command line flags understood by Load.
func NewFlagSet(name string) *pflag.FlagSet {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.StringP("config", "c", "", "path to a YAML config file (default ./timingsummary.yaml if present)")
	flags.StringP("root-dir", "d", "tmp", "directory to scan for timing output")
	flags.StringP("extension", "e", ".txt", "only scan files with this suffix")
	flags.StringSliceP("percentiles", "p", []string{"0", "50", "75", "90", "98", "100"}, "percentile ranks to report")
	flags.Bool("histogram", false, "print a histogram of the durations")
	flags.Int("histogram-bins", 10, "number of histogram bins")
	flags.String("plot", "", "save a PNG histogram of the durations to this path")
	flags.String("reporter", "stdout", "summary reporter (stdout, influxdb)")
	flags.String("influxdb-host", "", "InfluxDB base URL")
	flags.String("influxdb-token", "", "InfluxDB auth token")
	flags.String("influxdb-org", "", "InfluxDB organisation")
	flags.String("influxdb-bucket", "", "InfluxDB bucket")
	flags.String("influxdb-measurement", "timing_summary", "InfluxDB measurement name")
	flags.String("log-level", "info", "log level")
	flags.Bool("log-json", false, "log using JSON")
	return flags
}

var flagKeys = map[string]string{
	"root-dir":             "rootDir",
	"extension":            "extension",
	"percentiles":          "percentiles",
	"histogram":            "histogram.enabled",
	"histogram-bins":       "histogram.bins",
	"plot":                 "histogram.plotPath",
	"reporter":             "reporting.driver",
	"influxdb-host":        "reporting.influxdbHost",
	"influxdb-token":       "reporting.influxdbToken",
	"influxdb-org":         "reporting.influxdbOrg",
	"influxdb-bucket":      "reporting.influxdbBucket",
	"influxdb-measurement": "reporting.influxdbMeasurement",
	"log-level":            "logging.level",
	"log-json":             "logging.json",
}

// Load reads the configuration from, in increasing order of precedence,
// defaults, a YAML config file, TIMINGSUMMARY_* environment variables and
// flags set on the already parsed flags. A positional argument overrides the
// root directory.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for name, key := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return nil, fmt.Errorf("unable to bind flag --%s: %w", name, err)
		}
	}
	if flags.NArg() > 1 {
		return nil, fmt.Errorf("expected at most one root directory argument; got %d", flags.NArg())
	}
	if flags.NArg() == 1 {
		v.Set("rootDir", flags.Arg(0))
	}

	v.SetConfigType("yaml")
	if path, _ := flags.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error when reading config file at %s: err = %w", path, err)
		}
	} else {
		v.SetConfigName("timingsummary")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			// The config file is optional unless explicitly given.
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error when reading config file: err = %w", err)
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error occurred while decoding configuration: err = %w", err)
	}

	percentiles, err := parsePercentiles(config.RawPercentiles)
	if err != nil {
		return nil, err
	}
	config.Percentiles = percentiles

	if err := validate(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

func parsePercentiles(raw []string) ([]float64, error) {
	var ranks []float64
	for _, entry := range raw {
		for _, field := range strings.Split(entry, ",") {
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			rank, err := strconv.ParseFloat(strings.TrimPrefix(strings.ToUpper(field), "P"), 64)
			if err != nil {
				return nil, fmt.Errorf("unable to parse percentile rank %q: %w", field, err)
			}
			ranks = append(ranks, rank)
		}
	}
	return ranks, nil
}

func validate(config *Config) error {
	err := validator.New().Struct(config)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fmt.Errorf("unable to validate config: err = %w", err)
	}

	msgs := make([]string, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		msgs = append(msgs, fieldErr.Error())
	}
	return fmt.Errorf("encountered validation errors:\n\t%s\ncheck your configuration and try again", strings.Join(msgs, "\n\t"))
}
