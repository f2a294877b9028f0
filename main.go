package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/kcz17/timingsummary/collector"
	"github.com/kcz17/timingsummary/config"
	"github.com/kcz17/timingsummary/reporting"
	"github.com/kcz17/timingsummary/stats"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
)

const influxDBWriteTimeout = 10 * time.Second

func main() {
	flags := config.NewFlagSet(os.Args[0])
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		log.Fatalf("error parsing flags: %s", err)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		log.Fatalf("unable to load config: %s", err)
	}
	if err := configureLogging(cfg.Logging); err != nil {
		log.Fatalf("unable to configure logging: %s", err)
	}

	if err := run(cfg, afero.NewOsFs(), os.Stdout); err != nil {
		log.Fatal(describeError(cfg, err))
	}
}

func configureLogging(cfg config.Logging) error {
	if cfg.JSON {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{
			DisableColors: true,
			FullTimestamp: true,
		})
	}

	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	return nil
}

// run collects durations under the configured root and writes the summary to
// out.
func run(cfg *config.Config, fs afero.Fs, out io.Writer) error {
	durations, err := collector.New(fs, cfg.Extension).Collect(cfg.RootDir)
	if err != nil {
		return err
	}

	summary, err := stats.Summarize(durations, cfg.Percentiles)
	if err != nil {
		return err
	}

	if err := newReporter(cfg, out).Report(context.Background(), summary); err != nil {
		return err
	}

	if cfg.Histogram.Enabled {
		hist, err := stats.Histogram(durations, cfg.Histogram.Bins)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(out, "\n%s", hist); err != nil {
			return fmt.Errorf("unable to write histogram: %w", err)
		}
	}

	if cfg.Histogram.PlotPath != "" {
		if err := stats.PlotHistogram(durations, cfg.Histogram.Bins, cfg.Histogram.PlotPath); err != nil {
			return err
		}
		log.WithField("path", cfg.Histogram.PlotPath).Info("saved histogram plot")
	}

	return nil
}

func newReporter(cfg *config.Config, out io.Writer) reporting.Reporter {
	stdout := reporting.NewStdoutReporter(out)
	if cfg.Reporting.Driver != "influxdb" {
		return stdout
	}

	influxDB := reporting.NewInfluxDBReporter(
		cfg.Reporting.InfluxDBHost,
		cfg.Reporting.InfluxDBToken,
		cfg.Reporting.InfluxDBOrg,
		cfg.Reporting.InfluxDBBucket,
		cfg.Reporting.InfluxDBMeasurement,
		map[string]string{"root_dir": cfg.RootDir},
	)
	return reporting.NewMultiReporter(stdout, reporting.NewTimeoutReporter(influxDB, influxDBWriteTimeout))
}

func describeError(cfg *config.Config, err error) string {
	var accessErr *collector.FileAccessError
	switch {
	case errors.Is(err, stats.ErrEmptyResultSet):
		return fmt.Sprintf("no timing lines matching \"real\\t<M>m<S>s\" were found in %s files under %s; "+
			"check the directory and the file extension", cfg.Extension, cfg.RootDir)
	case errors.As(err, &accessErr):
		return fmt.Sprintf("unable to read %s: %s", accessErr.Path, accessErr.Err)
	default:
		return err.Error()
	}
}
