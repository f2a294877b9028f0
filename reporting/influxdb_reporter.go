package reporting

import (
	"context"
	"fmt"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/kcz17/timingsummary/stats"
)

// influxDBReporter writes the summary as a single point to an external
// InfluxDB instance.
type influxDBReporter struct {
	client      influxdb2.Client
	org         string
	bucket      string
	measurement string
	tags        map[string]string
}

func NewInfluxDBReporter(baseURL, authToken, org, bucket, measurement string, tags map[string]string) *influxDBReporter {
	return &influxDBReporter{
		client:      influxdb2.NewClient(baseURL, authToken),
		org:         org,
		bucket:      bucket,
		measurement: measurement,
		tags:        tags,
	}
}

func (r *influxDBReporter) Report(ctx context.Context, summary *stats.Summary) error {
	// A one-off batch run writes synchronously so that failures reach the
	// caller before the process exits.
	defer r.client.Close()

	p := influxdb2.NewPointWithMeasurement(r.measurement).
		AddField("count", summary.Count).
		AddField("min", int64(summary.Min)).
		AddField("max", int64(summary.Max)).
		AddField("average", int64(summary.Average)).
		AddField("stddev", summary.StdDev).
		SetTime(time.Now())
	for key, value := range r.tags {
		p.AddTag(key, value)
	}
	for _, percentile := range summary.Percentiles {
		p.AddField(percentileField(percentile.Rank), percentile.Value)
	}

	if err := r.client.WriteAPIBlocking(r.org, r.bucket).WritePoint(ctx, p); err != nil {
		return fmt.Errorf("influxdb2 write of summary failed: %w", err)
	}
	return nil
}

// percentileField names the field for a rank, e.g. "p50" or "p99_9".
func percentileField(rank float64) string {
	return strings.ReplaceAll(strings.ToLower(stats.FormatRank(rank)), ".", "_")
}
