package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// Duration is a timing result in whole seconds.
type Duration int64

// Seconds returns the duration as a float for use with the stats libraries.
func (d Duration) Seconds() float64 {
	return float64(d)
}

func (d Duration) String() string {
	return FormatSeconds(d.Seconds())
}

var (
	// ErrEmptyResultSet is returned when statistics are requested over zero
	// durations.
	ErrEmptyResultSet = errors.New("empty result set")
	// ErrInvalidRank is returned for percentile ranks outside [0, 100].
	ErrInvalidRank = errors.New("percentile rank must be within [0, 100]")
)

// DefaultRanks are the percentile ranks reported when none are configured.
var DefaultRanks = []float64{0, 50, 75, 90, 98, 100}

type PercentileValue struct {
	Rank  float64 // Rank is the percentile rank in [0, 100].
	Value float64 // Value is in seconds and may be fractional.
}

// Summary is a snapshot of the statistics over one result set.
type Summary struct {
	Count       int
	Min         Duration
	Max         Duration
	Average     Duration // Average is the mean truncated to whole seconds.
	StdDev      float64  // StdDev is the sample standard deviation in seconds.
	Percentiles []PercentileValue
}

// Summarize computes a Summary over durations, reporting a percentile for
// each of ranks in the order given.
func Summarize(durations []Duration, ranks []float64) (*Summary, error) {
	if len(durations) == 0 {
		return nil, ErrEmptyResultSet
	}

	seconds := toSeconds(durations)

	min, err := stats.Min(seconds)
	if err != nil {
		return nil, fmt.Errorf("unexpected err while calculating min: %w", err)
	}
	max, err := stats.Max(seconds)
	if err != nil {
		return nil, fmt.Errorf("unexpected err while calculating max: %w", err)
	}

	// Summing integers keeps the truncated average exact for large sets.
	var total int64
	for _, d := range durations {
		total += int64(d)
	}

	summary := &Summary{
		Count:   len(durations),
		Min:     Duration(min),
		Max:     Duration(max),
		Average: Duration(total / int64(len(durations))),
	}

	// gonum divides by n-1, which is undefined for a single sample.
	if len(seconds) > 1 {
		summary.StdDev = stat.StdDev(seconds, nil)
	}

	sorted := make([]float64, len(seconds))
	copy(sorted, seconds)
	sort.Float64s(sorted)

	for _, rank := range ranks {
		v, err := percentileOfSorted(sorted, rank)
		if err != nil {
			return nil, fmt.Errorf("P%v: %w", rank, err)
		}
		summary.Percentiles = append(summary.Percentiles, PercentileValue{Rank: rank, Value: v})
	}

	return summary, nil
}

// Percentile returns the value at rank using linear interpolation between the
// two closest ranked durations. Rank 0 is the minimum and rank 100 the
// maximum.
func Percentile(durations []Duration, rank float64) (float64, error) {
	if len(durations) == 0 {
		return 0, ErrEmptyResultSet
	}

	sorted := toSeconds(durations)
	sort.Float64s(sorted)

	return percentileOfSorted(sorted, rank)
}

func percentileOfSorted(sorted []float64, rank float64) (float64, error) {
	if math.IsNaN(rank) || rank < 0 || rank > 100 {
		return 0, ErrInvalidRank
	}
	if len(sorted) == 0 {
		return 0, ErrEmptyResultSet
	}

	h := rank / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(h))
	hi := int(math.Ceil(h))
	if hi >= len(sorted) {
		hi = len(sorted) - 1
	}
	if lo == hi {
		return sorted[lo], nil
	}

	weight := h - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*weight, nil
}

func toSeconds(durations []Duration) []float64 {
	seconds := make([]float64, len(durations))
	for i, d := range durations {
		seconds[i] = d.Seconds()
	}
	return seconds
}
