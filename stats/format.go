package stats

import (
	"fmt"
	"math"
	"strconv"
)

// FormatSeconds renders seconds as "<minutes>m <seconds>s". The value is
// rounded to the nearest millisecond before it is split into minutes and
// seconds, so a value within half a millisecond below a minute boundary rounds
// up into the next minute: 59.9999 renders as "1m 0s", not "0m 59.9999s".
// Interpolated percentiles keep their fraction without float noise and whole
// values have no fractional part.
func FormatSeconds(v float64) string {
	v = roundMillis(v)
	minutes := math.Floor(v / 60)
	seconds := roundMillis(v - minutes*60)

	return fmt.Sprintf("%dm %ss", int64(minutes), strconv.FormatFloat(seconds, 'f', -1, 64))
}

// FormatRank renders a percentile rank as a label, e.g. "P50" or "P99.9".
func FormatRank(rank float64) string {
	return "P" + strconv.FormatFloat(rank, 'f', -1, 64)
}

func roundMillis(v float64) float64 {
	return math.Round(v*1000) / 1000
}
