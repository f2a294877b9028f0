package stats

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const histogramBarWidth = 30

// HistogramBin counts the durations in [Lower, Upper). The last bin also
// includes its Upper bound, which is the largest duration.
type HistogramBin struct {
	Lower float64
	Upper float64
	Count int
}

// HistogramBins splits the range of durations into bins of equal width and
// counts the durations falling in each.
func HistogramBins(durations []Duration, bins int) ([]HistogramBin, error) {
	if len(durations) == 0 {
		return nil, ErrEmptyResultSet
	}
	if bins < 1 {
		return nil, fmt.Errorf("expected at least one histogram bin; got %d", bins)
	}

	sorted := toSeconds(durations)
	sort.Float64s(sorted)
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		hi = lo + 1
	}

	dividers := make([]float64, bins+1)
	floats.Span(dividers, lo, hi)
	// stat.Histogram excludes the last divider, so nudge it past the maximum.
	dividers[bins] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, sorted, nil)

	result := make([]HistogramBin, bins)
	for i := range result {
		result[i] = HistogramBin{
			Lower: dividers[i],
			Upper: dividers[i+1],
			Count: int(counts[i]),
		}
	}
	result[bins-1].Upper = hi
	return result, nil
}

// Histogram renders a text histogram of durations with the given number of
// bins, one line per bin with a bar scaled to the fullest bin.
func Histogram(durations []Duration, bins int) (string, error) {
	hist, err := HistogramBins(durations, bins)
	if err != nil {
		return "", err
	}

	maxCount := 0
	for _, bin := range hist {
		if bin.Count > maxCount {
			maxCount = bin.Count
		}
	}

	var b strings.Builder
	for _, bin := range hist {
		bar := strings.Repeat("-", bin.Count*histogramBarWidth/maxCount)
		fmt.Fprintf(&b, "%s - %s\t%s %d\n", FormatSeconds(bin.Lower), FormatSeconds(bin.Upper), bar, bin.Count)
	}
	return b.String(), nil
}

// PlotHistogram saves a PNG histogram of durations to path.
func PlotHistogram(durations []Duration, bins int, path string) error {
	if len(durations) == 0 {
		return ErrEmptyResultSet
	}

	p, err := plot.New()
	if err != nil {
		return fmt.Errorf("expected plot.New() returns nil err; got err = %w", err)
	}
	p.Title.Text = "Timing distribution"
	p.X.Label.Text = "Duration (s)"
	p.Y.Label.Text = "Instances"

	hist, err := plotter.NewHist(plotter.Values(toSeconds(durations)), bins)
	if err != nil {
		return fmt.Errorf("unable to build histogram: %w", err)
	}
	p.Add(hist)

	if err := p.Save(10*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("unable to save plot to %s: %w", path, err)
	}
	return nil
}
