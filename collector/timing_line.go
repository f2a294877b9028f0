package collector

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/kcz17/timingsummary/stats"
)

// timingLinePattern matches the elapsed time line printed by the shell `time`
// keyword, e.g. "real\t1m2.345s".
var timingLinePattern = regexp.MustCompile(`^real\t(\d+)m(\d+(?:\.\d*)?)s$`)

// ErrDurationOutOfRange is returned for a timing line whose total does not fit
// in a Duration.
var ErrDurationOutOfRange = errors.New("timing line duration out of range")

// ParseLine extracts the elapsed wall-clock time from a timing line, with the
// fractional seconds truncated. Any other line, and a timing line whose total
// overflows a Duration, returns false.
func ParseLine(line string) (stats.Duration, bool) {
	d, matched, err := parseTimingLine(line)
	return d, matched && err == nil
}

// parseTimingLine reports whether line has the timing line shape and, if so,
// its duration or ErrDurationOutOfRange.
func parseTimingLine(line string) (stats.Duration, bool, error) {
	match := timingLinePattern.FindStringSubmatch(strings.TrimSuffix(line, "\r"))
	if match == nil {
		return 0, false, nil
	}

	minutes, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return 0, true, ErrDurationOutOfRange
	}
	seconds, err := strconv.ParseFloat(match[2], 64)
	if err != nil || seconds >= math.MaxInt64 {
		return 0, true, ErrDurationOutOfRange
	}

	whole := int64(math.Floor(seconds))
	if minutes > (math.MaxInt64-whole)/60 {
		return 0, true, ErrDurationOutOfRange
	}

	return stats.Duration(minutes*60 + whole), true, nil
}
