package timeutil

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultWindow is the report window used when none is given.
const DefaultWindow = "1w"

const (
	day  = 24 * time.Hour
	week = 7 * day

	maxWindow = time.Duration(math.MaxInt64)
)

var (
	segment = regexp.MustCompile(`^(\d+)([a-z]+)`)
	units   = map[string]time.Duration{
		"m": time.Minute, "min": time.Minute, "mins": time.Minute,
		"h": time.Hour, "hr": time.Hour, "hrs": time.Hour, "hour": time.Hour, "hours": time.Hour,
		"d": day, "day": day, "days": day,
		"w": week, "wk": week, "week": week, "weeks": week,
	}
)

// ParseWindow reads spans such as "3d" or "1w2d". Empty input means
// DefaultWindow.
func ParseWindow(input string) (time.Duration, error) {
	rest := strings.ToLower(strings.Join(strings.Fields(input), ""))
	if rest == "" {
		rest = DefaultWindow
	}
	var total time.Duration
	for rest != "" {
		m := segment.FindStringSubmatch(rest)
		if m == nil {
			return 0, fmt.Errorf("timeutil: invalid window segment %q", rest)
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, fmt.Errorf("timeutil: invalid window value %q: %w", m[1], err)
		}
		unit, ok := units[m[2]]
		if !ok {
			return 0, fmt.Errorf("timeutil: unsupported window unit %q", m[2])
		}
		if time.Duration(n) > (maxWindow-total)/unit {
			return 0, fmt.Errorf("timeutil: window %q is too large", input)
		}
		total += time.Duration(n) * unit
		rest = rest[len(m[0]):]
	}
	if total <= 0 {
		return 0, fmt.Errorf("timeutil: window must be positive")
	}
	return total, nil
}
