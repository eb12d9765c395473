// Package timeutil holds the timestamp encoding shared by every newday document.
package timeutil

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Layouts accepted when reading documents. The last two cover timestamps
// written by clients that stored a JavaScript Date.toString() value.
var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"Mon Jan 02 2006 15:04:05 GMT-0700 (MST)",
	"Mon Jan 02 2006 15:04:05 GMT-0700",
}

// ParseTime parses v with every supported layout.
func ParseTime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	// Date.toString() appends a long zone name in parens; drop it.
	if i := strings.Index(v, " ("); i > 0 && strings.HasSuffix(v, ")") {
		v = v[:i]
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("timeutil: unrecognized timestamp %q", v)
}

// Timestamp is a time.Time that marshals as an RFC 3339 string. The zero value
// marshals as "".
type Timestamp struct {
	time.Time
}

// At wraps t.
func At(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// Ptr returns a pointer to a Timestamp wrapping t.
func Ptr(t time.Time) *Timestamp {
	ts := At(t)
	return &ts
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(FormatTime(t.Time))
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, err := ParseTime(raw)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t Timestamp) MarshalYAML() (interface{}, error) {
	if t.IsZero() {
		return "", nil
	}
	return FormatTime(t.Time), nil
}

func (t Timestamp) String() string {
	return FormatTime(t.Time)
}

// SameDay reports whether t and then fall on the same local calendar day.
func (t Timestamp) SameDay(then time.Time) bool {
	a, b := t.Local(), then.Local()
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// FormatTime renders v in UTC with nanosecond precision.
func FormatTime(v time.Time) string {
	return v.UTC().Format(time.RFC3339Nano)
}
