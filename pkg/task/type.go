package task

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Type is the category a task is filed under.
type Type string

const (
	// Most is a "Most Important" task; a day holds at most MostCap of them.
	Most Type = "Most"
	// Other is the backlog.
	Other Type = "Other"
	// Quick tasks take a few minutes.
	Quick Type = "Quick"
	// PDP tasks are to be passed, delegated or postponed.
	PDP Type = "PDP"
)

// MostCap is the number of Most Important slots in a day.
const MostCap = 3

// AllTypes returns the categories in display order.
func AllTypes() []Type {
	return []Type{Most, Other, Quick, PDP}
}

// legacyTypes is the numeric encoding written by older clients.
var legacyTypes = []Type{Most, Other, Quick, PDP}

var typeAliases = map[string]Type{
	"most":           Most,
	"most-important": Most,
	"important":      Most,
	"other":          Other,
	"backlog":        Other,
	"quick":          Quick,
	"pdp":            PDP,
	"pass":           PDP,
	"delegate":       PDP,
	"postpone":       PDP,
}

// ParseType resolves a type name or alias, case-insensitively.
func ParseType(raw string) (Type, error) {
	if t, ok := typeAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return t, nil
	}
	return "", fmt.Errorf("%w: unknown task type %q (expected one of Most, Other, Quick, PDP)", ErrInvalid, raw)
}

// Valid reports whether t is one of the four categories.
func (t Type) Valid() bool {
	switch t {
	case Most, Other, Quick, PDP:
		return true
	}
	return false
}

// Title is the section heading for the type.
func (t Type) Title() string {
	switch t {
	case Most:
		return "Most Important"
	case Other:
		return "Other"
	case Quick:
		return "Quick"
	case PDP:
		return "Pass, Delegate or Postpone"
	}
	return string(t)
}

func (t *Type) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err == nil {
		parsed, err := ParseType(name)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	}
	n, err := strconv.Atoi(string(b))
	if err != nil || n < 0 || n >= len(legacyTypes) {
		return fmt.Errorf("%w: unknown task type %s", ErrInvalid, b)
	}
	*t = legacyTypes[n]
	return nil
}
