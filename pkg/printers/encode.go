// Package printers renders planner data as colored text, JSON or YAML.
package printers

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

// Encode writes v to w as "json" or "yaml". A nil w prints to color.Output.
func Encode(w io.Writer, format string, v interface{}) error {
	if w == nil {
		w = color.Output
	}
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("printers: unknown output format %q", format)
}
