// Package output renders CLI command results as either human-readable text
// or a machine-readable JSON/YAML document, selected by the caller once per
// command invocation rather than threaded through every render call.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Mode selects how a Formatter renders structured values.
type Mode int

const (
	ModeText Mode = iota
	ModeJSON
	ModeYAML
)

// ParseMode maps a --format flag value to a Mode. An empty string and "text"
// both mean ModeText; unrecognized values fall back to ModeText.
func ParseMode(s string) Mode {
	switch s {
	case "json":
		return ModeJSON
	case "yaml", "yml":
		return ModeYAML
	default:
		return ModeText
	}
}

// Formatter writes a single structured value (Emit) to writer in JSON or
// YAML mode; text output is written by each Result's own RenderText, not by
// the Formatter.
type Formatter struct {
	writer io.Writer
	mode   Mode
}

// New builds a Formatter that writes to w in the given mode.
func New(w io.Writer, mode Mode) *Formatter {
	return &Formatter{writer: w, mode: mode}
}

// Mode reports the formatter's active rendering mode.
func (f *Formatter) Mode() Mode {
	return f.mode
}

// IsStructured reports whether Emit should be used instead of a Result's
// RenderText, i.e. the formatter was built with ModeJSON or ModeYAML.
func (f *Formatter) IsStructured() bool {
	return f.mode != ModeText
}

// Emit renders v as JSON or YAML per the formatter's mode. Callers in
// ModeText should not call Emit; it is a no-op in that mode since text
// rendering is command-specific and produced by each Result's RenderText.
func (f *Formatter) Emit(v interface{}) error {
	switch f.mode {
	case ModeJSON:
		enc := json.NewEncoder(f.writer)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case ModeYAML:
		enc := yaml.NewEncoder(f.writer)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	default:
		return nil
	}
}

// Errorf writes a formatted error line to the formatter's writer, prefixed
// consistently regardless of mode (errors are never structured, since a
// command that failed before producing a value has nothing to encode).
func (f *Formatter) Errorf(format string, args ...interface{}) {
	fmt.Fprintf(f.writer, "error: "+format+"\n", args...)
}
