// Package cli — output.go holds the shared result printers.
//
// Every command produces one result value. In text mode it is rendered as
// the human-readable lines the command defines, with colour when stdout is
// a terminal (github.com/muesli/termenv degrades to plain text otherwise).
// With --json or --yaml the same value is serialized instead.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/muesli/termenv"
	"gopkg.in/yaml.v3"
)

// ANSI palette indices used for status lines.
const (
	colorGreen  = "2"
	colorYellow = "3"
)

// structuredOutput reports whether --json or --yaml was given.
func structuredOutput() bool {
	return jsonOutput || yamlOutput
}

// printStructured writes v as JSON or YAML when one of those flags is set.
//
// Every command result type carries both json and yaml struct tags, so the
// two formats use the same field names (camelCase).
//
// Parameters:
//   - w: destination, normally the command's stdout
//   - v: the result value to serialize
//
// Returns (false, nil) when text output was requested, leaving the caller
// to render its own lines. Otherwise it returns true together with any
// encoding or write error.
func printStructured(w io.Writer, v interface{}) (bool, error) {
	switch {
	case jsonOutput:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return true, fmt.Errorf("failed to encode JSON output: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return true, err

	case yamlOutput:
		data, err := yaml.Marshal(v)
		if err != nil {
			return true, fmt.Errorf("failed to encode YAML output: %w", err)
		}
		_, err = w.Write(data)
		return true, err

	default:
		return false, nil
	}
}

// textPrinter writes human-readable lines, styling them for the terminal
// it writes to.
//
// The termenv.Output is created from the writer itself, so the colour
// profile reflects where the lines go: a terminal gets ANSI colours, while
// a pipe, a file or a test buffer gets plain text. NO_COLOR and
// CLICOLOR_FORCE are honoured by termenv.
type textPrinter struct {
	w   io.Writer
	out *termenv.Output
}

// newTextPrinter creates a textPrinter writing to w.
func newTextPrinter(w io.Writer) *textPrinter {
	return &textPrinter{w: w, out: termenv.NewOutput(w)}
}

// line prints an unstyled line.
func (p *textPrinter) line(format string, args ...interface{}) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

// ok prints a line in green.
func (p *textPrinter) ok(format string, args ...interface{}) {
	s := p.out.String(fmt.Sprintf(format, args...)).Foreground(p.out.Color(colorGreen))
	fmt.Fprintln(p.w, s.String())
}

// warn prints a "Warning: ..." line in yellow. Warnings are part of the
// command's result (an unhealthy start still exits 0), so they go to the
// same writer as the other result lines rather than to the logger.
func (p *textPrinter) warn(format string, args ...interface{}) {
	s := p.out.String("Warning: " + fmt.Sprintf(format, args...)).Foreground(p.out.Color(colorYellow))
	fmt.Fprintln(p.w, s.String())
}
