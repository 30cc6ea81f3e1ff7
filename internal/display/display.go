// Package display renders decoded samples for the operator terminal.
package display

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/rafaelqm/telewire/internal/wire"
)

const divider = "=================================================="

// Renderer writes a live telemetry view, one full repaint per sample.
type Renderer struct {
	w           io.Writer
	clearScreen bool
}

// New returns a renderer writing to stdout with screen clearing enabled.
func New() *Renderer {
	return &Renderer{w: os.Stdout, clearScreen: true}
}

// NewWithWriter returns a renderer for a custom writer without ANSI
// clearing, for tests and non-terminal output.
func NewWithWriter(w io.Writer) *Renderer {
	return &Renderer{w: w}
}

// Render implements server.Sink.
func (r *Renderer) Render(peer string, s wire.Sample) {
	if r.clearScreen {
		fmt.Fprint(r.w, "\x1b[2J\x1b[1;1H")
	}

	fmt.Fprintln(r.w, "LIVE TELEMETRY")
	fmt.Fprintf(r.w, "peer: %s\n", peer)
	fmt.Fprintln(r.w, divider)

	if len(s) == 0 {
		fmt.Fprintln(r.w, "(no metrics in last record)")
	} else {
		names := make([]string, 0, len(s))
		for name := range s {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintln(r.w, FormatMetric(name, s[name]))
		}
	}

	fmt.Fprintln(r.w, divider)
}

// FormatMetric renders one metric line. MEM values arrive in kilobytes
// and are scaled for readability; unknown names fall back to a generic
// two-decimal format.
func FormatMetric(name string, value float64) string {
	switch strings.ToUpper(name) {
	case "CPU":
		return fmt.Sprintf("CPU:  %.1f%%", value)
	case "MEM", "MEMORY":
		return "MEM:  " + formatKilobytes(value)
	case "DISK", "STORAGE":
		return fmt.Sprintf("DISK: %.1f%%", value)
	case "NET", "NETWORK":
		return fmt.Sprintf("NET:  %.2f MB/s", value)
	case "TEMP", "TEMPERATURE":
		return fmt.Sprintf("TEMP: %.1f C", value)
	default:
		return fmt.Sprintf("%s: %.2f", name, value)
	}
}

func formatKilobytes(kb float64) string {
	switch {
	case kb >= 1048576:
		return fmt.Sprintf("%.2f GB", kb/1048576)
	case kb >= 1024:
		return fmt.Sprintf("%.2f MB", kb/1024)
	default:
		return fmt.Sprintf("%.2f KB", kb)
	}
}
