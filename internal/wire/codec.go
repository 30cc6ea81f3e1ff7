// Package wire implements the telewire line protocol: each record is one
// UTF-8 JSON object mapping metric name to numeric value, terminated by a
// single newline. No length prefix, no compression.
package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// Sample is one telemetry reading: metric name to value. Keys are
// open-ended; the reference vocabulary is "CPU" (percentage, 0-100) and
// "MEM" (kilobytes, >= 0). Key order carries no meaning on the wire.
type Sample map[string]float64

// ErrNonFiniteValue is returned by Encode when a sample contains NaN or
// an infinity. Such values must never reach the wire.
var ErrNonFiniteValue = fmt.Errorf("wire: non-finite metric value")

// MalformedRecordError reports a line that could not be decoded as a
// JSON metric object. The raw line is retained for logging.
type MalformedRecordError struct {
	Line []byte
	Err  error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("wire: malformed record %q: %v", e.Line, e.Err)
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}

// Encode serializes a sample as a single-line JSON object followed by
// exactly one newline. Non-finite values are rejected before any bytes
// are produced.
func Encode(s Sample) ([]byte, error) {
	for name, value := range s {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return nil, fmt.Errorf("%w: %s=%v", ErrNonFiniteValue, name, value)
		}
	}

	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("wire: encode sample: %w", err)
	}

	return append(data, '\n'), nil
}

// Decode parses one line into a Sample. The caller is responsible for
// framing; Decode consumes exactly the line it is given, with or without
// a trailing newline. An empty or whitespace-only line decodes to an
// empty sample, treated as a no-op data point rather than an error.
// Anything that is not a JSON object with numeric values yields a
// *MalformedRecordError.
func Decode(line []byte) (Sample, error) {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 {
		return Sample{}, nil
	}

	var s Sample
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return nil, &MalformedRecordError{Line: append([]byte(nil), trimmed...), Err: err}
	}

	return s, nil
}
