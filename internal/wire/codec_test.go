package wire

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

func TestEncodeProducesSingleTerminatedLine(t *testing.T) {
	data, err := Encode(Sample{"CPU": 45.2, "MEM": 8388608})
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	if data[len(data)-1] != '\n' {
		t.Error("expected trailing newline")
	}
	if bytes.Count(data, []byte{'\n'}) != 1 {
		t.Errorf("expected exactly one newline, got %d", bytes.Count(data, []byte{'\n'}))
	}
}

func TestRoundTrip(t *testing.T) {
	cases := []struct {
		name   string
		sample Sample
	}{
		{"typical", Sample{"CPU": 45.2, "MEM": 8388608}},
		{"empty", Sample{}},
		{"zero values", Sample{"CPU": 0, "MEM": 0}},
		{"extra keys", Sample{"CPU": 12.5, "MEM": 2048, "DISK": 77.1, "TEMP": 54.3}},
		{"negative", Sample{"DELTA": -3.25}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := Encode(tc.sample)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}

			got, err := Decode(data)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}

			if len(got) != len(tc.sample) {
				t.Fatalf("expected %d entries, got %d", len(tc.sample), len(got))
			}
			for name, want := range tc.sample {
				if math.Abs(got[name]-want) > 1e-9 {
					t.Errorf("%s: expected %v, got %v", name, want, got[name])
				}
			}
		})
	}
}

func TestEncodeRejectsNonFiniteValues(t *testing.T) {
	for _, value := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := Encode(Sample{"CPU": value})
		if !errors.Is(err, ErrNonFiniteValue) {
			t.Errorf("value %v: expected ErrNonFiniteValue, got %v", value, err)
		}
	}
}

func TestDecodeEmptyLineYieldsEmptySample(t *testing.T) {
	for _, line := range []string{"", "\n", "   ", " \t \n"} {
		s, err := Decode([]byte(line))
		if err != nil {
			t.Fatalf("Decode(%q) failed: %v", line, err)
		}
		if len(s) != 0 {
			t.Errorf("Decode(%q): expected empty sample, got %v", line, s)
		}
	}
}

func TestDecodeMalformed(t *testing.T) {
	cases := []string{
		"not json",
		`{"CPU": "high"}`,
		`{"CPU": 45.2`,
		`[1, 2, 3]`,
		`{"CPU": 45.2}{"MEM": 1}`,
	}

	for _, line := range cases {
		_, err := Decode([]byte(line))
		if err == nil {
			t.Errorf("Decode(%q): expected error", line)
			continue
		}

		var malformed *MalformedRecordError
		if !errors.As(err, &malformed) {
			t.Errorf("Decode(%q): expected *MalformedRecordError, got %T", line, err)
		}
	}
}

func TestDecodeToleratesUnknownKeys(t *testing.T) {
	s, err := Decode([]byte(`{"CPU": 45.2, "GPU": 91.0, "FANS": 3}`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(s) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(s))
	}
	if s["GPU"] != 91.0 {
		t.Errorf("expected GPU 91.0, got %v", s["GPU"])
	}
}
