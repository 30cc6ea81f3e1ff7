package wire

import (
	"bufio"
	"bytes"
	"errors"
	"io"
)

// DefaultReadBufferSize is the initial size of a RecordReader's buffer.
const DefaultReadBufferSize = 4096

// RecordReader reassembles newline-delimited records from an unstructured
// byte stream. Writes split across packets are joined and multiple records
// delivered in one read are split; the stream order of records is
// preserved. The reader owns its buffer for the lifetime of the session.
type RecordReader struct {
	r *bufio.Reader
}

// NewRecordReader wraps r with a buffered line reader.
func NewRecordReader(r io.Reader) *RecordReader {
	return &RecordReader{
		r: bufio.NewReaderSize(r, DefaultReadBufferSize),
	}
}

// Next returns the bytes of the next complete line, without the newline
// terminator. A clean peer close (zero-length read at a record boundary)
// returns io.EOF. A final unterminated fragment is returned as-is before
// the following call reports io.EOF, so a peer that dies mid-line still
// surfaces whatever it sent.
func (rr *RecordReader) Next() ([]byte, error) {
	line, err := rr.r.ReadBytes('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return line, nil
		}
		return nil, err
	}

	return bytes.TrimSuffix(line, []byte{'\n'}), nil
}

// NextSample reads one line and decodes it. Framing errors (including
// io.EOF) and decode errors are distinguishable by the caller: decode
// failures are *MalformedRecordError and the stream remains usable.
func (rr *RecordReader) NextSample() (Sample, error) {
	line, err := rr.Next()
	if err != nil {
		return nil, err
	}
	return Decode(line)
}
