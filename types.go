package pgcopy

import (
	"io"

	"github.com/google/uuid"
)

// Fixed-size column types. Each payload is written big-endian by Fixed.

func Bool(v bool) *Fixed[bool]           { return &Fixed[bool]{v} }
func Int2(v int16) *Fixed[int16]         { return &Fixed[int16]{v} }
func Int4(v int32) *Fixed[int32]         { return &Fixed[int32]{v} }
func Int8(v int64) *Fixed[int64]         { return &Fixed[int64]{v} }
func Float4(v float32) *Fixed[float32]   { return &Fixed[float32]{v} }
func Float8(v float64) *Fixed[float64]   { return &Fixed[float64]{v} }
func UUID(v uuid.UUID) *Fixed[uuid.UUID] { return &Fixed[uuid.UUID]{v} }

// Text is a text/varchar column. The payload is the string's bytes verbatim.
type Text string

func (t Text) Size() int { return len(t) }

func (t Text) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, string(t))
	return int64(n), err
}

// Bytea is a binary column written verbatim.
type Bytea []byte

func (b Bytea) Size() int { return len(b) }

func (b Bytea) WriteTo(w io.Writer) (int64, error) {
	if len(b) == 0 {
		return 0, nil
	}
	n, err := w.Write(b)
	return int64(n), err
}
