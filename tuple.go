package pgcopy

import (
	"fmt"
	"io"
	"math"
)

// Tuple is one prepared row. A nil entry in Fields is written as NULL.
type Tuple struct {
	Fields []Field
}

var _ Marshaler = (*Tuple)(nil)

// NewTuple converts values with FieldOf.
func NewTuple(values ...any) (*Tuple, error) {
	if len(values) > math.MaxInt16 {
		return nil, fmt.Errorf("%w: %d", ErrTooManyFields, len(values))
	}
	fields := make([]Field, len(values))
	for i, v := range values {
		f, err := FieldOf(v)
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		fields[i] = f
	}
	return &Tuple{Fields: fields}, nil
}

func (t *Tuple) Len() int { return len(t.Fields) }

// Size calculates the encoded size of the row: the field count plus every
// length prefix and payload.
func (t *Tuple) Size() int {
	total := 2
	for _, f := range t.Fields {
		total += 4
		if !isNull(f) {
			total += f.Size()
		}
	}
	return total
}

// WriteTo writes the field count followed by each field.
func (t *Tuple) WriteTo(writer io.Writer) (int64, error) {
	if len(t.Fields) > math.MaxInt16 {
		return 0, fmt.Errorf("%w: %d", ErrTooManyFields, len(t.Fields))
	}
	w, err := NewWriter(writer)
	if err != nil {
		return 0, err
	}
	w.WriteInt16(int16(len(t.Fields)))
	for _, f := range t.Fields {
		if isNull(f) {
			w.WriteInt32(nullLength)
			continue
		}
		w.writeField(f)
	}
	return w.Result()
}

// --- Boilerplate implementations ---

func (t *Tuple) MarshalBinary() ([]byte, error) {
	return MarshalBinaryGeneric(t)
}

func (t *Tuple) MarshalTo(buf []byte) (int, error) {
	return MarshalToGeneric(t, buf)
}
