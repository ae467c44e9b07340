package pgcopy

import (
	"fmt"
	"io"
	"math"
	"net"
	"net/netip"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// signature opens every binary COPY stream.
var signature = [11]byte{'P', 'G', 'C', 'O', 'P', 'Y', '\n', 0xFF, '\r', '\n', 0}

// HeaderSize is the length of the fixed header: signature, flags and extension length.
const HeaderSize = len(signature) + 4 + 4

const (
	nullLength  int32 = -1
	trailerWord int16 = -1
)

type streamState uint8

const (
	stateStart streamState = iota
	stateBody              // header written, between tuples or inside one
	stateDone              // trailer written
)

func (s streamState) String() string {
	switch s {
	case stateStart:
		return "start"
	case stateBody:
		return "body"
	case stateDone:
		return "done"
	}
	return "unknown"
}

// Encoder writes one binary COPY stream: a header, any number of tuples and a trailer.
//
// The caller drives the order. The encoder tracks the expected sequence
// header → (tuple → field{n})* → trailer and reports a violation as a warning,
// or as ErrProtocol in strict mode. An Encoder is not safe for concurrent use
// and owns its sink until Close.
type Encoder struct {
	w      *Writer
	log    zerolog.Logger
	strict bool

	state     streamState
	remaining int // fields still owed by the current tuple
	tuples    int64
}

// NewEncoder creates an Encoder writing to w.
func NewEncoder(w io.Writer, opts ...Option) (*Encoder, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	bw, err := NewWriterSize(w, o.bufferSize)
	if err != nil {
		return nil, err
	}
	return &Encoder{w: bw, log: o.logger, strict: o.strict}, nil
}

// Count returns the number of bytes accepted so far, buffered or not.
func (e *Encoder) Count() int64 { return e.w.Count() }

// Tuples returns the number of tuples started so far.
func (e *Encoder) Tuples() int64 { return e.tuples }

// Flush writes any buffered data to the sink.
func (e *Encoder) Flush() error {
	if err := e.w.Flush(); err != nil {
		return err
	}
	e.log.Debug().Int64("bytes", e.w.Count()).Msg("flushed")
	return nil
}

// Close flushes buffered data. It does not close the sink.
func (e *Encoder) Close() error {
	if e.state != stateDone {
		e.log.Warn().Stringer("state", e.state).Msg("encoder closed before trailer")
	}
	return e.Flush()
}

// WriteHeader writes the signature, the flags field and the header extension length.
func (e *Encoder) WriteHeader() error {
	if err := e.check(e.state == stateStart, "header written twice or after data"); err != nil {
		return err
	}
	e.w.WriteBytes(signature[:])
	e.w.WriteInt32(0) // flags
	e.w.WriteInt32(0) // header extension length
	e.state = stateBody
	e.log.Debug().Msg("header written")
	return e.w.Err()
}

// WriteTrailer ends the stream. No write may follow.
func (e *Encoder) WriteTrailer() error {
	if err := e.check(e.state == stateBody && e.remaining == 0, "trailer written out of place"); err != nil {
		return err
	}
	e.w.WriteInt16(trailerWord)
	e.state = stateDone
	e.log.Debug().Int64("tuples", e.tuples).Msg("trailer written")
	return e.w.Err()
}

// WriteTuple starts a tuple of fields fields. Exactly that many field writes must follow.
func (e *Encoder) WriteTuple(fields int16) error {
	if err := e.check(e.state == stateBody && e.remaining == 0 && fields >= 0, "tuple started out of place"); err != nil {
		return err
	}
	e.w.WriteInt16(fields)
	e.remaining = max(int(fields), 0)
	e.tuples++
	e.log.Trace().Int16("fields", fields).Int64("tuple", e.tuples).Msg("tuple started")
	return e.w.Err()
}

// WriteNull writes a NULL field.
func (e *Encoder) WriteNull() error {
	if err := e.checkField(); err != nil {
		return err
	}
	e.w.WriteInt32(nullLength)
	return e.w.Err()
}

// WriteField writes f with its length prefix. A nil f, or a nil pointer, is written as NULL.
func (e *Encoder) WriteField(f Field) error {
	if isNull(f) {
		return e.WriteNull()
	}
	if _, err := fieldLength(f.Size()); err != nil {
		return err
	}
	if err := e.checkField(); err != nil {
		return err
	}
	e.w.writeField(f)
	return e.w.Err()
}

// WriteValue writes v through the codec chosen by FieldOf.
func (e *Encoder) WriteValue(v any) error {
	f, err := FieldOf(v)
	if err != nil {
		return err
	}
	return e.WriteField(f)
}

// WriteRow writes a whole tuple: the field count followed by each value.
func (e *Encoder) WriteRow(values ...any) error {
	if len(values) > math.MaxInt16 {
		return fmt.Errorf("%w: %d", ErrTooManyFields, len(values))
	}
	if err := e.WriteTuple(int16(len(values))); err != nil {
		return err
	}
	for _, v := range values {
		if err := e.WriteValue(v); err != nil {
			return err
		}
	}
	return nil
}

// WriteTupleFields writes a prepared Tuple.
func (e *Encoder) WriteTupleFields(t *Tuple) error {
	if len(t.Fields) > math.MaxInt16 {
		return fmt.Errorf("%w: %d", ErrTooManyFields, len(t.Fields))
	}
	if err := e.WriteTuple(int16(len(t.Fields))); err != nil {
		return err
	}
	for _, f := range t.Fields {
		if err := e.WriteField(f); err != nil {
			return err
		}
	}
	return nil
}

// --- Typed field writes ---

func (e *Encoder) WriteBool(v bool) error       { return e.WriteField(Bool(v)) }
func (e *Encoder) WriteInt16(v int16) error     { return e.WriteField(Int2(v)) }
func (e *Encoder) WriteInt32(v int32) error     { return e.WriteField(Int4(v)) }
func (e *Encoder) WriteInt64(v int64) error     { return e.WriteField(Int8(v)) }
func (e *Encoder) WriteFloat32(v float32) error { return e.WriteField(Float4(v)) }
func (e *Encoder) WriteFloat64(v float64) error { return e.WriteField(Float8(v)) }
func (e *Encoder) WriteText(v string) error     { return e.WriteField(Text(v)) }
func (e *Encoder) WriteBytea(v []byte) error    { return e.WriteField(Bytea(v)) }
func (e *Encoder) WriteUUID(v uuid.UUID) error  { return e.WriteField(UUID(v)) }

func (e *Encoder) WriteTime(t time.Time) error     { return e.WriteField(Time(t)) }
func (e *Encoder) WriteInterval(iv Interval) error { return e.WriteField(iv) }

func (e *Encoder) WriteTimestamp(t time.Time) error {
	f, err := Timestamp(t)
	if err != nil {
		return err
	}
	return e.WriteField(f)
}

func (e *Encoder) WriteTimestamptz(t time.Time) error {
	f, err := Timestamptz(t)
	if err != nil {
		return err
	}
	return e.WriteField(f)
}

func (e *Encoder) WriteDate(t time.Time) error {
	f, err := Date(t)
	if err != nil {
		return err
	}
	return e.WriteField(f)
}

func (e *Encoder) WriteMacAddr(hw net.HardwareAddr) error {
	f, err := MacAddr(hw)
	if err != nil {
		return err
	}
	return e.WriteField(f)
}

func (e *Encoder) WriteMacAddr8(hw net.HardwareAddr) error {
	f, err := MacAddr8(hw)
	if err != nil {
		return err
	}
	return e.WriteField(f)
}

func (e *Encoder) WriteInet(p netip.Prefix) error {
	f, err := Inet(p)
	if err != nil {
		return err
	}
	return e.WriteField(f)
}

func (e *Encoder) WriteCidr(p netip.Prefix) error {
	f, err := Cidr(p)
	if err != nil {
		return err
	}
	return e.WriteField(f)
}

// WriteJSON marshals v into a json field.
func (e *Encoder) WriteJSON(v any) error {
	j, err := JSONOf(v)
	if err != nil {
		return err
	}
	return e.WriteField(j)
}

// WriteJSONB marshals v into a jsonb field.
func (e *Encoder) WriteJSONB(v any) error {
	j, err := JSONBOf(v)
	if err != nil {
		return err
	}
	return e.WriteField(j)
}

// WriteNumeric writes n as a numeric field. The digit groups live only for the
// duration of the call.
func (e *Encoder) WriteNumeric(n Numeric) error {
	scratch := groupPool.Get().(*[]int16)
	defer func() {
		*scratch = (*scratch)[:0]
		groupPool.Put(scratch)
	}()

	d, err := n.appendGroups((*scratch)[:0])
	if err != nil {
		return err
	}
	*scratch = d.Groups
	return e.WriteField(d)
}

// --- Protocol tracking ---

func (e *Encoder) checkField() error {
	if err := e.check(e.state == stateBody && e.remaining > 0, "field written outside a tuple"); err != nil {
		return err
	}
	if e.remaining > 0 {
		e.remaining--
	}
	return nil
}

// check reports a protocol violation when ok is false. Only strict mode turns it into an error.
func (e *Encoder) check(ok bool, msg string) error {
	if ok {
		return nil
	}
	if e.strict {
		return fmt.Errorf("%w: %s (state %s, %d fields remaining)", ErrProtocol, msg, e.state, e.remaining)
	}
	e.log.Warn().
		Stringer("state", e.state).
		Int("remaining", e.remaining).
		Int64("tuple", e.tuples).
		Msg(msg)
	return nil
}
