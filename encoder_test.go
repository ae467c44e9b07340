package pgcopy

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

var header = []byte{
	'P', 'G', 'C', 'O', 'P', 'Y', '\n', 0xFF, '\r', '\n', 0x00,
	0x00, 0x00, 0x00, 0x00, // flags
	0x00, 0x00, 0x00, 0x00, // extension length
}

var trailer = []byte{0xFF, 0xFF}

func stream(parts ...[]byte) []byte {
	out := append([]byte(nil), header...)
	for _, p := range parts {
		out = append(out, p...)
	}
	return append(out, trailer...)
}

// --- Encoder Test Suite ---

type EncoderTestSuite struct {
	suite.Suite
	buf *bytes.Buffer
	log *bytes.Buffer
	enc *Encoder
}

func (s *EncoderTestSuite) SetupTest() {
	s.buf = &bytes.Buffer{}
	s.log = &bytes.Buffer{}
	var err error
	s.enc, err = NewEncoder(s.buf, WithLogger(zerolog.New(s.log).Level(zerolog.WarnLevel)))
	s.Require().NoError(err)
}

func (s *EncoderTestSuite) TestEmptyStream() {
	s.Require().NoError(s.enc.WriteHeader())
	s.Require().NoError(s.enc.WriteTrailer())
	s.Require().NoError(s.enc.Close())

	s.Assert().Len(s.buf.Bytes(), HeaderSize+2)
	s.Assert().Equal(stream(), s.buf.Bytes())
	s.Assert().EqualValues(21, s.enc.Count())
	s.Assert().Zero(s.enc.Tuples())
	s.Assert().Empty(s.log.String())
}

func (s *EncoderTestSuite) TestBoolTuple() {
	s.Require().NoError(s.enc.WriteHeader())
	s.Require().NoError(s.enc.WriteTuple(3))
	s.Require().NoError(s.enc.WriteBool(false))
	s.Require().NoError(s.enc.WriteBool(true))
	s.Require().NoError(s.enc.WriteBool(false))
	s.Require().NoError(s.enc.WriteTrailer())
	s.Require().NoError(s.enc.Close())

	s.Assert().Equal(stream([]byte{
		0x00, 0x03,
		0x00, 0x00, 0x00, 0x01, 0x00,
		0x00, 0x00, 0x00, 0x01, 0x01,
		0x00, 0x00, 0x00, 0x01, 0x00,
	}), s.buf.Bytes())
	s.Assert().EqualValues(1, s.enc.Tuples())
}

func (s *EncoderTestSuite) TestUUIDAndNull() {
	id := uuid.MustParse("1d662762-2010-11e9-ad8b-c869cdb5cd46")

	s.Require().NoError(s.enc.WriteHeader())
	s.Require().NoError(s.enc.WriteTuple(2))
	s.Require().NoError(s.enc.WriteUUID(id))
	s.Require().NoError(s.enc.WriteNull())
	s.Require().NoError(s.enc.WriteTrailer())
	s.Require().NoError(s.enc.Close())

	s.Assert().Equal(stream([]byte{
		0x00, 0x02,
		0x00, 0x00, 0x00, 0x10,
		0x1d, 0x66, 0x27, 0x62, 0x20, 0x10, 0x11, 0xe9,
		0xad, 0x8b, 0xc8, 0x69, 0xcd, 0xb5, 0xcd, 0x46,
		0xFF, 0xFF, 0xFF, 0xFF,
	}), s.buf.Bytes())
}

func (s *EncoderTestSuite) TestWriteRow() {
	s.Require().NoError(s.enc.WriteHeader())
	s.Require().NoError(s.enc.WriteRow(int32(7), "hi", nil, true))
	s.Require().NoError(s.enc.WriteRow())
	s.Require().NoError(s.enc.WriteTrailer())
	s.Require().NoError(s.enc.Close())

	s.Assert().Equal(stream([]byte{
		0x00, 0x04,
		0x00, 0x00, 0x00, 0x04, 0x00, 0x00, 0x00, 0x07,
		0x00, 0x00, 0x00, 0x02, 'h', 'i',
		0xFF, 0xFF, 0xFF, 0xFF,
		0x00, 0x00, 0x00, 0x01, 0x01,
		0x00, 0x00, // empty tuple
	}), s.buf.Bytes())
	s.Assert().EqualValues(2, s.enc.Tuples())
}

func (s *EncoderTestSuite) TestWriteTupleFields() {
	t, err := NewTuple(int16(1), []byte(nil), Text("x"))
	s.Require().NoError(err)

	s.Require().NoError(s.enc.WriteHeader())
	s.Require().NoError(s.enc.WriteTupleFields(t))
	s.Require().NoError(s.enc.WriteTrailer())
	s.Require().NoError(s.enc.Close())

	tupleBytes, err := t.MarshalBinary()
	s.Require().NoError(err)
	s.Assert().Equal(stream(tupleBytes), s.buf.Bytes())
}

func (s *EncoderTestSuite) TestNonStrictViolationsAreLogged() {
	// Field before any tuple: written anyway, reported as a warning.
	s.Require().NoError(s.enc.WriteHeader())
	s.Require().NoError(s.enc.WriteInt16(5))
	s.Assert().Contains(s.log.String(), "field written outside a tuple")
	s.Assert().Contains(s.log.String(), `"level":"warn"`)

	s.log.Reset()
	s.Require().NoError(s.enc.Close())
	s.Assert().Contains(s.log.String(), "encoder closed before trailer")

	s.Assert().Equal(append(append([]byte(nil), header...), 0, 0, 0, 2, 0, 5), s.buf.Bytes())
}

func (s *EncoderTestSuite) TestUnsupportedValue() {
	s.Require().NoError(s.enc.WriteHeader())
	s.Require().NoError(s.enc.WriteTuple(1))
	err := s.enc.WriteValue(struct{}{})
	s.Assert().ErrorIs(err, ErrUnsupportedType)
}

func (s *EncoderTestSuite) TestTooManyFields() {
	s.Require().NoError(s.enc.WriteHeader())
	err := s.enc.WriteRow(make([]any, math.MaxInt16+1)...)
	s.Assert().ErrorIs(err, ErrTooManyFields)
}

func TestEncoder(t *testing.T) {
	suite.Run(t, new(EncoderTestSuite))
}

// --- Strict mode ---

func TestEncoderStrict(t *testing.T) {
	newStrict := func(t *testing.T) *Encoder {
		enc, err := NewEncoder(&bytes.Buffer{}, WithStrict(true))
		require.NoError(t, err)
		return enc
	}

	tests := []struct {
		name string
		run  func(e *Encoder) error
	}{
		{"TupleBeforeHeader", func(e *Encoder) error { return e.WriteTuple(1) }},
		{"FieldBeforeTuple", func(e *Encoder) error {
			_ = e.WriteHeader()
			return e.WriteInt32(1)
		}},
		{"HeaderTwice", func(e *Encoder) error {
			_ = e.WriteHeader()
			return e.WriteHeader()
		}},
		{"TooManyFieldsWritten", func(e *Encoder) error {
			_ = e.WriteHeader()
			_ = e.WriteTuple(1)
			_ = e.WriteNull()
			return e.WriteNull()
		}},
		{"TrailerInsideTuple", func(e *Encoder) error {
			_ = e.WriteHeader()
			_ = e.WriteTuple(2)
			_ = e.WriteNull()
			return e.WriteTrailer()
		}},
		{"TupleInsideTuple", func(e *Encoder) error {
			_ = e.WriteHeader()
			_ = e.WriteTuple(2)
			return e.WriteTuple(1)
		}},
		{"NegativeFieldCount", func(e *Encoder) error {
			_ = e.WriteHeader()
			return e.WriteTuple(-1)
		}},
		{"WriteAfterTrailer", func(e *Encoder) error {
			_ = e.WriteHeader()
			_ = e.WriteTrailer()
			return e.WriteTuple(0)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run(newStrict(t))
			assert.ErrorIs(t, err, ErrProtocol)
		})
	}

	t.Run("ValidStream", func(t *testing.T) {
		e := newStrict(t)
		require.NoError(t, e.WriteHeader())
		require.NoError(t, e.WriteTuple(1))
		require.NoError(t, e.WriteText("ok"))
		require.NoError(t, e.WriteTuple(0))
		require.NoError(t, e.WriteTrailer())
		require.NoError(t, e.Close())
	})

	t.Run("RejectedWriteEmitsNothing", func(t *testing.T) {
		var buf bytes.Buffer
		e, err := NewEncoder(&buf, WithStrict(true))
		require.NoError(t, err)
		require.ErrorIs(t, e.WriteNull(), ErrProtocol)
		require.NoError(t, e.Flush())
		assert.Zero(t, buf.Len())
	})
}

// --- I/O errors ---

func TestEncoderIOErrors(t *testing.T) {
	t.Run("ShortSink", func(t *testing.T) {
		enc, err := NewEncoder(NewBytesWriter(make([]byte, 10)))
		require.NoError(t, err)

		err = enc.WriteHeader()
		require.ErrorIs(t, err, io.ErrShortWrite)

		// The first error sticks.
		assert.ErrorIs(t, enc.WriteTuple(0), io.ErrShortWrite)
		assert.ErrorIs(t, enc.Close(), io.ErrShortWrite)
	})

	t.Run("FailingSink", func(t *testing.T) {
		sinkErr := errors.New("connection reset")
		enc, err := NewEncoder(failingWriter{sinkErr})
		require.NoError(t, err)

		require.NoError(t, enc.WriteHeader(), "header is still buffered")
		require.NoError(t, enc.WriteTrailer())
		assert.ErrorIs(t, enc.Close(), sinkErr)
	})

	t.Run("NilSink", func(t *testing.T) {
		_, err := NewEncoder(nil)
		assert.ErrorIs(t, err, ErrNilIO)
	})
}

// --- Oversized payloads ---

type sizedField int

func (f sizedField) Size() int                        { return int(f) }
func (f sizedField) WriteTo(io.Writer) (int64, error) { return 0, nil }

func TestEncoderPayloadLength(t *testing.T) {
	enc, err := NewEncoder(&bytes.Buffer{})
	require.NoError(t, err)
	require.NoError(t, enc.WriteHeader())
	require.NoError(t, enc.WriteTuple(1))

	assert.ErrorIs(t, enc.WriteField(sizedField(-1)), ErrPayloadTooLarge)

	huge := int64(math.MaxInt32) + 1
	if int64(int(huge)) == huge {
		assert.ErrorIs(t, enc.WriteField(sizedField(huge)), ErrPayloadTooLarge)
	}

	// The rejected fields did not consume the tuple's slot.
	assert.NoError(t, enc.WriteField(sizedField(0)))
}

// shortField declares more payload than it writes.
type shortField struct{}

func (shortField) Size() int { return 4 }

func (shortField) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write([]byte{1, 2})
	return int64(n), err
}

func TestEncoderFieldLengthMismatch(t *testing.T) {
	var buf bytes.Buffer
	enc, err := NewEncoder(&buf, WithStrict(true))
	require.NoError(t, err)
	require.NoError(t, enc.WriteHeader())
	require.NoError(t, enc.WriteTuple(2))

	err = enc.WriteField(shortField{})
	require.ErrorIs(t, err, ErrFieldLength)

	// The error is latched: the stream is not extended further.
	assert.ErrorIs(t, enc.WriteNull(), ErrFieldLength)
	assert.ErrorIs(t, enc.Close(), ErrFieldLength)

	t.Run("Tuple", func(t *testing.T) {
		tuple := &Tuple{Fields: []Field{shortField{}}}
		_, err := tuple.WriteTo(&bytes.Buffer{})
		assert.ErrorIs(t, err, ErrFieldLength)
	})

	t.Run("MarshalField", func(t *testing.T) {
		_, err := MarshalField(shortField{})
		assert.ErrorIs(t, err, io.ErrShortWrite)
	})
}

func TestEncoderTypedNilField(t *testing.T) {
	var buf bytes.Buffer
	enc, err := NewEncoder(&buf, WithStrict(true))
	require.NoError(t, err)
	require.NoError(t, enc.WriteHeader())
	require.NoError(t, enc.WriteTuple(1))
	require.NoError(t, enc.WriteField((*Fixed[int32])(nil)))
	require.NoError(t, enc.WriteTrailer())
	require.NoError(t, enc.Close())

	assert.Equal(t, stream([]byte{0x00, 0x01, 0xFF, 0xFF, 0xFF, 0xFF}), buf.Bytes())

	b, err := MarshalField((*Fixed[int64])(nil))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFF}, b)

	tuple := &Tuple{Fields: []Field{(*NumericDigits)(nil)}}
	assert.Equal(t, 6, tuple.Size())
	tb, err := tuple.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x01, 0xFF, 0xFF, 0xFF, 0xFF}, tb)
}

func TestEncoderDateOutOfRange(t *testing.T) {
	enc, err := NewEncoder(&bytes.Buffer{}, WithStrict(true))
	require.NoError(t, err)
	require.NoError(t, enc.WriteHeader())
	require.NoError(t, enc.WriteTuple(1))

	assert.ErrorIs(t, enc.WriteDate(time.Date(6_000_000, 1, 1, 0, 0, 0, 0, time.UTC)), ErrValueOutOfRange)
	assert.ErrorIs(t, enc.WriteTimestamp(time.Date(300_000, 1, 1, 0, 0, 0, 0, time.UTC)), ErrValueOutOfRange)

	// Rejected values do not take the tuple's slot.
	assert.NoError(t, enc.WriteDate(time.Date(2019, 1, 27, 0, 0, 0, 0, time.UTC)))
}

func TestEncoderIdempotent(t *testing.T) {
	id := uuid.MustParse("1d662762-2010-11e9-ad8b-c869cdb5cd46")
	encode := func() []byte {
		var buf bytes.Buffer
		enc, err := NewEncoder(&buf, WithStrict(true))
		require.NoError(t, err)
		require.NoError(t, enc.WriteHeader())
		for i := range 3 {
			require.NoError(t, enc.WriteRow(int64(i), id, "row", nil, 1.25))
		}
		require.NoError(t, enc.WriteTrailer())
		require.NoError(t, enc.Close())
		return buf.Bytes()
	}
	assert.Equal(t, encode(), encode())
}

func TestStreamState(t *testing.T) {
	assert.Equal(t, "start", stateStart.String())
	assert.Equal(t, "body", stateBody.String())
	assert.Equal(t, "done", stateDone.String())
	assert.Equal(t, "unknown", streamState(9).String())
}
