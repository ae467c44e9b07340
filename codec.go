package pgcopy

import (
	"encoding"
	"io"
)

// Sizer is an interface for types that can report their binary size.
// This is useful for pre-allocating buffers before encoding.
type Sizer interface {
	// Size returns the size of the type in bytes when binary encoded.
	Size() int
}

// Marshaler defines the core methods for encoding an object into a byte stream.
type Marshaler interface {
	// encoding.BinaryMarshaler provides the primary encoding method.
	// It allocates and returns a new byte slice.
	encoding.BinaryMarshaler // Method: MarshalBinary() ([]byte, error)
	// io.WriterTo provides efficient, stream-based writing.
	io.WriterTo // Method: WriteTo(writer io.Writer) (int64, error)

	// MarshalTo encodes the object into a pre-allocated buffer, returning
	// io.ErrShortWrite if the buffer is too small.
	MarshalTo(buf []byte) (int, error)
}

// Field is the capability a value needs to be written as one column of a tuple.
//
// Size reports the payload length that goes into the 4-byte length prefix and
// WriteTo writes exactly that many payload bytes. The length prefix itself is
// written by the Encoder, so a Field never writes it.
//
// Host applications plug in extra column types by implementing Field, or by
// registering a converter with RegisterType.
type Field interface {
	Sizer
	io.WriterTo
}
