package pgcopy

import (
	"encoding"
	"fmt"
	"io"
)

// MarshalBinaryGeneric provides a generic `encoding.BinaryMarshaler` implementation
// on top of Size and WriteTo.
func MarshalBinaryGeneric[T interface {
	Size() int
	io.WriterTo
}](v T) ([]byte, error) {
	expectedSize := v.Size()
	w := NewBytesWriter(make([]byte, expectedSize))
	n, err := v.WriteTo(w)
	if err != nil {
		return nil, err
	}
	if n < int64(expectedSize) {
		return nil, fmt.Errorf("%w: expected %d bytes, but wrote %d", io.ErrShortWrite, expectedSize, n)
	}
	return w.Bytes(), nil
}

// WriteToGeneric adapts a type that can marshal to a byte slice to the streaming
// io.Writer interface.
func WriteToGeneric[T encoding.BinaryMarshaler](v T, w io.Writer) (int64, error) {
	buf, err := v.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(buf)
	if err != nil {
		return int64(n), err
	}
	if n < len(buf) {
		return int64(n), io.ErrShortWrite
	}
	return int64(n), nil
}

// MarshalToGeneric provides a fallback implementation for the MarshalTo method.
func MarshalToGeneric[T interface {
	Size() int
	io.WriterTo
}](v T, p []byte) (int, error) {
	size := v.Size()
	if len(p) < size {
		return 0, io.ErrShortWrite
	}
	w := NewBytesWriter(p)
	n, err := v.WriteTo(w)
	if err != nil {
		return int(n), err
	}
	if n < int64(size) {
		return int(n), io.ErrShortWrite
	}
	return int(n), nil
}

// MarshalField returns the complete encoding of f as it appears inside a tuple:
// the 4-byte length prefix followed by the payload. A nil Field or nil pointer encodes as NULL.
func MarshalField(f Field) ([]byte, error) {
	if isNull(f) {
		return []byte{0xFF, 0xFF, 0xFF, 0xFF}, nil
	}
	size := f.Size()
	length, err := fieldLength(size)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 4+size)
	Order.PutUint32(buf, uint32(length))
	if _, err := MarshalToGeneric(f, buf[4:]); err != nil {
		return nil, err
	}
	return buf, nil
}
