package pgcopy

import (
	"encoding/binary"
	"io"
	"reflect"

	"github.com/puzpuzpuz/xsync/v4"
)

// sizeCache avoids the cost of reflection in `binary.Size` on every call.
// It is shared by every Fixed instantiation, so it must be concurrent-safe.
var sizeCache = xsync.NewMap[reflect.Type, int]()

// Fixed is the generic Field for column types with a fixed wire size. The payload
// is written big-endian by encoding/binary, field by field for structs.
//
// Constraint: Payload MUST NOT contain variable-size fields like slices,
// maps, or strings, as this will cause `binary.Size` to fail.
type Fixed[Payload any] struct {
	Payload Payload
}

var (
	_ Field     = (*Fixed[int32])(nil)
	_ Marshaler = (*Fixed[int32])(nil)
)

// Size returns the fixed size of the payload in bytes.
// The result is cached to avoid reflection overhead on subsequent calls.
func (c *Fixed[Payload]) Size() int {
	payloadType := reflect.TypeOf((*Payload)(nil)).Elem()

	if size, ok := sizeCache.Load(payloadType); ok {
		return size
	}

	size := binary.Size(&c.Payload)
	sizeCache.Store(payloadType, size)
	return size
}

// MarshalBinary implements the standard `encoding.BinaryMarshaler` interface.
// It returns the payload only, without the length prefix.
func (c *Fixed[Payload]) MarshalBinary() ([]byte, error) {
	buf := make([]byte, c.Size())
	if _, err := binary.Encode(buf, Order, &c.Payload); err != nil {
		return nil, io.ErrShortWrite // binary.Encode only fails when the buffer is too small
	}
	return buf, nil
}

// WriteTo implements `io.WriterTo` for allocation-free writing of the payload
// directly to a stream.
func (c *Fixed[Payload]) WriteTo(w io.Writer) (int64, error) {
	if err := binary.Write(w, Order, &c.Payload); err != nil {
		return 0, err
	}
	return int64(c.Size()), nil
}

// MarshalTo marshals the payload into the provided slice `p`.
func (c *Fixed[Payload]) MarshalTo(p []byte) (int, error) {
	n, err := binary.Encode(p, Order, &c.Payload)
	if err != nil {
		return n, io.ErrShortWrite
	}
	return n, nil
}
