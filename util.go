package pgcopy

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"

	"golang.org/x/exp/constraints"
)

// Order is the byte order of every multi-byte value in the stream.
var Order = binary.BigEndian

// Roundup rounds n up to the nearest multiple of align. align must be a power of two.
func Roundup[T constraints.Integer](n, align T) T { return (n + (align - 1)) &^ (align - 1) }

// fitsInt16 reports whether v is representable as a signed 16-bit value.
func fitsInt16[T constraints.Signed](v T) bool {
	return int64(v) >= math.MinInt16 && int64(v) <= math.MaxInt16
}

// fieldLength converts a payload length to the signed 32-bit length prefix.
func fieldLength(n int) (int32, error) {
	if n < 0 || int64(n) > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, n)
	}
	return int32(n), nil
}

// isNull reports whether f encodes as NULL: a nil interface or a nil pointer.
func isNull(f Field) bool {
	if f == nil {
		return true
	}
	v := reflect.ValueOf(f)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
