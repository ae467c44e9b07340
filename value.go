package pgcopy

import (
	"encoding/json"
	"fmt"
	"math/big"
	"net"
	"net/netip"
	"reflect"
	"time"

	"github.com/cockroachdb/apd/v2"
	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v4"
)

type converter func(any) (Field, error)

// registry holds host-type converters added with RegisterType.
var registry = xsync.NewMap[reflect.Type, converter]()

// RegisterType teaches FieldOf and Encoder.WriteValue how to encode values of type T.
// A registered converter takes precedence over the built-in mapping, so it can
// also change how a built-in type is written (e.g. time.Time as date).
// It is safe to call concurrently with encoding.
func RegisterType[T any](fn func(T) (Field, error)) {
	registry.Store(reflect.TypeFor[T](), func(v any) (Field, error) {
		return fn(v.(T))
	})
}

// UnregisterType removes the converter for T.
func UnregisterType[T any]() {
	registry.Delete(reflect.TypeFor[T]())
}

// FieldOf picks the codec for v. A nil result means NULL.
//
// Built-in mapping:
//
//	bool                 bool
//	int16, int32, int64  int2, int4, int8 (int maps to int8)
//	float32, float64     float4, float8
//	string               text
//	[]byte               bytea (nil is NULL)
//	json.RawMessage      jsonb
//	time.Time            timestamptz
//	time.Duration        interval
//	uuid.UUID            uuid
//	net.HardwareAddr     macaddr, or macaddr8 for 8 bytes
//	netip.Prefix/Addr    inet
//	Numeric, *apd.Decimal, *big.Int  numeric
//
// Values implementing Field are used as-is; pointers are dereferenced.
func FieldOf(v any) (Field, error) {
	if v == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil, nil
	}
	if fn, ok := registry.Load(rv.Type()); ok {
		return fn(v)
	}

	switch v := v.(type) {
	case Field:
		return v, nil
	case bool:
		return Bool(v), nil
	case int16:
		return Int2(v), nil
	case int32:
		return Int4(v), nil
	case int64:
		return Int8(v), nil
	case int:
		return Int8(int64(v)), nil
	case float32:
		return Float4(v), nil
	case float64:
		return Float8(v), nil
	case string:
		return Text(v), nil
	case []byte:
		if v == nil {
			return nil, nil
		}
		return Bytea(v), nil
	case json.RawMessage:
		if v == nil {
			return nil, nil
		}
		return JSONB(v), nil
	case time.Time:
		return Timestamptz(v)
	case time.Duration:
		return IntervalOf(v), nil
	case uuid.UUID:
		return UUID(v), nil
	case net.HardwareAddr:
		if len(v) == 8 {
			return MacAddr8(v)
		}
		return MacAddr(v)
	case netip.Prefix:
		return Inet(v)
	case netip.Addr:
		if !v.IsValid() {
			return nil, fmt.Errorf("%w: %v", ErrInvalidNetAddr, v)
		}
		return Inet(netip.PrefixFrom(v, v.BitLen()))
	case Numeric:
		return v.Groups()
	case *apd.Decimal:
		n, err := NumericFromAPD(v)
		if err != nil {
			return nil, err
		}
		return n.Groups()
	case *big.Int:
		return NumericFromBigInt(v, 0).Groups()
	}

	if rv.Kind() == reflect.Pointer {
		return FieldOf(rv.Elem().Interface())
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedType, v)
}
