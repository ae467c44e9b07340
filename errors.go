package pgcopy

import "errors"

var (
	// ErrNilIO indicates that NewWriter/NewEncoder was called with a nil io.Writer.
	ErrNilIO = errors.New("pgcopy: NewWriter/NewEncoder called with a nil io.Writer")

	// ErrAlreadyBuffered indicates that NewWriterSize was called with a bufio.Writer smaller
	// than the requested size, which would lead to unpredictable double-buffering.
	ErrAlreadyBuffered = errors.New("pgcopy: writer is already buffered")

	// ErrInvalidWrite indicates that an io.Writer returned an invalid (negative) count from Write.
	ErrInvalidWrite = errors.New("pgcopy: writer returned invalid count from Write")

	// ErrPayloadTooLarge indicates a field payload longer than a signed 32-bit length prefix can describe.
	ErrPayloadTooLarge = errors.New("pgcopy: field payload exceeds maximum length")

	// ErrFieldLength indicates a Field whose WriteTo wrote a different number of bytes
	// than its Size declared.
	ErrFieldLength = errors.New("pgcopy: field payload does not match its declared size")

	// ErrValueOutOfRange indicates a date or timestamp outside the range of its wire integer.
	ErrValueOutOfRange = errors.New("pgcopy: value out of range")

	// ErrEncodingOverflow indicates a numeric weight, display scale or digit count
	// outside the signed 16-bit range of the wire format.
	ErrEncodingOverflow = errors.New("pgcopy: numeric value overflows wire representation")

	// ErrInvalidNumeric indicates a malformed numeric value, e.g. a digit outside 0..9.
	ErrInvalidNumeric = errors.New("pgcopy: invalid numeric value")

	// ErrInvalidMacAddr indicates a hardware address with an unsupported length.
	ErrInvalidMacAddr = errors.New("pgcopy: invalid mac address length")

	// ErrInvalidNetAddr indicates an invalid netip.Prefix or netip.Addr.
	ErrInvalidNetAddr = errors.New("pgcopy: invalid network address")

	// ErrUnsupportedType indicates WriteValue was given a type with no codec.
	ErrUnsupportedType = errors.New("pgcopy: unsupported value type")

	// ErrProtocol indicates the caller broke the header → tuple → field → trailer order
	// while the encoder runs in strict mode.
	ErrProtocol = errors.New("pgcopy: stream protocol violation")

	// ErrTooManyFields indicates a row with more fields than a tuple count can hold.
	ErrTooManyFields = errors.New("pgcopy: too many fields in tuple")
)
