package pgcopy

import (
	"fmt"
	"io"
	"math"
	"math/big"

	"github.com/cockroachdb/apd/v2"
)

// NumericForm distinguishes finite numerics from the special values.
type NumericForm uint8

const (
	FiniteForm NumericForm = iota
	NaNForm
	InfiniteForm
)

// Sign words of the numeric wire format.
const (
	numericPos  uint16 = 0x0000
	numericNeg  uint16 = 0x4000
	numericNaN  uint16 = 0xC000
	numericPInf uint16 = 0xD000
	numericNInf uint16 = 0xF000
)

// decDigits is the number of decimal digits packed into one base-10000 group.
const decDigits = 4

// Numeric is an arbitrary-precision decimal in sign/digits/exponent form.
//
// The value is Digits × 10^(-Exponent): Exponent counts fractional decimal digits,
// so 3.14 is {Digits: [3 1 4], Exponent: 2} and 1200 may be {Digits: [1 2], Exponent: -2}.
// Digits are decimal digits (0..9), most significant first.
type Numeric struct {
	Form     NumericForm
	Negative bool
	Digits   []byte
	Exponent int32
}

// NumericDigits is the wire decomposition of a Numeric into base-10000 groups.
// It implements Field.
type NumericDigits struct {
	Weight int16 // power of 10000 of the first group
	Sign   uint16
	Dscale int16 // decimal digits shown after the point
	Groups []int16
}

var (
	_ Field     = NumericDigits{}
	_ Marshaler = NumericDigits{}
)

// NewNumeric builds a finite Numeric, copying digits.
func NewNumeric(negative bool, digits []byte, exponent int32) (Numeric, error) {
	for i, d := range digits {
		if d > 9 {
			return Numeric{}, fmt.Errorf("%w: digit %d at position %d", ErrInvalidNumeric, d, i)
		}
	}
	return Numeric{
		Negative: negative,
		Digits:   append([]byte(nil), digits...),
		Exponent: exponent,
	}, nil
}

// NumericNaN returns the not-a-number value.
func NumericNaN() Numeric { return Numeric{Form: NaNForm} }

// NumericInf returns positive or negative infinity.
func NumericInf(negative bool) Numeric { return Numeric{Form: InfiniteForm, Negative: negative} }

// NumericFromBigInt returns coeff × 10^(-exponent).
func NumericFromBigInt(coeff *big.Int, exponent int32) Numeric {
	return Numeric{
		Negative: coeff.Sign() < 0,
		Digits:   decimalDigits(coeff),
		Exponent: exponent,
	}
}

// NumericFromAPD converts an apd decimal. apd's exponent is a power of ten,
// the opposite sign of Numeric.Exponent.
func NumericFromAPD(d *apd.Decimal) (Numeric, error) {
	switch d.Form {
	case apd.NaN, apd.NaNSignaling:
		return NumericNaN(), nil
	case apd.Infinite:
		return NumericInf(d.Negative), nil
	}
	if d.Exponent == math.MinInt32 {
		return Numeric{}, fmt.Errorf("%w: exponent %d", ErrEncodingOverflow, d.Exponent)
	}
	return Numeric{
		Negative: d.Negative,
		Digits:   decimalDigits(&d.Coeff),
		Exponent: -d.Exponent,
	}, nil
}

// ParseNumeric parses a decimal string such as "-12.50", "1e-3", "NaN" or "Infinity".
func ParseNumeric(s string) (Numeric, error) {
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return Numeric{}, fmt.Errorf("%w: %v", ErrInvalidNumeric, err)
	}
	return NumericFromAPD(d)
}

func decimalDigits(coeff *big.Int) []byte {
	digits := new(big.Int).Abs(coeff).Append(nil, 10)
	for i := range digits {
		digits[i] -= '0'
	}
	return digits
}

// Groups converts n into its base-10000 wire form.
func (n Numeric) Groups() (NumericDigits, error) {
	return n.appendGroups(nil)
}

// appendGroups computes the wire form, appending the groups to dst.
// The algorithm is PostgreSQL's str2num: locate the decimal weight of the first
// significant digit, left-pad so the decimal point falls on a group boundary,
// then cut the significant digits into groups of four.
func (n Numeric) appendGroups(dst []int16) (NumericDigits, error) {
	switch n.Form {
	case NaNForm:
		return NumericDigits{Sign: numericNaN, Groups: dst}, nil
	case InfiniteForm:
		if n.Negative {
			return NumericDigits{Sign: numericNInf, Groups: dst}, nil
		}
		return NumericDigits{Sign: numericPInf, Groups: dst}, nil
	case FiniteForm:
	default:
		return NumericDigits{}, fmt.Errorf("%w: unknown form %d", ErrInvalidNumeric, n.Form)
	}

	dscale := max(int64(n.Exponent), 0)
	if !fitsInt16(dscale) {
		return NumericDigits{}, fmt.Errorf("%w: dscale %d", ErrEncodingOverflow, dscale)
	}

	digits := n.Digits
	for i, d := range digits {
		if d > 9 {
			return NumericDigits{}, fmt.Errorf("%w: digit %d at position %d", ErrInvalidNumeric, d, i)
		}
	}
	for len(digits) > 0 && digits[0] == 0 {
		digits = digits[1:]
	}
	if len(digits) == 0 {
		return NumericDigits{Sign: numericPos, Dscale: int16(dscale), Groups: dst}, nil
	}

	// dweight is the power of ten of the first significant digit.
	dweight := int64(len(digits)) - int64(n.Exponent) - 1
	weight := floorDiv(dweight, decDigits)
	offset := (weight+1)*decDigits - (dweight + 1)

	for len(digits) > 0 && digits[len(digits)-1] == 0 {
		digits = digits[:len(digits)-1]
	}
	ndigits := Roundup(int64(len(digits))+offset, decDigits) / decDigits

	if !fitsInt16(weight) {
		return NumericDigits{}, fmt.Errorf("%w: weight %d", ErrEncodingOverflow, weight)
	}
	if !fitsInt16(ndigits) {
		return NumericDigits{}, fmt.Errorf("%w: %d digit groups", ErrEncodingOverflow, ndigits)
	}

	idx := -offset
	for range ndigits {
		var group int16
		for range decDigits {
			group *= 10
			if idx >= 0 && idx < int64(len(digits)) {
				group += int16(digits[idx])
			}
			idx++
		}
		dst = append(dst, group)
	}

	sign := numericPos
	if n.Negative {
		sign = numericNeg
	}
	return NumericDigits{Weight: int16(weight), Sign: sign, Dscale: int16(dscale), Groups: dst}, nil
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Size returns the payload length: four int16 header words plus one per group.
func (d NumericDigits) Size() int { return 2 * (4 + len(d.Groups)) }

// WriteTo writes ndigits, weight, sign, dscale and the groups.
func (d NumericDigits) WriteTo(w io.Writer) (int64, error) {
	return WriteToGeneric(d, w)
}

func (d NumericDigits) MarshalBinary() ([]byte, error) {
	buf := make([]byte, d.Size())
	d.put(buf)
	return buf, nil
}

func (d NumericDigits) MarshalTo(p []byte) (int, error) {
	return MarshalToGeneric(d, p)
}

func (d NumericDigits) put(buf []byte) {
	Order.PutUint16(buf[0:], uint16(len(d.Groups)))
	Order.PutUint16(buf[2:], uint16(d.Weight))
	Order.PutUint16(buf[4:], d.Sign)
	Order.PutUint16(buf[6:], uint16(d.Dscale))
	for i, g := range d.Groups {
		Order.PutUint16(buf[8+2*i:], uint16(g))
	}
}
