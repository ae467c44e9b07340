package pgcopy

import (
	"fmt"
	"io"
	"math"
	"time"
)

// The format counts from 2000-01-01 00:00:00 UTC rather than the Unix epoch.
const (
	unixToPostgresMicros int64 = 946_684_800_000_000
	unixToPostgresDays   int64 = 10_957
	secondsPerDay        int64 = 86_400
)

// Timestamps whose microsecond offset from 2000-01-01 would not fit in an int64
// are rejected. The bounds keep a second of slack for the fractional part.
const (
	maxTimestampSeconds = (math.MaxInt64-unixToPostgresMicros)/int64(time.Second/time.Microsecond) - 1
	minTimestampSeconds = (math.MinInt64+unixToPostgresMicros)/int64(time.Second/time.Microsecond) + 1
)

// Timestamp encodes a timestamp without time zone. The wall clock of t is used
// as-is; its location is ignored.
func Timestamp(t time.Time) (*Fixed[int64], error) {
	return timestamp(wallUTC(t))
}

// Timestamptz encodes a timestamp with time zone: t is normalized to UTC first.
func Timestamptz(t time.Time) (*Fixed[int64], error) {
	return timestamp(t.UTC())
}

// Date encodes the calendar date of t (wall clock) as days since 2000-01-01.
func Date(t time.Time) (*Fixed[int32], error) {
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	days := midnight.Unix()/secondsPerDay - unixToPostgresDays
	if days < math.MinInt32 || days > math.MaxInt32 {
		return nil, fmt.Errorf("%w: date %d-%02d-%02d", ErrValueOutOfRange, t.Year(), t.Month(), t.Day())
	}
	return &Fixed[int32]{int32(days)}, nil
}

// Time encodes the wall-clock time of day of t as microseconds since midnight.
func Time(t time.Time) *Fixed[int64] {
	us := int64(t.Hour())*int64(time.Hour/time.Microsecond) +
		int64(t.Minute())*int64(time.Minute/time.Microsecond) +
		int64(t.Second())*int64(time.Second/time.Microsecond) +
		int64(t.Nanosecond())/int64(time.Microsecond)
	return &Fixed[int64]{us}
}

func wallUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

func timestamp(t time.Time) (*Fixed[int64], error) {
	if sec := t.Unix(); sec < minTimestampSeconds || sec > maxTimestampSeconds {
		return nil, fmt.Errorf("%w: timestamp year %d", ErrValueOutOfRange, t.Year())
	}
	return &Fixed[int64]{t.UnixMicro() - unixToPostgresMicros}, nil
}

// Interval is the interval column: a time part plus calendar days and months,
// which PostgreSQL keeps apart because their length varies.
type Interval struct {
	Microseconds int64
	Days         int32
	Months       int32
}

// IntervalOf converts a duration into a pure time interval.
func IntervalOf(d time.Duration) Interval {
	return Interval{Microseconds: d.Microseconds()}
}

func (iv Interval) Size() int { return 16 }

func (iv Interval) WriteTo(w io.Writer) (int64, error) {
	f := Fixed[Interval]{iv}
	return f.WriteTo(w)
}
