package pgcopy

import "github.com/rs/zerolog"

type options struct {
	bufferSize int
	strict     bool
	logger     zerolog.Logger
}

func defaultOptions() options {
	return options{logger: zerolog.Nop()}
}

// Option configures an Encoder.
type Option func(*options)

// WithBufferSize sets the buffer size used when the sink is not already buffered.
// Zero selects the bufio default.
func WithBufferSize(size int) Option {
	return func(o *options) { o.bufferSize = size }
}

// WithStrict makes protocol violations fail with ErrProtocol instead of being logged.
func WithStrict(strict bool) Option {
	return func(o *options) { o.strict = strict }
}

// WithLogger sets the logger for stream events. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}
