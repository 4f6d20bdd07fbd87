package ewah

import (
	"log/slog"
	"math"
)

const (
	// DefaultBufferSize is the initial capacity, in words, of a new bitmap.
	DefaultBufferSize = 4

	// GrowthThreshold is the capacity, in words, below which the buffer
	// doubles on growth. Above it the buffer grows by half its size.
	GrowthThreshold = 32768

	// MaxBufferSize is the largest number of words a bitmap may hold. It is
	// bounded by the int32 word count of the serialized format.
	MaxBufferSize = math.MaxInt32

	// DefaultWindowWords is the size, in words, of the dense window used by
	// the multi-way OR/XOR aggregation.
	DefaultWindowWords = 65536

	// DefaultDenseRatio selects the multi-way aggregation when the summed
	// compressed size in bytes times the ratio exceeds the largest operand
	// size in bits.
	DefaultDenseRatio = 8
)

type options struct {
	initialCapacity int
	maxBufferSize   int
	windowWords     int
	denseRatio      int
	logger          *Logger
}

// Option configures bitmap construction and aggregation.
//
// Options irrelevant to the call they are passed to are ignored, so a single
// option slice can be shared between NewBitmap and NewAggregator.
type Option func(*options)

// WithInitialCapacity sets the initial buffer capacity in words.
// Values below 1 are replaced by 1.
func WithInitialCapacity(words int) Option {
	return func(o *options) {
		o.initialCapacity = words
	}
}

// WithMaxBufferSize caps the number of words a bitmap may grow to, and the
// number of words accepted when decoding untrusted input.
//
// Growing past the cap panics with ErrBufferOverflow; decoding past it
// returns ErrTooLarge.
func WithMaxBufferSize(words int) Option {
	return func(o *options) {
		o.maxBufferSize = words
	}
}

// WithWindowWords sets the dense window size used by the multi-way
// aggregation.
func WithWindowWords(words int) Option {
	return func(o *options) {
		o.windowWords = words
	}
}

// WithDenseRatio tunes the switch between the multi-way aggregation and the
// pairwise fold. A ratio of 0 always folds pairwise.
func WithDenseRatio(ratio int) Option {
	return func(o *options) {
		o.denseRatio = ratio
	}
}

// WithLogger configures structured logging for aggregation.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	agg := ewah.NewAggregator[uint64](ewah.WithLogger(ewah.NewJSONLogger(slog.LevelDebug)))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		initialCapacity: DefaultBufferSize,
		maxBufferSize:   MaxBufferSize,
		windowWords:     DefaultWindowWords,
		denseRatio:      DefaultDenseRatio,
		logger:          NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.initialCapacity < 1 {
		o.initialCapacity = 1
	}
	if o.maxBufferSize < 1 || o.maxBufferSize > MaxBufferSize {
		o.maxBufferSize = MaxBufferSize
	}
	if o.initialCapacity > o.maxBufferSize {
		o.initialCapacity = o.maxBufferSize
	}
	if o.windowWords < 1 {
		o.windowWords = DefaultWindowWords
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}
