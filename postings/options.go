package postings

import (
	"strings"

	"github.com/hupe1980/ewah"
	"github.com/hupe1980/ewah/codec"
)

// DefaultMaxRawSize bounds the decoded size of a stored bitmap unless
// WithMaxRawSize overrides it. 256 MiB of literal words covers 2^31 positions.
const DefaultMaxRawSize = 256 << 20

// Options configures a Store.
type Options struct {
	// Envelope configures compression of stored bitmaps.
	Envelope codec.Options

	// Codec serializes catalogs.
	Codec codec.Codec

	// Logger receives save, load and commit events. Nil disables logging.
	Logger *ewah.Logger

	// Metrics receives operation statistics.
	Metrics MetricsCollector

	// Concurrency bounds concurrent blob operations of bulk calls.
	Concurrency int

	// IORate bounds bytes per second read and written. 0 is unlimited.
	IORate int64

	// Prefix is prepended to every blob name.
	Prefix string

	// BitmapOptions configure decoded bitmaps and query aggregation.
	BitmapOptions []ewah.Option
}

// Option configures a Store.
type Option func(*Options)

// WithCompression sets the compression of stored bitmaps.
func WithCompression(c codec.Compression, level int) Option {
	return func(o *Options) {
		o.Envelope.Compression = c
		o.Envelope.Level = level
	}
}

// WithMaxRawSize bounds the decoded size of a stored bitmap in bytes.
// 0 removes the bound.
func WithMaxRawSize(n int) Option {
	return func(o *Options) { o.Envelope.MaxRawSize = n }
}

// WithCodec sets the catalog codec.
func WithCodec(c codec.Codec) Option {
	return func(o *Options) { o.Codec = c }
}

// WithLogger sets the logger.
func WithLogger(l *ewah.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m MetricsCollector) Option {
	return func(o *Options) { o.Metrics = m }
}

// WithConcurrency sets the number of concurrent blob operations.
func WithConcurrency(n int) Option {
	return func(o *Options) { o.Concurrency = n }
}

// WithIORate limits blob I/O to bytesPerSec.
func WithIORate(bytesPerSec int64) Option {
	return func(o *Options) { o.IORate = bytesPerSec }
}

// WithPrefix stores all blobs below prefix. A missing trailing "/" is added.
func WithPrefix(prefix string) Option {
	return func(o *Options) { o.Prefix = prefix }
}

// WithBitmapOptions sets options for decoded bitmaps and query aggregation.
func WithBitmapOptions(opts ...ewah.Option) Option {
	return func(o *Options) { o.BitmapOptions = opts }
}

func defaultOptions() Options {
	env := codec.DefaultOptions
	env.MaxRawSize = DefaultMaxRawSize
	return Options{
		Envelope:    env,
		Codec:       codec.Default,
		Metrics:     NoopMetricsCollector{},
		Concurrency: 4,
	}
}

func applyOptions(optFns []Option) Options {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}
	if o.Codec == nil {
		o.Codec = codec.Default
	}
	if o.Metrics == nil {
		o.Metrics = NoopMetricsCollector{}
	}
	if o.Logger == nil {
		o.Logger = ewah.NoopLogger()
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 1
	}
	if o.Prefix != "" && !strings.HasSuffix(o.Prefix, "/") {
		o.Prefix += "/"
	}
	return o
}
