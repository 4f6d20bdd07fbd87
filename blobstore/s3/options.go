package s3

import "strings"

// Options configures a Store.
type Options struct {
	// Prefix is prepended to all keys.
	Prefix string

	// Region overrides the region of the default AWS configuration. Used by New.
	Region string

	// Endpoint overrides the S3 endpoint, for example a local emulator. Used by New.
	Endpoint string

	// UsePathStyle addresses buckets in the path instead of the host. Used by New.
	UsePathStyle bool

	// Upload tunes multipart uploads.
	Upload UploadConfig
}

// Option configures a Store.
type Option func(*Options)

// WithPrefix sets the key prefix. A missing trailing "/" is added.
func WithPrefix(prefix string) Option {
	return func(o *Options) { o.Prefix = prefix }
}

// WithRegion sets the AWS region.
func WithRegion(region string) Option {
	return func(o *Options) { o.Region = region }
}

// WithEndpoint sets a custom S3 endpoint URL.
func WithEndpoint(endpoint string) Option {
	return func(o *Options) { o.Endpoint = endpoint }
}

// WithUsePathStyle enables path-style bucket addressing.
func WithUsePathStyle(enabled bool) Option {
	return func(o *Options) { o.UsePathStyle = enabled }
}

// WithUploadConfig sets the multipart upload configuration.
func WithUploadConfig(cfg UploadConfig) Option {
	return func(o *Options) { o.Upload = cfg }
}

func normalizePrefix(prefix string) string {
	prefix = strings.TrimLeft(prefix, "/")
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix
}
