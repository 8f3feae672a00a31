package requester

import "maps"

// Options are the per-requester defaults and per-call overrides recognized by BidRequester.
//
// An empty string or a nil map means "not set". Set fields of a per-call Options
// replace the requester defaults key by key; CustomHeaders is replaced as a whole.
type Options struct {
	DataFormat      string            `yaml:"data-format"`
	AcceptEncoding  string            `yaml:"accept-encoding"`
	ContentEncoding string            `yaml:"content-encoding"`
	CustomHeaders   map[string]string `yaml:"custom-headers"`
}

// Merge returns o overridden by every field set in override. Neither argument is modified.
func (o Options) Merge(override *Options) Options {
	merged := o
	merged.CustomHeaders = maps.Clone(o.CustomHeaders)
	if override == nil {
		return merged
	}

	if override.DataFormat != "" {
		merged.DataFormat = override.DataFormat
	}
	if override.AcceptEncoding != "" {
		merged.AcceptEncoding = override.AcceptEncoding
	}
	if override.ContentEncoding != "" {
		merged.ContentEncoding = override.ContentEncoding
	}
	if override.CustomHeaders != nil {
		merged.CustomHeaders = maps.Clone(override.CustomHeaders)
	}
	return merged
}

// Option configures the transport-owned settings of a BidRequester.
type Option func(*BidRequester)

// WithCredentials controls whether ambient credentials are attached to every call.
func WithCredentials(include bool) Option {
	return func(r *BidRequester) {
		r.withCredentials = include
	}
}

// WithCacheControl sets the Cache-Control directive of every call. Empty keeps the client default.
func WithCacheControl(directive string) Option {
	return func(r *BidRequester) {
		r.cacheControl = directive
	}
}
