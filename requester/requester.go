// Package requester sends OpenRTB bid requests to an exchange, one entry point per protocol version.
package requester

import (
	"context"

	"github.com/prebid/openrtb/v20/openrtb2"

	"openrtb-fastly-compute/client"
)

// OpenRTB protocol version markers sent in the x-openrtb-version header.
const (
	VersionV25 = "2.5"
	VersionV26 = "2.6"
	VersionV30 = "3.0"
)

// Requester sends one bid request per call and returns the exchange's answer.
//
// Failures are *errortypes.NoBidResponse, *errortypes.InvalidBidRequest or *errortypes.Unexpected.
type Requester interface {
	RequestV25(ctx context.Context, endpoint string, bidRequest *openrtb2.BidRequest, opts *Options) (*openrtb2.BidResponse, error)
	RequestV26(ctx context.Context, endpoint string, bidRequest *openrtb2.BidRequest, opts *Options) (*openrtb2.BidResponse, error)
	RequestV30(ctx context.Context, endpoint string, message *Message, opts *Options) (*Message, error)
}

// BidRequester implements Requester on top of client.Client.
//
// Its state is fixed at construction, so a BidRequester may be shared between goroutines.
type BidRequester struct {
	transport       client.Transport
	defaults        Options
	cacheControl    string
	withCredentials bool
}

var _ Requester = (*BidRequester)(nil)

// New returns a BidRequester sending through transport with the given defaults.
func New(transport client.Transport, defaults Options, opts ...Option) *BidRequester {
	r := &BidRequester{
		transport: transport,
		defaults:  defaults.Merge(nil),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *BidRequester) RequestV25(ctx context.Context, endpoint string, bidRequest *openrtb2.BidRequest, opts *Options) (*openrtb2.BidResponse, error) {
	return request[openrtb2.BidResponse](ctx, r.newClient(VersionV25, endpoint, opts), bidRequest)
}

func (r *BidRequester) RequestV26(ctx context.Context, endpoint string, bidRequest *openrtb2.BidRequest, opts *Options) (*openrtb2.BidResponse, error) {
	return request[openrtb2.BidResponse](ctx, r.newClient(VersionV26, endpoint, opts), bidRequest)
}

func (r *BidRequester) RequestV30(ctx context.Context, endpoint string, message *Message, opts *Options) (*Message, error) {
	return request[Message](ctx, r.newClient(VersionV30, endpoint, opts), message)
}

// newClient builds the single-use client for one call.
func (r *BidRequester) newClient(version, endpoint string, opts *Options) *client.Client {
	merged := r.defaults.Merge(opts)
	return client.New(r.transport, client.Config{
		Endpoint:        endpoint,
		Version:         version,
		DataFormat:      merged.DataFormat,
		AcceptEncoding:  merged.AcceptEncoding,
		ContentEncoding: merged.ContentEncoding,
		CacheControl:    r.cacheControl,
		CustomHeaders:   merged.CustomHeaders,
		WithCredentials: r.withCredentials,
	})
}

func request[Res any](ctx context.Context, c *client.Client, payload any) (*Res, error) {
	var res Res
	if err := c.Request(ctx, payload, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
