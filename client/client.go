package client

import (
	"context"
	"errors"
	"maps"
	"net/http"
	"strings"

	"openrtb-fastly-compute/errortypes"
	"openrtb-fastly-compute/util/jsonutil"
)

// Defaults applied to every Config field left empty.
const (
	DefaultDataFormat      = "application/json"
	DefaultAcceptEncoding  = "gzip"
	DefaultContentEncoding = "gzip"
	DefaultCacheControl    = "no-store"
)

// Header names of the fixed protocol header set.
const (
	HeaderContentType     = "Content-Type"
	HeaderAcceptEncoding  = "Accept-Encoding"
	HeaderContentEncoding = "Content-Encoding"
	HeaderOpenRTBVersion  = "x-openrtb-version"
	HeaderCacheControl    = "Cache-Control"
)

// Config fully determines the requests a Client sends.
type Config struct {
	Endpoint string
	// Version is sent as the x-openrtb-version header, e.g. "2.6".
	Version         string
	DataFormat      string
	AcceptEncoding  string
	ContentEncoding string
	CacheControl    string
	// CustomHeaders are sent as given unless they name one of the fixed protocol headers.
	CustomHeaders map[string]string
	// WithCredentials attaches ambient credentials (cookies) to the call. Off unless set.
	WithCredentials bool
}

func (cfg Config) withDefaults() Config {
	if cfg.DataFormat == "" {
		cfg.DataFormat = DefaultDataFormat
	}
	if cfg.AcceptEncoding == "" {
		cfg.AcceptEncoding = DefaultAcceptEncoding
	}
	if cfg.ContentEncoding == "" {
		cfg.ContentEncoding = DefaultContentEncoding
	}
	if cfg.CacheControl == "" {
		cfg.CacheControl = DefaultCacheControl
	}
	cfg.CustomHeaders = maps.Clone(cfg.CustomHeaders)
	return cfg
}

var errNoResponse = errors.New("transport returned no response")

// Client performs one OpenRTB exchange per Request call.
type Client struct {
	cfg       Config
	transport Transport
}

// New returns a Client for cfg. A nil transport sends through http.DefaultClient.
func New(transport Transport, cfg Config) *Client {
	if transport == nil {
		transport = NewHTTPTransport(nil, nil)
	}
	return &Client{
		cfg:       cfg.withDefaults(),
		transport: transport,
	}
}

// Headers returns the header set sent with every request: the custom headers,
// overridden by the fixed protocol headers on a case-insensitive name match.
func (c *Client) Headers() map[string]string {
	fixed := map[string]string{
		HeaderContentType:     c.cfg.DataFormat,
		HeaderAcceptEncoding:  c.cfg.AcceptEncoding,
		HeaderContentEncoding: c.cfg.ContentEncoding,
		HeaderOpenRTBVersion:  c.cfg.Version,
		HeaderCacheControl:    c.cfg.CacheControl,
	}

	headers := make(map[string]string, len(c.cfg.CustomHeaders)+len(fixed))
	for name, value := range c.cfg.CustomHeaders {
		if isFixedHeader(name) {
			continue
		}
		headers[name] = value
	}
	maps.Copy(headers, fixed)
	return headers
}

func isFixedHeader(name string) bool {
	for _, fixed := range []string{HeaderContentType, HeaderAcceptEncoding, HeaderContentEncoding, HeaderOpenRTBVersion, HeaderCacheControl} {
		if strings.EqualFold(name, fixed) {
			return true
		}
	}
	return false
}

// Request serializes payload, POSTs it to the endpoint and decodes a 200 response into out.
//
// Any returned error is one of *errortypes.NoBidResponse, *errortypes.InvalidBidRequest
// or *errortypes.Unexpected.
func (c *Client) Request(ctx context.Context, payload, out any) error {
	body, err := jsonutil.Marshal(payload)
	if err != nil {
		return errortypes.NewUnexpectedError("marshal bid request", err)
	}

	resp, err := c.transport.Send(ctx, &HttpRequest{
		Method:          http.MethodPost,
		Uri:             c.cfg.Endpoint,
		Body:            body,
		Headers:         c.Headers(),
		WithCredentials: c.cfg.WithCredentials,
	})
	if err != nil {
		return errortypes.NewUnexpectedError("send bid request", err)
	}
	if resp == nil {
		return errortypes.NewUnexpectedError("send bid request", errNoResponse)
	}

	return classify(resp, out)
}

// classify maps the status to an outcome. The body is only required to decode on a 200.
func classify(resp *HttpResponse, out any) error {
	switch resp.StatusCode {
	case http.StatusOK:
		body, err := decodeBody(resp.Body, resp.Headers.Get(HeaderContentEncoding))
		if err != nil {
			return errortypes.NewUnexpectedError("decode bid response", err)
		}
		if err := jsonutil.Unmarshal(body, out); err != nil {
			return errortypes.NewUnexpectedError("unmarshal bid response", err)
		}
		return nil
	case http.StatusNoContent:
		return errortypes.NewNoBidResponse()
	case http.StatusBadRequest:
		return errortypes.NewInvalidBidRequest(string(diagnostic(resp)))
	default:
		return errortypes.NewUnexpectedStatus(resp.StatusCode)
	}
}

// diagnostic is the body of an error response, decoded when its Content-Encoding allows.
func diagnostic(resp *HttpResponse) []byte {
	body, err := decodeBody(resp.Body, resp.Headers.Get(HeaderContentEncoding))
	if err != nil {
		return resp.Body
	}
	return body
}
