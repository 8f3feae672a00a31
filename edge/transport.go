// Package edge sends exchange calls from a Fastly Compute service.
package edge

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/fastly/compute-sdk-go/fsthttp"

	"openrtb-fastly-compute/client"
)

// Transport is a client.Transport that sends through a named Fastly backend.
//
// The inbound request's Cookie header is the only ambient credential at the edge;
// it is forwarded to the exchange only for calls that set WithCredentials.
type Transport struct {
	backend string
	cookie  string
}

// NewTransport returns a Transport for backend carrying the inbound Cookie header value.
func NewTransport(backend, cookie string) *Transport {
	return &Transport{
		backend: backend,
		cookie:  cookie,
	}
}

func (t *Transport) Send(ctx context.Context, req *client.HttpRequest) (*client.HttpResponse, error) {
	bereq, err := fsthttp.NewRequest(req.Method, req.Uri, bytes.NewReader(req.Body))
	if err != nil {
		return nil, fmt.Errorf("create backend request: %w", err)
	}
	for k, v := range OutboundHeaders(req, t.cookie) {
		bereq.Header.Set(k, v)
	}
	if bypassCache(req.Headers) {
		bereq.CacheOptions.Pass = true
	}

	beresp, err := bereq.Send(ctx, t.backend)
	if err != nil {
		return nil, fmt.Errorf("send to backend %s: %w", t.backend, err)
	}
	defer beresp.Body.Close()

	body, err := io.ReadAll(beresp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	headers := make(http.Header, len(beresp.Header))
	for k, v := range beresp.Header {
		headers[k] = v
	}

	return &client.HttpResponse{
		StatusCode: beresp.StatusCode,
		Body:       body,
		Headers:    headers,
	}, nil
}

// OutboundHeaders returns the headers to set on the backend request: the request's own
// headers plus the inbound cookie when credentials were asked for.
func OutboundHeaders(req *client.HttpRequest, cookie string) map[string]string {
	headers := make(map[string]string, len(req.Headers)+1)
	for k, v := range req.Headers {
		headers[k] = v
	}
	if req.WithCredentials && cookie != "" {
		headers["Cookie"] = cookie
	}
	return headers
}

func bypassCache(headers map[string]string) bool {
	for k, v := range headers {
		if !strings.EqualFold(k, client.HeaderCacheControl) {
			continue
		}
		for _, directive := range strings.Split(v, ",") {
			switch strings.ToLower(strings.TrimSpace(directive)) {
			case "no-store", "no-cache":
				return true
			}
		}
	}
	return false
}
