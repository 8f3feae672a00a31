package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/net/context/ctxhttp"
)

// HttpRequest represents an outgoing HTTP request to an exchange
type HttpRequest struct {
	Method  string
	Uri     string
	Body    []byte
	Headers map[string]string
	// WithCredentials asks the transport to attach ambient credentials (cookies) to the call.
	WithCredentials bool
}

// HttpResponse represents a response from an exchange.
//
// Body is the payload as received; any Content-Encoding named in Headers still applies.
type HttpResponse struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// Transport performs exactly one HTTP exchange.
//
// Redirects, TLS and connection reuse are the transport's business; it must not retry.
type Transport interface {
	Send(ctx context.Context, req *HttpRequest) (*HttpResponse, error)
}

// HTTPTransport is a Transport backed by net/http.
//
// Cookies live in Jar and are only attached to, or collected from, calls that set
// WithCredentials. The wrapped http.Client never sees the jar.
type HTTPTransport struct {
	client *http.Client
	jar    http.CookieJar
}

// NewHTTPTransport returns a Transport sending through client (http.DefaultClient if nil).
// If jar is nil the client's own jar, if any, is taken over as the credential store.
func NewHTTPTransport(client *http.Client, jar http.CookieJar) *HTTPTransport {
	if client == nil {
		client = http.DefaultClient
	}
	if jar == nil {
		jar = client.Jar
	}
	detached := *client
	detached.Jar = nil
	return &HTTPTransport{
		client: &detached,
		jar:    jar,
	}
}

func (t *HTTPTransport) Send(ctx context.Context, req *HttpRequest) (*HttpResponse, error) {
	httpReq, err := http.NewRequest(req.Method, req.Uri, bytes.NewReader(req.Body))
	if err != nil {
		return nil, err
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	credentials := req.WithCredentials && t.jar != nil
	if credentials {
		for _, cookie := range t.jar.Cookies(httpReq.URL) {
			httpReq.AddCookie(cookie)
		}
	}

	httpResp, err := ctxhttp.Do(ctx, t.client, httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if credentials {
		if cookies := httpResp.Cookies(); len(cookies) > 0 {
			t.jar.SetCookies(httpReq.URL, cookies)
		}
	}

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return &HttpResponse{
		StatusCode: httpResp.StatusCode,
		Body:       body,
		Headers:    httpResp.Header,
	}, nil
}
