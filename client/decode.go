package client

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// decodeBody undoes the content codings listed in a Content-Encoding header.
//
// Setting Accept-Encoding explicitly turns off the transparent gzip handling of
// net/http, so the exchange's compressed answers arrive here untouched.
// Codings are undone in reverse order of application. Unknown codings are an error.
func decodeBody(raw []byte, contentEncoding string) ([]byte, error) {
	if len(raw) == 0 || contentEncoding == "" {
		return raw, nil
	}

	codings := strings.Split(contentEncoding, ",")
	body := raw
	for i := len(codings) - 1; i >= 0; i-- {
		coding := strings.ToLower(strings.TrimSpace(codings[i]))

		var reader io.ReadCloser
		switch coding {
		case "", "identity":
			continue
		case "gzip", "x-gzip":
			gr, err := gzip.NewReader(bytes.NewReader(body))
			if err != nil {
				return nil, err
			}
			reader = gr
		case "deflate":
			dr, err := newDeflateReader(body)
			if err != nil {
				return nil, err
			}
			reader = dr
		case "br":
			reader = io.NopCloser(brotli.NewReader(bytes.NewReader(body)))
		case "zstd":
			zr, err := zstd.NewReader(bytes.NewReader(body))
			if err != nil {
				return nil, err
			}
			reader = zr.IOReadCloser()
		default:
			return nil, fmt.Errorf("unsupported content encoding %q", coding)
		}

		decoded, err := io.ReadAll(reader)
		reader.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", coding, err)
		}
		body = decoded
	}
	return body, nil
}

// newDeflateReader reads the zlib-wrapped stream HTTP calls deflate. Some servers
// send a bare DEFLATE stream instead; those are read as such.
func newDeflateReader(body []byte) (io.ReadCloser, error) {
	zr, err := zlib.NewReader(bytes.NewReader(body))
	if errors.Is(err, zlib.ErrHeader) {
		return flate.NewReader(bytes.NewReader(body)), nil
	}
	return zr, err
}
