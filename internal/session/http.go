package session

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	. "github.com/roelfdiedericks/pplxmodels/internal/logging"
)

// MaxBodySize caps a response body after decoding.
const MaxBodySize = 16 << 20

// ErrBodyTooLarge is returned when a decoded body exceeds the cap.
var ErrBodyTooLarge = errors.New("response body too large")

type httpClient struct {
	client  *http.Client
	headers map[string]string
	cookie  *http.Cookie
	maxBody int64
}

func newHTTPClient(opts Options) *httpClient {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ForceAttemptHTTP2 = true

	headers := Headers(opts.BaseURL)
	for k, v := range chromeHeaders {
		headers[k] = v
	}

	return &httpClient{
		client:  &http.Client{Timeout: opts.Timeout, Transport: transport},
		headers: headers,
		cookie:  &http.Cookie{Name: SessionCookieName, Value: opts.Token},
		maxBody: MaxBodySize,
	}
}

func (c *httpClient) Get(ctx context.Context, url string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if c.cookie.Value != "" {
		req.AddCookie(c.cookie)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// Accept-Encoding is set by hand, so net/http leaves decoding to us.
	body, err := decodeBody(resp.Header.Get("Content-Encoding"), resp.Body, c.maxBody)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	L_trace("session: GET done", "url", url, "status", resp.StatusCode, "bytes", len(body))
	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

func (c *httpClient) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// decodeBody decompresses r according to encoding and reads at most limit
// decoded bytes. Compressed input is bounded by the same limit.
func decodeBody(encoding string, r io.Reader, limit int64) ([]byte, error) {
	r = io.LimitReader(r, limit+1)

	var dec io.Reader
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "identity":
		dec = r
	case "gzip", "x-gzip":
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		dec = zr
	case "deflate":
		raw, err := readLimited(r, limit)
		if err != nil {
			return nil, err
		}
		// Servers disagree on whether deflate means zlib-wrapped or raw.
		if zr, err := zlib.NewReader(bytes.NewReader(raw)); err == nil {
			out, err := readLimited(zr, limit)
			zr.Close()
			if err == nil || errors.Is(err, ErrBodyTooLarge) {
				return out, err
			}
		}
		fr := flate.NewReader(bytes.NewReader(raw))
		defer fr.Close()
		dec = fr
	case "br":
		dec = brotli.NewReader(r)
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", encoding)
	}
	return readLimited(dec, limit)
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w (limit %d bytes)", ErrBodyTooLarge, limit)
	}
	return data, nil
}
