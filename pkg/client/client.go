// Package client is the Go client for the back-office API. Every call goes
// through the envelope protocol adapter: responses are wrapped in
// {cod_retorno, mensagem, data} and the adapter unwraps data on success or
// surfaces the server message as an *APIError on failure, regardless of the
// HTTP status code. Responses that do not carry the envelope become a
// *TransportError.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// maxBodySize caps how much of a response body the adapter reads. List pages
// are bounded server-side, so anything larger is a broken peer.
const maxBodySize = 8 << 20

// APIError is an application-level failure: the server answered with
// cod_retorno=1 and a human-readable message. The message is surfaced
// verbatim and the request is never retried automatically.
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// TransportError is a network or HTTP failure without a recognizable
// envelope body.
type TransportError struct {
	StatusCode int
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// Client talks to one back-office deployment.
type Client struct {
	base *url.URL
	http *http.Client

	Products  *ProductsService
	Customers *CustomersService
	Orders    *OrdersService
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. The transport is still
// wrapped with otelhttp instrumentation.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a Client for the API rooted at baseURL
// (e.g. "http://localhost:8080/api/v1").
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "parse base url")
	}

	c := &Client{
		base: base,
		http: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}

	rt := c.http.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}
	c.http.Transport = otelhttp.NewTransport(rt)

	c.Products = &ProductsService{c: c}
	c.Customers = &CustomersService{c: c}
	c.Orders = &OrdersService{c: c}
	return c, nil
}

// envelope mirrors the wire-level response wrapper.
type envelope struct {
	Code    int             `json:"cod_retorno"`
	Message *string         `json:"mensagem"`
	Data    json.RawMessage `json:"data"`
}

// do performs one request and applies the envelope contract. When out is
// non-nil the unwrapped data payload is decoded into it.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, header http.Header, in, out any) error {
	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "encode request body")
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "send request")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return errors.Wrap(err, "read response body")
	}

	if !isEnvelope(raw) {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &TransportError{StatusCode: resp.StatusCode}
		}
		// Bare 2xx payload outside the envelope contract (health probes).
		if out != nil {
			return errors.Wrap(json.Unmarshal(raw, out), "decode response")
		}
		return nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return errors.Wrap(err, "decode envelope")
	}
	if env.Code != 0 {
		msg := "request failed"
		if env.Message != nil && *env.Message != "" {
			msg = *env.Message
		}
		return &APIError{Message: msg}
	}
	if out != nil && len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")) {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return errors.Wrap(err, "decode payload")
		}
	}
	return nil
}

// isEnvelope reports whether the body is a JSON object carrying the
// cod_retorno key. It streams over the top-level keys without materializing
// the payload, so the check is cheap even for large pages.
func isEnvelope(raw []byte) bool {
	d := jx.DecodeBytes(raw)
	if d.Next() != jx.Object {
		return false
	}
	found := false
	err := d.Obj(func(d *jx.Decoder, key string) error {
		if key == "cod_retorno" {
			found = true
		}
		return d.Skip()
	})
	return err == nil && found
}
