package client

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"

	"github.com/WillDeJs/http-client/internal/transport"
	"github.com/WillDeJs/http-client/internal/wire"
)

// DefaultBlockSize is the maximum number of bytes requested per sub-fetch of
// a segmented download.
const DefaultBlockSize = 1_000_000

const defaultUserAgent = "http-client/1.0"

// Client issues HTTP(S) requests over per-request transport channels.
// A Client is safe for concurrent use; it holds only read-only configuration.
type Client struct {
	dialer    *transport.Dialer
	blockSize int64
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithBlockSize sets the maximum bytes requested per sub-fetch of a
// segmented download. Non-positive values are ignored.
func WithBlockSize(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.blockSize = n
		}
	}
}

// WithTLSConfig sets the TLS configuration used for secure channels. The
// config is treated as immutable once passed in.
func WithTLSConfig(conf *tls.Config) Option {
	return func(c *Client) {
		c.dialer = transport.NewDialer(conf)
	}
}

// WithUserAgent overrides the User-Agent header set on every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// New returns a Client ready for use.
func New(opts ...Option) *Client {
	c := &Client{
		dialer:    transport.NewDialer(nil),
		blockSize: DefaultBlockSize,
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get creates a new GET request to the given URL.
func (c *Client) Get(rawURL string) (*Request, error) {
	return c.newRequest("GET", rawURL)
}

// Head creates a new HEAD request to the given URL.
func (c *Client) Head(rawURL string) (*Request, error) {
	return c.newRequest("HEAD", rawURL)
}

// Post creates a new POST request to the given URL.
func (c *Client) Post(rawURL string) (*Request, error) {
	return c.newRequest("POST", rawURL)
}

// Put creates a new PUT request to the given URL.
func (c *Client) Put(rawURL string) (*Request, error) {
	return c.newRequest("PUT", rawURL)
}

// Patch creates a new PATCH request to the given URL.
func (c *Client) Patch(rawURL string) (*Request, error) {
	return c.newRequest("PATCH", rawURL)
}

// Delete creates a new DELETE request to the given URL.
func (c *Client) Delete(rawURL string) (*Request, error) {
	return c.newRequest("DELETE", rawURL)
}

// Options creates a new OPTIONS request to the given URL.
func (c *Client) Options(rawURL string) (*Request, error) {
	return c.newRequest("OPTIONS", rawURL)
}

func (c *Client) newRequest(method, rawURL string) (*Request, error) {
	ep, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}

	tmpl := &wire.Request{
		Method: method,
		Path:   ep.Path,
	}
	tmpl.Header.Put("User-Agent", c.userAgent)
	tmpl.Header.Put("Host", ep.hostHeader())

	return &Request{
		client:   c,
		endpoint: ep,
		tmpl:     tmpl,
	}, nil
}

// roundTrip performs one request/response exchange over a fresh channel.
// The channel is closed before returning.
func (c *Client) roundTrip(ctx context.Context, ep Endpoint, req *wire.Request) (*wire.Response, error) {
	conn, err := c.dialer.Dial(ctx, ep.Scheme, ep.Host, ep.Port)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if _, err := req.WriteTo(conn); err != nil {
		return nil, fmt.Errorf("client: writing request: %w", err)
	}

	headOnly := req.Method == "HEAD" || req.Method == "CONNECT"
	resp, err := wire.ReadResponse(bufio.NewReader(conn), headOnly)
	if err != nil {
		return nil, err
	}
	return resp, nil
}
