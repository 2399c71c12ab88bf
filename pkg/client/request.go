package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/WillDeJs/http-client/internal/wire"
)

// Request is a single logical operation against one URL: a request template
// plus the endpoint it targets. Builder methods mutate the template and
// return the receiver for chaining.
type Request struct {
	client   *Client
	endpoint Endpoint
	tmpl     *wire.Request
}

// Header sets a header on the request, overwriting any existing value for
// the same name.
func (r *Request) Header(name, value string) *Request {
	r.tmpl.Header.Put(name, value)
	return r
}

// Body appends data to the request body.
func (r *Request) Body(data []byte) *Request {
	r.tmpl.Body = append(r.tmpl.Body, data...)
	return r
}

// FormData appends a URL-encoded form entry to the request body and marks
// the body as form-encoded.
func (r *Request) FormData(name, value string) *Request {
	r.tmpl.Header.Put("Content-Type", "application/x-www-form-urlencoded")
	pair := url.QueryEscape(name) + "=" + url.QueryEscape(value)
	if len(r.tmpl.Body) > 0 {
		pair = "&" + pair
	}
	r.tmpl.Body = append(r.tmpl.Body, pair...)
	return r
}

// Send performs a single request/response exchange over a fresh transport
// channel. It is the primitive every other operation builds on; no size
// logic is involved.
func (r *Request) Send(ctx context.Context) (*wire.Response, error) {
	return r.client.roundTrip(ctx, r.endpoint, r.tmpl.Clone())
}

// Download retrieves the resource and returns the fully accumulated body.
// Sized resources are fetched in bounded windows into a buffer pre-sized to
// the known total; chunked resources arrive in a single exchange.
func (r *Request) Download(ctx context.Context) ([]byte, error) {
	class, err := r.Probe(ctx)
	if err != nil {
		return nil, err
	}

	if class.Chunked {
		return r.downloadChunked(ctx)
	}

	buf := bytes.NewBuffer(make([]byte, 0, class.Size))
	if err := r.downloadSized(ctx, class.Size, buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DownloadTo retrieves the resource into sink. Sized resources are streamed
// window by window without retaining previously-written bytes; chunked
// resources are materialized in memory first and written once, since their
// size is unknown up front.
func (r *Request) DownloadTo(ctx context.Context, sink io.Writer) error {
	class, err := r.Probe(ctx)
	if err != nil {
		return err
	}

	if class.Chunked {
		body, err := r.downloadChunked(ctx)
		if err != nil {
			return err
		}
		if _, err := sink.Write(body); err != nil {
			return fmt.Errorf("client: writing to sink: %w", err)
		}
		return nil
	}

	return r.downloadSized(ctx, class.Size, sink)
}

// downloadChunked issues one request identical to the template; the wire
// layer decodes the chunked framing into a single complete body.
func (r *Request) downloadChunked(ctx context.Context) ([]byte, error) {
	resp, err := r.client.roundTrip(ctx, r.endpoint, r.tmpl.Clone())
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}
