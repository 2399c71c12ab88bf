package client

import (
	"context"
	"net/http"
)

// Classification is the result of a size probe: either the resource has a
// known total size, or it is delivered with chunked transfer encoding.
type Classification struct {
	// Chunked reports that the resource arrives in self-delimited chunks.
	Chunked bool

	// Size is the total resource size in bytes. Valid only when !Chunked.
	Size int64
}

// Probe issues a HEAD exchange derived from the request template (method
// replaced, headers carried over, body dropped) and classifies the resource.
//
// A non-200 probe status, or a response carrying neither a Content-Length
// nor a chunked Transfer-Encoding, yields a BadResponseError. A malformed
// Content-Length yields an error wrapping ErrParse.
func (r *Request) Probe(ctx context.Context) (Classification, error) {
	head := r.tmpl.Clone()
	head.Method = "HEAD"
	head.Body = nil

	resp, err := r.client.roundTrip(ctx, r.endpoint, head)
	if err != nil {
		return Classification{}, err
	}

	if resp.Status != http.StatusOK {
		return Classification{}, &BadResponseError{Status: resp.Status, Message: resp.Reason}
	}

	if _, ok := resp.Header.Get("Content-Length"); ok {
		size, err := resp.Header.Uint("Content-Length")
		if err != nil {
			return Classification{}, err
		}
		return Classification{Size: size}, nil
	}

	if resp.Header.Contains("Transfer-Encoding", "chunk") {
		return Classification{Chunked: true}, nil
	}

	return Classification{}, &BadResponseError{
		Status:  resp.Status,
		Message: "cannot determine resource size from headers",
	}
}
