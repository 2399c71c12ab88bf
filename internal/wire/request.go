package wire

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
)

// Request is an HTTP request to be serialized onto a transport channel.
type Request struct {
	Method string
	Path   string
	Header Header
	Body   []byte
}

// Clone returns a deep copy of the request. The body slice is shared.
func (r *Request) Clone() *Request {
	return &Request{
		Method: r.Method,
		Path:   r.Path,
		Header: r.Header.Clone(),
		Body:   r.Body,
	}
}

// WriteTo serializes the request in HTTP/1.1 wire format. A Content-Length
// header is emitted for non-empty bodies unless one is already set.
func (r *Request) WriteTo(w io.Writer) (int64, error) {
	path := r.Path
	if path == "" {
		path = "/"
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s %s HTTP/1.1\r\n", r.Method, path)
	for _, f := range r.Header.Fields() {
		fmt.Fprintf(&buf, "%s: %s\r\n", f.Name, f.Value)
	}
	if len(r.Body) > 0 {
		if _, ok := r.Header.Get("Content-Length"); !ok {
			fmt.Fprintf(&buf, "Content-Length: %s\r\n", strconv.Itoa(len(r.Body)))
		}
	}
	buf.WriteString("\r\n")
	buf.Write(r.Body)

	n, err := w.Write(buf.Bytes())
	return int64(n), err
}
