package wire

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const maxHeaderBytes = 64 * 1024

// Response is a parsed HTTP response.
type Response struct {
	Status int
	Reason string
	Header Header
	Body   []byte
}

// ReadResponse reads and parses a single HTTP/1.1 response from r.
// When headOnly is set (HEAD and CONNECT exchanges), parsing stops after the
// header block and no body is consumed.
//
// Chunked transfer framing is decoded transparently; the returned body holds
// the reassembled payload. Responses with neither Content-Length nor chunked
// framing are read until the peer closes the connection.
func ReadResponse(r *bufio.Reader, headOnly bool) (*Response, error) {
	resp := &Response{}

	line, err := readLine(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading status line: %v", ErrParse, err)
	}
	if err := parseStatusLine(line, resp); err != nil {
		return nil, err
	}

	if err := readHeader(r, &resp.Header); err != nil {
		return nil, err
	}

	if headOnly {
		return resp, nil
	}

	body, err := readBody(r, &resp.Header)
	if err != nil {
		return nil, err
	}
	resp.Body = body

	return resp, nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func parseStatusLine(line string, resp *Response) error {
	parts := strings.SplitN(line, " ", 3)
	if len(parts) < 2 || !strings.HasPrefix(parts[0], "HTTP/") {
		return fmt.Errorf("%w: malformed status line %q", ErrParse, line)
	}
	code, err := strconv.Atoi(parts[1])
	if err != nil {
		return fmt.Errorf("%w: malformed status code %q", ErrParse, parts[1])
	}
	resp.Status = code
	if len(parts) == 3 {
		resp.Reason = parts[2]
	}
	return nil
}

func readHeader(r *bufio.Reader, h *Header) error {
	total := 0
	for {
		line, err := readLine(r)
		if err != nil {
			return fmt.Errorf("%w: reading headers: %v", ErrParse, err)
		}
		if line == "" {
			return nil
		}

		total += len(line)
		if total > maxHeaderBytes {
			return fmt.Errorf("%w: header block exceeds %d bytes", ErrParse, maxHeaderBytes)
		}

		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return fmt.Errorf("%w: malformed header line %q", ErrParse, line)
		}
		h.Put(strings.TrimSpace(name), strings.TrimSpace(value))
	}
}

func readBody(r *bufio.Reader, h *Header) ([]byte, error) {
	if h.Contains("Transfer-Encoding", "chunked") {
		return readChunkedBody(r)
	}

	if _, ok := h.Get("Content-Length"); ok {
		length, err := h.Uint("Content-Length")
		if err != nil {
			return nil, err
		}
		body := make([]byte, length)
		if _, err := io.ReadFull(r, body); err != nil {
			return nil, fmt.Errorf("wire: reading body: %w", err)
		}
		return body, nil
	}

	// No framing information: body extends until the peer closes.
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("wire: reading body: %w", err)
	}
	return body, nil
}

func readChunkedBody(r *bufio.Reader) ([]byte, error) {
	var body bytes.Buffer
	for {
		line, err := readLine(r)
		if err != nil {
			return nil, fmt.Errorf("%w: reading chunk size: %v", ErrParse, err)
		}

		// Chunk extensions after ";" are ignored.
		sizeTok, _, _ := strings.Cut(line, ";")
		size, err := strconv.ParseInt(strings.TrimSpace(sizeTok), 16, 64)
		if err != nil || size < 0 {
			return nil, fmt.Errorf("%w: malformed chunk size %q", ErrParse, line)
		}
		if size == 0 {
			break
		}

		if _, err := io.CopyN(&body, r, size); err != nil {
			return nil, fmt.Errorf("wire: reading chunk: %w", err)
		}

		crlf := make([]byte, 2)
		if _, err := io.ReadFull(r, crlf); err != nil {
			return nil, fmt.Errorf("wire: reading chunk terminator: %w", err)
		}
	}

	// Trailer section: skip until the blank line.
	for {
		line, err := readLine(r)
		if err != nil {
			return nil, fmt.Errorf("%w: reading trailers: %v", ErrParse, err)
		}
		if line == "" {
			break
		}
	}

	return body.Bytes(), nil
}
