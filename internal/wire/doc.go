// Package wire implements HTTP/1.1 message framing for the transfer engine.
//
// This package handles:
//   - Request serialization ({method, path, headers, body} to raw bytes)
//   - Response parsing (status line, headers, body)
//   - Chunked transfer decoding
//   - Ordered, case-insensitive header access with typed value coercion
//
// It deliberately knows nothing about transports or download strategy; it
// reads from and writes to plain byte streams.
//
// # Usage
//
//	req := &wire.Request{Method: "GET", Path: "/file.bin"}
//	req.Header.Put("Host", "example.com")
//	req.WriteTo(conn)
//
//	resp, err := wire.ReadResponse(bufio.NewReader(conn), false)
//	// resp.Status, resp.Reason, resp.Header, resp.Body
package wire
