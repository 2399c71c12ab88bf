package client

import (
	"errors"
	"fmt"

	"github.com/WillDeJs/http-client/internal/transport"
	"github.com/WillDeJs/http-client/internal/wire"
)

// Error kinds surfaced by the engine. I/O failures on an established channel
// are returned as plain wrapped errors from the net package.
var (
	// ErrInvalidURL is wrapped by errors from URL parsing.
	ErrInvalidURL = errors.New("client: invalid url")

	// ErrConnection is wrapped by TLS handshake and server identity failures.
	ErrConnection = transport.ErrConnection

	// ErrParse is wrapped by malformed numeric header values and malformed
	// response framing.
	ErrParse = wire.ErrParse
)

// BadResponseError reports an unexpected status code or a structurally
// invalid or missing header encountered by the download orchestration.
type BadResponseError struct {
	Status  int
	Message string
}

func (e *BadResponseError) Error() string {
	return fmt.Sprintf("client: bad response: %d: %s", e.Status, e.Message)
}
