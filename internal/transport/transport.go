package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
)

// ErrConnection is wrapped by errors from TLS handshake or server identity
// failures. Socket-level dial and read/write failures are returned as plain
// wrapped I/O errors instead.
var ErrConnection = errors.New("transport: connection failed")

// defaultTLS builds the process-wide trust configuration exactly once.
// The config uses the system root store and is read-only after creation,
// so it is safe to share across concurrent dials.
var defaultTLS = sync.OnceValue(func() *tls.Config {
	return &tls.Config{MinVersion: tls.VersionTLS12}
})

// DefaultTLSConfig returns the shared read-only TLS configuration used when a
// Dialer is constructed without an explicit one.
func DefaultTLSConfig() *tls.Config {
	return defaultTLS()
}

// Dialer opens transport channels. The zero value is not usable; construct
// with NewDialer.
type Dialer struct {
	tlsConf *tls.Config
}

// NewDialer returns a Dialer. A nil tlsConf selects the shared default
// configuration. The config is treated as immutable; per-dial server names
// are applied to a clone.
func NewDialer(tlsConf *tls.Config) *Dialer {
	if tlsConf == nil {
		tlsConf = DefaultTLSConfig()
	}
	return &Dialer{tlsConf: tlsConf}
}

// Dial opens a new channel to host:port. The "https" scheme yields a
// TLS-secured channel with the server name set to host; any other scheme
// yields a plain TCP channel. The caller owns the returned connection and
// must close it when the exchange completes.
func (d *Dialer) Dial(ctx context.Context, scheme, host string, port int) (net.Conn, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	var nd net.Dialer
	conn, err := nd.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", addr, err)
	}

	if !strings.EqualFold(scheme, "https") {
		return conn, nil
	}

	conf := d.tlsConf.Clone()
	conf.ServerName = host

	tc := tls.Client(conn, conf)
	if err := tc.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: handshake with %s: %v", ErrConnection, addr, err)
	}
	return tc, nil
}
