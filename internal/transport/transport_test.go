package transport

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"
)

func serverHostPort(t *testing.T, rawURL string) (string, int) {
	t.Helper()
	u, err := url.Parse(rawURL)
	if err != nil {
		t.Fatalf("parse server url: %v", err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatalf("parse server port: %v", err)
	}
	return u.Hostname(), port
}

func TestDialPlain(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	accepted := make(chan struct{})
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			conn.Close()
		}
		close(accepted)
	}()

	port := ln.Addr().(*net.TCPAddr).Port
	d := NewDialer(nil)

	conn, err := d.Dial(context.Background(), "http", "127.0.0.1", port)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	if _, ok := conn.(*tls.Conn); ok {
		t.Error("expected plain connection for http scheme, got TLS")
	}

	select {
	case <-accepted:
	case <-time.After(5 * time.Second):
		t.Fatal("server never accepted the connection")
	}
}

func TestDialRefused(t *testing.T) {
	// Grab a port that is free, then close the listener so nothing accepts.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	d := NewDialer(nil)
	_, err = d.Dial(context.Background(), "http", "127.0.0.1", port)
	if err == nil {
		t.Fatal("expected dial error")
	}
	if errors.Is(err, ErrConnection) {
		t.Errorf("socket-level dial failure should not map to ErrConnection: %v", err)
	}
}

func TestDialTLS(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	pool := x509.NewCertPool()
	pool.AddCert(server.Certificate())

	host, port := serverHostPort(t, server.URL)
	d := NewDialer(&tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12})

	conn, err := d.Dial(context.Background(), "https", host, port)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	tc, ok := conn.(*tls.Conn)
	if !ok {
		t.Fatal("expected a TLS connection for https scheme")
	}
	if !tc.ConnectionState().HandshakeComplete {
		t.Error("expected a completed handshake")
	}
}

func TestDialTLSUntrustedCert(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	host, port := serverHostPort(t, server.URL)

	// Default config trusts only the system roots, which do not include the
	// test server's self-signed certificate.
	d := NewDialer(nil)
	_, err := d.Dial(context.Background(), "https", host, port)
	if !errors.Is(err, ErrConnection) {
		t.Errorf("expected ErrConnection for untrusted certificate, got %v", err)
	}
}

func TestDialDoesNotMutateConfig(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	pool := x509.NewCertPool()
	pool.AddCert(server.Certificate())

	conf := &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}
	host, port := serverHostPort(t, server.URL)

	d := NewDialer(conf)
	conn, err := d.Dial(context.Background(), "https", host, port)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	conn.Close()

	if conf.ServerName != "" {
		t.Errorf("shared config was mutated: ServerName = %q", conf.ServerName)
	}
}

func TestDefaultTLSConfigShared(t *testing.T) {
	a := DefaultTLSConfig()
	b := DefaultTLSConfig()
	if a != b {
		t.Error("expected the same shared config instance")
	}
	if a.MinVersion != tls.VersionTLS12 {
		t.Errorf("expected TLS 1.2 minimum, got %#x", a.MinVersion)
	}
}
