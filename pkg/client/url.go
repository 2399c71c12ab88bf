package client

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Endpoint identifies the target of a request: scheme, host, port and
// request path. Produced by ParseURL and owned by the caller.
type Endpoint struct {
	Scheme string
	Host   string
	Port   int
	Path   string
}

// hostHeader returns the Host header value for the endpoint. The port is
// included only when it differs from the scheme default.
func (e Endpoint) hostHeader() string {
	if e.Port == defaultPort(e.Scheme) {
		return e.Host
	}
	return e.Host + ":" + strconv.Itoa(e.Port)
}

func defaultPort(scheme string) int {
	if strings.EqualFold(scheme, "https") {
		return 443
	}
	return 80
}

// ParseURL extracts an Endpoint from a URL string. A missing scheme defaults
// to "http". Errors wrap ErrInvalidURL.
func ParseURL(rawURL string) (Endpoint, error) {
	if !strings.Contains(rawURL, "://") {
		rawURL = "http://" + rawURL
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return Endpoint{}, fmt.Errorf("%w: %q: %v", ErrInvalidURL, rawURL, err)
	}
	if u.Hostname() == "" {
		return Endpoint{}, fmt.Errorf("%w: %q: missing host", ErrInvalidURL, rawURL)
	}

	port := defaultPort(u.Scheme)
	if p := u.Port(); p != "" {
		port, err = strconv.Atoi(p)
		if err != nil || port <= 0 || port > 65535 {
			return Endpoint{}, fmt.Errorf("%w: %q: bad port %q", ErrInvalidURL, rawURL, p)
		}
	}

	path := u.RequestURI()
	if path == "" {
		path = "/"
	}

	return Endpoint{
		Scheme: u.Scheme,
		Host:   u.Hostname(),
		Port:   port,
		Path:   path,
	}, nil
}
