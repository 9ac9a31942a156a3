package client

import (
	"net"
	"net/http"
	"time"
)

// KeepAlive specifies default interval between TCP keep-alive probes.
const KeepAlive = 10 * time.Second

// DefaultTransport returns a transport that opens a new connection for each request.
// Idle connections are never kept, so there is no connection pool.
func DefaultTransport() http.RoundTripper {
	dialer := Dialer()
	return &http.Transport{
		Proxy:             http.ProxyFromEnvironment,
		DialContext:       dialer.DialContext,
		ForceAttemptHTTP2: true,
		DisableKeepAlives: true,
	}
}

// Dialer - default dialer.
func Dialer() *net.Dialer {
	return &net.Dialer{
		KeepAlive: KeepAlive,
	}
}
