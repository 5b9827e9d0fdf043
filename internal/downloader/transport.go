package downloader

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

const defaultUserAgent = "ubigrab/1.0"

var sharedTransport = &http.Transport{
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 10,
	DialContext: (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	TLSHandshakeTimeout:   10 * time.Second,
	ResponseHeaderTimeout: 15 * time.Second,
	IdleConnTimeout:       90 * time.Second,
}

// insecureTransport mirrors sharedTransport but skips certificate checks.
// Ubicast instances are routinely deployed with self-signed certificates,
// which is why the config's verify flag defaults to false.
var insecureTransport = &http.Transport{
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 10,
	DialContext: (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
	TLSHandshakeTimeout:   10 * time.Second,
	ResponseHeaderTimeout: 15 * time.Second,
	IdleConnTimeout:       90 * time.Second,
	TLSClientConfig:       &tls.Config{InsecureSkipVerify: true}, //nolint:gosec
}

func CloseIdleConnections() {
	sharedTransport.CloseIdleConnections()
	insecureTransport.CloseIdleConnections()
}

// consistentTransport fills in default headers without mutating the
// caller's request.
type consistentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *consistentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	cloned := req.Clone(req.Context())
	if cloned.Header.Get("User-Agent") == "" {
		cloned.Header.Set("User-Agent", t.userAgent)
	}
	if cloned.Header.Get("Accept") == "" {
		cloned.Header.Set("Accept", "application/json")
	}
	return t.base.RoundTrip(cloned)
}

func newHTTPClient(timeout time.Duration, verifyTLS bool) *http.Client {
	base := sharedTransport
	if !verifyTLS {
		base = insecureTransport
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &consistentTransport{
			base:      base,
			userAgent: defaultUserAgent,
		},
	}
}
