package downloader

import (
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

type captureRoundTripper struct {
	req *http.Request
}

func (c *captureRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	c.req = req
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader("{}")),
		Header:     make(http.Header),
	}, nil
}

func TestConsistentTransportDefaultsHeaders(t *testing.T) {
	capture := &captureRoundTripper{}
	transport := &consistentTransport{base: capture, userAgent: defaultUserAgent}

	req, err := http.NewRequest(http.MethodGet, "https://media.example.edu/api/v2/", nil)
	if err != nil {
		t.Fatalf("NewRequest failed: %v", err)
	}
	resp, err := transport.RoundTrip(req)
	if err != nil {
		t.Fatalf("RoundTrip returned error: %v", err)
	}
	resp.Body.Close()

	if got := capture.req.Header.Get("User-Agent"); got != defaultUserAgent {
		t.Fatalf("User-Agent = %q, want %q", got, defaultUserAgent)
	}
	if got := capture.req.Header.Get("Accept"); got != "application/json" {
		t.Fatalf("Accept = %q, want application/json", got)
	}
}

func TestConsistentTransportKeepsCallerHeaders(t *testing.T) {
	capture := &captureRoundTripper{}
	transport := &consistentTransport{base: capture, userAgent: defaultUserAgent}

	req, err := http.NewRequest(http.MethodGet, "https://media.example.edu/api/v2/", nil)
	if err != nil {
		t.Fatalf("NewRequest failed: %v", err)
	}
	req.Header.Set("User-Agent", "custom/2.0")
	req.Header.Set("Accept", "text/plain")

	resp, err := transport.RoundTrip(req)
	if err != nil {
		t.Fatalf("RoundTrip returned error: %v", err)
	}
	resp.Body.Close()

	if got := capture.req.Header.Get("User-Agent"); got != "custom/2.0" {
		t.Fatalf("User-Agent = %q, want custom/2.0", got)
	}
	if got := capture.req.Header.Get("Accept"); got != "text/plain" {
		t.Fatalf("Accept = %q, want text/plain", got)
	}
}

func TestConsistentTransportDoesNotMutateRequest(t *testing.T) {
	capture := &captureRoundTripper{}
	transport := &consistentTransport{base: capture, userAgent: defaultUserAgent}

	req, err := http.NewRequest(http.MethodGet, "https://media.example.edu/api/v2/", nil)
	if err != nil {
		t.Fatalf("NewRequest failed: %v", err)
	}
	resp, err := transport.RoundTrip(req)
	if err != nil {
		t.Fatalf("RoundTrip returned error: %v", err)
	}
	resp.Body.Close()

	if got := req.Header.Get("User-Agent"); got != "" {
		t.Fatalf("original request mutated: User-Agent = %q", got)
	}
	if capture.req == req {
		t.Fatal("base transport received the original request, want a clone")
	}
}

func TestNewHTTPClientTimeout(t *testing.T) {
	client := newHTTPClient(42*time.Second, true)
	if client.Timeout != 42*time.Second {
		t.Fatalf("Timeout = %v, want 42s", client.Timeout)
	}
}
