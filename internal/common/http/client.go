// internal/common/http/client.go
package http

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Options describes one outbound HTTP session.
type Options struct {
	Timeout            time.Duration
	ProxyURL           string
	InsecureSkipVerify bool
}

// NewClient builds a fresh *http.Client with its own transport, so no
// connections are shared with earlier sessions.
func NewClient(opts Options) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if opts.ProxyURL != "" {
		proxy, err := url.Parse(opts.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy url %q: %w", opts.ProxyURL, err)
		}
		transport.Proxy = http.ProxyURL(proxy)
	} else {
		transport.Proxy = nil
	}

	if opts.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // explicit opt-in
	}

	return &http.Client{
		Timeout:   opts.Timeout,
		Transport: transport,
	}, nil
}
