// Package util holds small helpers shared by the outbound HTTP clients.
package util

import (
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/http/httpproxy"
)

// ProxyConfig overrides the HTTP_PROXY, HTTPS_PROXY and NO_PROXY variables.
// Empty fields keep the environment's value.
type ProxyConfig struct {
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// NewProxyFunc returns a Transport.Proxy function for p
func NewProxyFunc(p ProxyConfig) func(*http.Request) (*url.URL, error) {
	if p == (ProxyConfig{}) {
		return http.ProxyFromEnvironment
	}

	cfg := httpproxy.FromEnvironment()
	if p.HTTPProxy != "" {
		cfg.HTTPProxy = p.HTTPProxy
	}
	if p.HTTPSProxy != "" {
		cfg.HTTPSProxy = p.HTTPSProxy
	}
	if p.NoProxy != "" {
		cfg.NoProxy = p.NoProxy
	}

	proxy := cfg.ProxyFunc()
	return func(req *http.Request) (*url.URL, error) {
		return proxy(req.URL)
	}
}

// NewHTTPClient returns a client with its own transport so proxy settings
// never leak into http.DefaultTransport
func NewHTTPClient(timeout time.Duration, p ProxyConfig) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = NewProxyFunc(p)
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
