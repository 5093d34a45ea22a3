package util

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	xproxy "golang.org/x/net/proxy"
)

// ProxyConfig configures outbound proxying for provider API calls
type ProxyConfig struct {
	HTTPProxy  string
	HTTPSProxy string
	SOCKSProxy string // host:port of a SOCKS5 proxy
}

// NewProxyFunc creates a proxy function based on configuration.
// If no proxy URLs are provided, falls back to environment variables.
func NewProxyFunc(httpProxy, httpsProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	return func(req *http.Request) (*url.URL, error) {
		if req.URL.Scheme == "https" && httpsProxy != "" {
			return url.Parse(httpsProxy)
		}
		if httpProxy != "" {
			return url.Parse(httpProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}

// NewHTTPClient builds the outbound client used for LLM and embedding API
// calls. A SOCKS proxy takes precedence over HTTP(S) proxies. The timeout
// covers the whole request; streaming callers should pass 0 and bound the
// call with a context instead.
func NewHTTPClient(timeout time.Duration, proxy ProxyConfig) (*http.Client, error) {
	transport := &http.Transport{
		Proxy: NewProxyFunc(proxy.HTTPProxy, proxy.HTTPSProxy),
	}

	if proxy.SOCKSProxy != "" {
		dialer, err := xproxy.SOCKS5("tcp", proxy.SOCKSProxy, nil, &net.Dialer{Timeout: 30 * time.Second})
		if err != nil {
			return nil, fmt.Errorf("socks proxy: %w", err)
		}
		transport.Proxy = nil
		transport.Dial = dialer.Dial
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}, nil
}
