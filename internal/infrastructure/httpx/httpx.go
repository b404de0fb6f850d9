package httpx

import (
	"net"
	"net/http"
	"time"
)

// Client wraps http.Client and stamps default headers on outbound requests.
// It never retries.
type Client struct {
	HTTP      *http.Client
	UserAgent string
	Headers   map[string]string
}

// New builds a client whose every request, including reading the body, is bounded by timeout.
func New(timeout time.Duration, userAgent string) *Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 3 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   10,
		ForceAttemptHTTP2:     true,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   3 * time.Second,
		ExpectContinueTimeout: time.Second,
		ResponseHeaderTimeout: timeout,
	}
	return &Client{
		HTTP:      &http.Client{Timeout: timeout, Transport: transport},
		UserAgent: userAgent,
	}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	for k, v := range c.Headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}
	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	return hc.Do(req)
}
