package httpx

import (
	"crypto/tls"
	"time"

	"github.com/valyala/fasthttp"
)

const (
	DefaultTimeout             = 30 * time.Second
	DefaultMaxConnsPerHost     = 512
	DefaultMaxIdleConnDuration = 10 * time.Second
	DefaultMaxResponseBodySize = 100 * 1024 * 1024
	DefaultIdempotentAttempts  = 1
)

// Client sends a prepared fasthttp request. Implementations must be safe for
// concurrent use.
type Client interface {
	Do(req *fasthttp.Request, resp *fasthttp.Response) error
}

type clientOptions struct {
	timeout             time.Duration
	maxConnsPerHost     int
	maxIdleConnDuration time.Duration
	maxResponseBodySize int
	idempotentAttempts  int
	userAgent           string
	tlsConfig           *tls.Config
}

type ClientOption func(*clientOptions)

// WithTimeout bounds the whole upstream exchange, from dial to last byte.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(o *clientOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

func WithMaxConnsPerHost(n int) ClientOption {
	return func(o *clientOptions) {
		if n > 0 {
			o.maxConnsPerHost = n
		}
	}
}

func WithMaxResponseBodySize(size int) ClientOption {
	return func(o *clientOptions) {
		o.maxResponseBodySize = size
	}
}

// WithIdempotentAttempts lets fasthttp retry GET and HEAD requests on
// connection errors. Other methods are sent once.
func WithIdempotentAttempts(n int) ClientOption {
	return func(o *clientOptions) {
		if n > 0 {
			o.idempotentAttempts = n
		}
	}
}

func WithUserAgent(userAgent string) ClientOption {
	return func(o *clientOptions) {
		o.userAgent = userAgent
	}
}

// WithTLSConfig is used for upstreams served over https with a private CA.
func WithTLSConfig(cfg *tls.Config) ClientOption {
	return func(o *clientOptions) {
		o.tlsConfig = cfg
	}
}

type FastHTTPClient struct {
	client    *fasthttp.Client
	timeout   time.Duration
	userAgent string
}

// NewFastHTTPClient creates the client used to reach the upstream LMS. Header
// names and paths are sent exactly as the forwarding handler renders them.
func NewFastHTTPClient(opts ...ClientOption) *FastHTTPClient {
	o := clientOptions{
		timeout:             DefaultTimeout,
		maxConnsPerHost:     DefaultMaxConnsPerHost,
		maxIdleConnDuration: DefaultMaxIdleConnDuration,
		maxResponseBodySize: DefaultMaxResponseBodySize,
		idempotentAttempts:  DefaultIdempotentAttempts,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &FastHTTPClient{
		client: &fasthttp.Client{
			Name:                          "learngate",
			NoDefaultUserAgentHeader:      o.userAgent == "",
			MaxConnsPerHost:               o.maxConnsPerHost,
			MaxIdleConnDuration:           o.maxIdleConnDuration,
			MaxResponseBodySize:           o.maxResponseBodySize,
			MaxIdemponentCallAttempts:     o.idempotentAttempts,
			ReadTimeout:                   o.timeout,
			WriteTimeout:                  o.timeout,
			TLSConfig:                     o.tlsConfig,
			DisableHeaderNamesNormalizing: true,
			DisablePathNormalizing:        true,
		},
		timeout:   o.timeout,
		userAgent: o.userAgent,
	}
}

func (c *FastHTTPClient) Do(req *fasthttp.Request, resp *fasthttp.Response) error {
	if c.userAgent != "" && len(req.Header.UserAgent()) == 0 {
		req.Header.SetUserAgent(c.userAgent)
	}
	return c.client.DoTimeout(req, resp, c.timeout)
}
