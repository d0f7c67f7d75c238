package ipfsapi

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the default request timeout.
//
// The timeout applies to every non-streaming call. Streaming calls
// ([Client.LogTail], [Client.RefsStream], [Client.RefsLocalStream]) are
// bounded only by their context.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithRetries sets the maximum number of retries for failed requests.
//
// Only transient failures are retried: transport errors and
// 502, 503 and 504 responses.
func WithRetries(n int) Option {
	return func(c *Client) {
		if n < 0 {
			n = 0
		}
		c.maxRetries = n
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithBasePath sets the API path prefix. Defaults to "/api/v0".
func WithBasePath(p string) Option {
	return func(c *Client) {
		c.basePath = "/" + strings.Trim(p, "/")
	}
}

// WithToken sets a bearer token sent in the Authorization header.
//
// Daemons configured with API.Authorizations require it.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithLogger replaces the client's logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}
