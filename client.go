package ipfsapi

import (
	"net/http"
	"sync"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"go.uber.org/zap"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 0
	defaultBasePath   = "/api/v0"
)

var log = logging.Logger("ipfsapi")

// Client is the IPFS daemon API client.
type Client struct {
	baseURL    string
	addrErr    error
	basePath   string
	httpClient *http.Client
	timeout    time.Duration
	maxRetries int
	userAgent  string
	log        *zap.SugaredLogger

	mu    sync.RWMutex
	token string
}

// NewClient creates a new client for the daemon at addr.
//
// addr is either a URL ("http://127.0.0.1:5001") or a multiaddr
// ("/dns/localhost/tcp/5001/http"). If addr cannot be resolved, every call
// made with the returned client fails with an INVALID_URL error.
func NewClient(addr string, opts ...Option) *Client {
	c := &Client{
		basePath:   defaultBasePath,
		httpClient: http.DefaultClient,
		timeout:    defaultTimeout,
		maxRetries: defaultMaxRetries,
		userAgent:  "ipfsapi-go/" + Version,
		log:        &log.SugaredLogger,
	}
	c.baseURL, c.addrErr = ResolveAddr(addr)

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// SetToken replaces the bearer token used for subsequent requests.
//
// It is safe to call while other requests are in flight.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) getToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// BaseURL returns the resolved daemon URL, without the API base path.
func (c *Client) BaseURL() string {
	return c.baseURL
}
