package ipfsapi

import (
	"context"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/go-openapi/runtime"
)

// call describes a single daemon command invocation.
type call struct {
	endpoint string
	args     []string
	opts     url.Values
}

// buildURL assembles the command URL. Positional arguments are sent as
// repeated "arg" parameters in order; options are sent by name.
func (c *Client) buildURL(cl *call) (string, error) {
	if c.addrErr != nil {
		return "", newError("INVALID_URL", "invalid daemon address", 0, c.addrErr)
	}
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", newError("INVALID_URL", "invalid base URL", 0, err)
	}
	// Preserve any path already present in the base URL.
	u.Path = path.Join("/", u.Path, c.basePath, cl.endpoint)

	query := url.Values{}
	for k, v := range cl.opts {
		query[k] = append(query[k], v...)
	}
	for _, a := range cl.args {
		query.Add("arg", a)
	}
	u.RawQuery = query.Encode()
	return u.String(), nil
}

// send issues the call and returns a 2xx response whose body the caller
// must close. Transient failures are retried up to maxRetries times.
func (c *Client) send(ctx context.Context, cl *call) (*http.Response, error) {
	target, err := c.buildURL(cl)
	if err != nil {
		return nil, err
	}

	bo := newBackoff(retryBaseDelay, retryMaxDelay, retryJitter)
	for attempt := 0; ; attempt++ {
		// The daemon only accepts POST for API commands.
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, http.NoBody)
		if err != nil {
			return nil, newError("REQUEST_FAILED", "failed to create request", 0, err)
		}
		req.Header.Set("Accept", runtime.JSONMime)
		req.Header.Set("User-Agent", c.userAgent)
		if token := c.getToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		c.log.Debugw("sending request", "endpoint", cl.endpoint, "args", cl.args, "attempt", attempt)

		resp, err := c.httpClient.Do(req)
		if err == nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}

		var failure error
		if err != nil {
			if resp != nil && resp.Body != nil {
				_ = resp.Body.Close()
			}
			failure = c.handleError(err, "request to "+cl.endpoint+" failed")
		} else {
			failure = decodeResponseError(resp)
			_ = resp.Body.Close()
		}

		if attempt >= c.maxRetries || !retryable(resp, err) {
			c.log.Debugw("request failed", "endpoint", cl.endpoint, "error", failure)
			return nil, failure
		}

		delay := bo.forAttempt(attempt)
		c.log.Debugw("retrying request", "endpoint", cl.endpoint, "delay", delay, "error", failure)
		if err := sleepCtx(ctx, delay); err != nil {
			return nil, c.handleError(err, "request to "+cl.endpoint+" cancelled")
		}
	}
}

// doJSON issues a non-streaming call and decodes the single JSON value it
// returns into out. The client timeout applies.
func (c *Client) doJSON(ctx context.Context, cl *call, out interface{}) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.send(ctx, cl)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkContentType(resp); err != nil {
		return err
	}
	if err := runtime.JSONConsumer().Consume(resp.Body, out); err != nil {
		return newError("INVALID_RESPONSE", "failed to decode "+cl.endpoint+" response", resp.StatusCode, err)
	}
	return nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// checkContentType rejects responses that are clearly not daemon output,
// such as HTML error pages from a proxy. A missing header is accepted.
func checkContentType(resp *http.Response) error {
	if resp.Header.Get(runtime.HeaderContentType) == "" {
		return nil
	}
	mt, _, err := runtime.ContentType(resp.Header)
	if err != nil {
		return newError("INVALID_RESPONSE", "invalid content type", resp.StatusCode, err)
	}
	if mt != runtime.JSONMime && !strings.HasPrefix(mt, "text/plain") {
		return newError("INVALID_RESPONSE", "unexpected content type: "+mt, resp.StatusCode, nil)
	}
	return nil
}
