package ipfsapi

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"net/http"
	"sync"
	"time"
)

const (
	retryBaseDelay = 200 * time.Millisecond
	retryMaxDelay  = 3 * time.Second
	retryJitter    = 0.2
)

// backoff computes exponential delays with jitter.
type backoff struct {
	base   time.Duration
	max    time.Duration
	jitter float64

	mu   sync.Mutex
	rand *rand.Rand
}

func newBackoff(base, max time.Duration, jitter float64) *backoff {
	return &backoff{
		base:   base,
		max:    max,
		jitter: jitter,
		rand:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// forAttempt returns the delay before retry number attempt (0-indexed).
func (b *backoff) forAttempt(attempt int) time.Duration {
	delay := b.max
	if d := float64(b.base) * math.Pow(2, float64(attempt)); d > 0 && d < float64(b.max) {
		delay = time.Duration(d)
	}
	if b.jitter == 0 {
		return delay
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	factor := 1 + (b.rand.Float64()*2-1)*math.Min(b.jitter, 1)
	return time.Duration(float64(delay) * factor)
}

// retryable reports whether a failed attempt may be repeated.
func retryable(resp *http.Response, err error) bool {
	if err != nil {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	switch resp.StatusCode {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
