package ipfsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"
	"sync/atomic"

	"go.uber.org/zap"
)

// streamErrorTrailer is the trailer the daemon sets when a streaming
// command fails after the response headers were sent.
const streamErrorTrailer = "X-Stream-Error"

// Stream is a lazily decoded sequence of JSON values read from a
// long-lived daemon response.
//
// Use it like a scanner:
//
//	stream, err := client.LogTail(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer stream.Close()
//
//	for stream.Next() {
//	    fmt.Println(stream.Value().Event)
//	}
//
//	if err := stream.Err(); err != nil {
//	    log.Fatal(err)
//	}
//
// The daemon may keep the connection open indefinitely. Always call
// [Stream.Close] to release it.
type Stream[T any] struct {
	endpoint string
	resp     *http.Response
	dec      *json.Decoder
	log      *zap.SugaredLogger
	current  T
	err      error
	closed   atomic.Bool
}

// LogStream is the stream returned by [Client.LogTail].
type LogStream = Stream[LogEvent]

// RefStream is the stream returned by [Client.RefsStream] and
// [Client.RefsLocalStream].
type RefStream = Stream[RefEntry]

func newStream[T any](endpoint string, resp *http.Response, log *zap.SugaredLogger) *Stream[T] {
	return &Stream[T]{
		endpoint: endpoint,
		resp:     resp,
		dec:      json.NewDecoder(resp.Body),
		log:      log,
	}
}

// Next advances to the next value in the stream.
//
// Returns true if a value is available, false if the stream is exhausted,
// closed, or an error occurred. Call [Stream.Err] to check for errors.
func (s *Stream[T]) Next() bool {
	if s.closed.Load() || s.err != nil {
		return false
	}

	var raw json.RawMessage
	if err := s.dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			s.err = s.trailerError()
			return false
		}
		if s.closed.Load() {
			// Body was closed by Close; that is not an error for the reader.
			return false
		}
		if errors.Is(err, context.DeadlineExceeded) {
			s.err = newError("TIMEOUT", "deadline exceeded reading "+s.endpoint+" stream", 0, err)
			return false
		}
		s.err = newError("STREAM_ERROR", "failed to read "+s.endpoint+" stream", 0, err)
		return false
	}

	if de, ok := asDaemonError(raw); ok {
		s.err = newError("STREAM_ERROR", de.Message, 0, nil)
		return false
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		s.err = newError("INVALID_RESPONSE", "failed to decode "+s.endpoint+" value", 0, err)
		return false
	}
	s.current = v
	return true
}

// Value returns the current value.
//
// Call this after [Stream.Next] returns true.
func (s *Stream[T]) Value() T {
	return s.current
}

// Err returns any error that occurred during streaming.
//
// Returns nil if the stream ended cleanly or is still active.
func (s *Stream[T]) Err() error {
	return s.err
}

// Close closes the stream and releases the connection.
//
// Close is safe to call multiple times and from any goroutine. Closing
// unblocks a pending [Stream.Next], which then returns false.
func (s *Stream[T]) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.log.Debugw("closing stream", "endpoint", s.endpoint)
	if s.resp != nil && s.resp.Body != nil {
		return s.resp.Body.Close()
	}
	return nil
}

// ValuesWithContext returns a channel that yields values from the stream.
//
// The channel is closed when the stream ends, an error occurs, or the
// context is cancelled. Cancelling the context also closes the stream.
// Check [Stream.Err] after the channel closes.
//
//	ctx, cancel := context.WithTimeout(ctx, time.Minute)
//	defer cancel()
//
//	for ev := range stream.ValuesWithContext(ctx) {
//	    fmt.Println(ev.Event)
//	}
func (s *Stream[T]) ValuesWithContext(ctx context.Context) <-chan T {
	ch := make(chan T)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.err = fmt.Errorf("panic in stream reader: %v\n%s", r, debug.Stack())
			}
			close(ch)
		}()

		// Closing the body is the only way to unblock a reader waiting on
		// network I/O.
		done := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				_ = s.Close()
			case <-done:
			}
		}()
		defer close(done)

		for s.Next() {
			select {
			case ch <- s.current:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

// Collect drains the stream into a slice and closes it.
func (s *Stream[T]) Collect() ([]T, error) {
	defer func() { _ = s.Close() }()

	out := make([]T, 0)
	for s.Next() {
		out = append(out, s.current)
	}
	return out, s.Err()
}

// trailerError reports a failure announced through the stream error
// trailer. Trailers are only populated once the body hit EOF.
func (s *Stream[T]) trailerError() error {
	if s.resp == nil || s.resp.Trailer == nil {
		return nil
	}
	if msg := s.resp.Trailer.Get(streamErrorTrailer); msg != "" {
		return newError("STREAM_ERROR", msg, s.resp.StatusCode, nil)
	}
	return nil
}

// asDaemonError reports whether raw is an error object emitted in place of
// a value.
func asDaemonError(raw json.RawMessage) (*daemonError, bool) {
	if !bytes.Contains(raw, []byte(`"Type"`)) {
		return nil, false
	}
	var de daemonError
	if err := json.Unmarshal(raw, &de); err != nil {
		return nil, false
	}
	if de.Type != "error" || de.Message == "" {
		return nil, false
	}
	return &de, true
}

// openStream issues a streaming call. Only the context bounds the
// request; the client timeout does not apply.
func openStream[T any](ctx context.Context, c *Client, cl *call) (*Stream[T], error) {
	resp, err := c.send(ctx, cl)
	if err != nil {
		return nil, err
	}
	if err := checkContentType(resp); err != nil {
		_ = resp.Body.Close()
		return nil, err
	}
	return newStream[T](cl.endpoint, resp, c.log), nil
}
