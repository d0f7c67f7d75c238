package ipfsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/go-openapi/validate"
)

// AllSubsystems addresses every logging subsystem in [Client.LogLevel].
const AllSubsystems = "all"

// Log levels accepted by the daemon, from most to least verbose.
const (
	LevelDebug    = "debug"
	LevelInfo     = "info"
	LevelWarn     = "warn"
	LevelWarning  = "warning"
	LevelError    = "error"
	LevelCritical = "critical"
	LevelDPanic   = "dpanic"
	LevelPanic    = "panic"
	LevelFatal    = "fatal"
)

// knownLevels must stay a []interface{} for validate.Enum.
var knownLevels = []interface{}{
	LevelDebug, LevelInfo, LevelWarn, LevelWarning, LevelError,
	LevelCritical, LevelDPanic, LevelPanic, LevelFatal,
}

// LogEvent is a single entry read from [Client.LogTail].
//
// Older daemons emit event-log entries:
//
//	{"event":"updatePeer","system":"dht","session":"...","time":"2016-08-22T13:25:27.43353297Z"}
//
// Newer daemons emit structured log lines:
//
//	{"level":"info","ts":"2020-03-01T10:00:00.000Z","logger":"dht","msg":"bootstrapping"}
//
// Both shapes are mapped onto the same fields. Fields keeps every raw
// value, with numbers decoded as json.Number.
type LogEvent struct {
	// Event is the event name ("event") or log message ("msg").
	Event string

	// System is the subsystem that produced the entry ("system" or "logger").
	System string

	// Level is the log level, empty for event-log entries.
	Level string

	// Session identifies the daemon session, empty for structured entries.
	Session string

	// Time is the entry timestamp ("time" or "ts"), zero when absent or unparseable.
	Time time.Time

	// Fields holds the complete decoded entry.
	Fields map[string]interface{}
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *LogEvent) UnmarshalJSON(data []byte) error {
	var fields map[string]interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return err
	}

	*e = LogEvent{
		Event:   firstString(fields, "event", "msg"),
		System:  firstString(fields, "system", "logger"),
		Level:   firstString(fields, "level"),
		Session: firstString(fields, "session"),
		Fields:  fields,
	}
	e.Time = eventTime(fields)
	return nil
}

func firstString(fields map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if s, ok := fields[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func eventTime(fields map[string]interface{}) time.Time {
	for _, k := range []string{"time", "ts"} {
		s, ok := fields[k].(string)
		if !ok || s == "" {
			continue
		}
		if dt, err := strfmt.ParseDateTime(s); err == nil {
			return time.Time(dt).UTC()
		}
	}
	// Production zap encoders write ts as fractional epoch seconds.
	if n, ok := fields["ts"].(json.Number); ok {
		f, err := n.Float64()
		if err != nil {
			return time.Time{}
		}
		sec, frac := math.Modf(f)
		return time.Unix(int64(sec), int64(frac*1e9)).UTC()
	}
	return time.Time{}
}

// LogLevel changes the logging output of a running daemon.
//
// subsystem is a logging identifier as returned by [Client.LogLs], or
// [AllSubsystems]. level must be one of the Level constants; other values
// are rejected with a BAD_REQUEST error before any request is sent.
//
// This API is subject to future change or removal.
//
//	resp, err := client.LogLevel(ctx, "dht", ipfsapi.LevelDebug)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(resp.Message)
func (c *Client) LogLevel(ctx context.Context, subsystem, level string) (*MessageResponse, error) {
	subsystem = strings.TrimSpace(subsystem)
	level = strings.ToLower(strings.TrimSpace(level))

	var errs []error
	if v := validate.RequiredString("subsystem", "query", subsystem); v != nil {
		errs = append(errs, v)
	}
	if v := validate.RequiredString("level", "query", level); v != nil {
		errs = append(errs, v)
	} else if v := validate.Enum("level", "query", level, knownLevels); v != nil {
		errs = append(errs, v)
	}
	if len(errs) > 0 {
		return nil, validationError(errs...)
	}

	var out MessageResponse
	if err := c.doJSON(ctx, &call{endpoint: "/log/level", args: []string{subsystem, level}}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LogLs lists the logging subsystems of a running daemon.
//
// This API is subject to future change or removal.
func (c *Client) LogLs(ctx context.Context) (*StringList, error) {
	var out StringList
	if err := c.doJSON(ctx, &call{endpoint: "/log/ls"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LogTail follows the daemon's log output as it is written.
//
// The returned stream stays open until the context ends, the daemon
// closes the connection, or [Stream.Close] is called. The client timeout
// does not apply; use a context deadline to bound it.
//
// This API is subject to future change or removal.
//
//	stream, err := client.LogTail(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer stream.Close()
//
//	for stream.Next() {
//	    ev := stream.Value()
//	    fmt.Printf("%s %s: %s\n", ev.Time.Format(time.RFC3339), ev.System, ev.Event)
//	}
func (c *Client) LogTail(ctx context.Context) (*LogStream, error) {
	return openStream[LogEvent](ctx, c, &call{endpoint: "/log/tail"})
}
