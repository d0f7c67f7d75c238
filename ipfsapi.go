// Package ipfsapi provides a Go client for the unstable parts of the IPFS
// daemon HTTP API.
//
// The daemon (kubo, formerly go-ipfs) exposes a number of commands that are
// subject to change or removal between releases. This package wraps the
// logging and reference listing commands:
//
//   - /log/level: change the log level of a running daemon
//   - /log/ls: list the daemon's logging subsystems
//   - /log/tail: follow the daemon's log output
//   - /refs and /refs/local: list object references
//
// # Installation
//
//	go get github.com/tomblancdev/ipfsapi-go
//
// # Quick Start
//
//	package main
//
//	import (
//	    "context"
//	    "fmt"
//	    "log"
//
//	    "github.com/tomblancdev/ipfsapi-go"
//	)
//
//	func main() {
//	    client := ipfsapi.NewClient("/dns/localhost/tcp/5001/http")
//
//	    subsystems, err := client.LogLs(context.Background())
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    for _, s := range subsystems.Strings {
//	        fmt.Println(s)
//	    }
//	}
//
// # Daemon Address
//
// [NewClient] accepts either a plain URL ("http://127.0.0.1:5001") or a
// multiaddr ("/ip4/127.0.0.1/tcp/5001/http"), the format used in the
// daemon's own configuration file.
//
// # Client Configuration
//
// The client can be configured using functional options:
//
//	client := ipfsapi.NewClient("http://127.0.0.1:5001",
//	    ipfsapi.WithTimeout(time.Minute),
//	    ipfsapi.WithRetries(2),
//	    ipfsapi.WithToken("secret"),
//	)
//
// # Streaming
//
// [Client.LogTail] and the Stream variants of the refs calls hold a
// connection open for as long as the daemon produces output. The returned
// [Stream] must always be closed:
//
//	stream, err := client.LogTail(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer stream.Close()
//
//	for stream.Next() {
//	    ev := stream.Value()
//	    fmt.Println(ev.System, ev.Event)
//	}
//
// # Error Handling
//
// Every failure is reported as an [*Error] carrying a code:
//
//	_, err := client.LogLevel(ctx, "dht", "verbose")
//	var apiErr *ipfsapi.Error
//	if errors.As(err, &apiErr) && apiErr.Code == "BAD_REQUEST" {
//	    // rejected locally, nothing was sent
//	}
//
// Sentinel errors such as [ErrNotFound] match with errors.Is.
//
// # Logging
//
// The client logs requests at debug level through the go-log subsystem
// "ipfsapi". Enable it with GOLOG_LOG_LEVEL="ipfsapi=debug" or replace the
// logger with [WithLogger].
//
// # Thread Safety
//
// The [Client] is safe for concurrent use by multiple goroutines.
// A [Stream] must be consumed by a single goroutine, but [Stream.Close]
// may be called from any goroutine.
package ipfsapi
