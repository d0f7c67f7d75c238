package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-openapi/swag"
	logging "github.com/ipfs/go-log/v2"
	"go.uber.org/zap"

	"github.com/tomblancdev/ipfsapi-go"
	"github.com/tomblancdev/ipfsapi-go/internal/config"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		var usageErr usageError
		if errors.As(err, &usageErr) {
			fmt.Fprintln(os.Stderr, usageErr)
			usage()
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type usageError string

func (e usageError) Error() string { return string(e) }

func usage() {
	fmt.Fprint(os.Stderr, `ipfs-unstable: unstable IPFS daemon commands

Usage:
  ipfs-unstable [global flags] log level <subsystem> <level>
  ipfs-unstable [global flags] log ls
  ipfs-unstable [global flags] log tail
  ipfs-unstable [global flags] refs [-r] [-u] [-e] [-format f] [-max-depth n] <path>
  ipfs-unstable [global flags] refs local
  ipfs-unstable [global flags] version

Global flags:
  -api <addr>        daemon API address (URL or multiaddr)
  -config <path>     YAML config file
  -timeout <dur>     request timeout for non-streaming commands
  -log-level <lvl>   client log level

Environment:
  IPFS_API_ADDR, IPFS_API_TOKEN, IPFS_API_TIMEOUT
`)
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("ipfs-unstable", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	api := fs.String("api", "", "daemon API address")
	cfgPath := fs.String("config", "", "YAML config file")
	timeout := fs.Duration("timeout", 0, "request timeout")
	logLevel := fs.String("log-level", "", "client log level")
	if err := fs.Parse(args); err != nil {
		return usageError(err.Error())
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	if *api != "" {
		cfg.Addr = *api
	}
	if *timeout > 0 {
		cfg.Timeout = *timeout
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := logging.SetLogLevel("ipfsapi", cfg.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	log := &logging.Logger("ipfsapi").SugaredLogger

	rest := fs.Args()
	if len(rest) == 0 {
		return usageError("missing command")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := ipfsapi.NewClient(cfg.Addr, append(cfg.Options(), ipfsapi.WithLogger(log))...)
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")

	switch rest[0] {
	case "log":
		return runLog(ctx, client, log, enc, rest[1:])
	case "refs":
		return runRefs(ctx, client, log, enc, rest[1:])
	case "version":
		info, err := client.Version(ctx)
		if err != nil {
			return err
		}
		res := ipfsapi.CheckCompatibility(info.Version)
		if !res.IsCompatible() {
			fmt.Fprintf(os.Stderr, "warning: %s\n", res.Message)
		}
		return enc.Encode(info)
	default:
		return usageError(fmt.Sprintf("unknown command %q", rest[0]))
	}
}

func runLog(ctx context.Context, client *ipfsapi.Client, log *zap.SugaredLogger, enc *json.Encoder, args []string) error {
	if len(args) == 0 {
		return usageError("log: missing subcommand")
	}

	switch args[0] {
	case "level":
		if len(args) != 3 {
			return usageError("log level: expected <subsystem> <level>")
		}
		resp, err := client.LogLevel(ctx, args[1], args[2])
		if err != nil {
			return err
		}
		return enc.Encode(resp)
	case "ls":
		list, err := client.LogLs(ctx)
		if err != nil {
			return err
		}
		return enc.Encode(list)
	case "tail":
		stream, err := client.LogTail(ctx)
		if err != nil {
			return err
		}
		defer stream.Close()
		return drain(ctx, log, stream, func(ev ipfsapi.LogEvent) error {
			return enc.Encode(ev.Fields)
		})
	default:
		return usageError(fmt.Sprintf("log: unknown subcommand %q", args[0]))
	}
}

func runRefs(ctx context.Context, client *ipfsapi.Client, log *zap.SugaredLogger, enc *json.Encoder, args []string) error {
	if len(args) == 1 && args[0] == "local" {
		stream, err := client.RefsLocalStream(ctx)
		if err != nil {
			return err
		}
		defer stream.Close()
		return drain(ctx, log, stream, func(r ipfsapi.RefEntry) error { return enc.Encode(r) })
	}

	fs := flag.NewFlagSet("refs", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	recursive := fs.Bool("r", false, "list links of child nodes recursively")
	unique := fs.Bool("u", false, "omit duplicate refs")
	edges := fs.Bool("e", false, "emit edges as <src> -> <dst>")
	format := fs.String("format", "", "output format")
	maxDepth := fs.Int64("max-depth", -1, "maximum depth for recursive listing")
	if err := fs.Parse(args); err != nil {
		return usageError("refs: " + err.Error())
	}
	if fs.NArg() != 1 {
		return usageError("refs: expected exactly one <path>")
	}

	opts := &ipfsapi.RefsOptions{
		Recursive: *recursive,
		Unique:    *unique,
		Edges:     *edges,
		Format:    *format,
	}
	if *maxDepth != -1 {
		opts.MaxDepth = swag.Int64(*maxDepth)
	}

	stream, err := client.RefsStream(ctx, fs.Arg(0), opts)
	if err != nil {
		return err
	}
	defer stream.Close()
	return drain(ctx, log, stream, func(r ipfsapi.RefEntry) error { return enc.Encode(r) })
}

// drain writes every value from s until it ends or ctx is cancelled.
// Cancellation by signal is a normal way to stop and is not reported.
func drain[T any](ctx context.Context, log *zap.SugaredLogger, s *ipfsapi.Stream[T], emit func(T) error) error {
	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	start := time.Now()
	n := 0
	for v := range s.ValuesWithContext(ctx) {
		if err := emit(v); err != nil {
			return err
		}
		n++
	}
	if err := s.Err(); err != nil && parent.Err() == nil {
		return err
	}
	log.Debugw("stream finished", "values", n, "elapsed", time.Since(start))
	return nil
}
