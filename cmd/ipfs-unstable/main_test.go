package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDaemon(t *testing.T) *httptest.Server {
	t.Helper()
	for _, k := range []string{"IPFS_API_ADDR", "IPFS_API_TOKEN", "IPFS_API_TIMEOUT"} {
		t.Setenv(k, "")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v0/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"Version": "0.4.23", "System": "amd64/linux"})
	})
	mux.HandleFunc("/api/v0/log/ls", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string][]string{"Strings": {"core", "dht"}})
	})
	mux.HandleFunc("/api/v0/refs", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("recursive"))
		assert.Equal(t, "2", r.URL.Query().Get("max-depth"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintln(w, `{"Ref":"QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG","Err":""}`)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestRun_Version(t *testing.T) {
	server := newDaemon(t)
	var out bytes.Buffer

	err := run([]string{"-api", server.URL, "version"}, &out)

	require.NoError(t, err)
	assert.Contains(t, out.String(), `"Version": "0.4.23"`)
}

func TestRun_LogLs(t *testing.T) {
	server := newDaemon(t)
	var out bytes.Buffer

	err := run([]string{"-api", server.URL, "log", "ls"}, &out)

	require.NoError(t, err)
	assert.Contains(t, out.String(), "dht")
}

func TestRun_Refs(t *testing.T) {
	server := newDaemon(t)
	var out bytes.Buffer

	err := run([]string{"-api", server.URL, "refs", "-r", "-max-depth", "2", "/ipfs/QmUNLLsPACCz1vLxQVkXqqLX5R1X345qqfHbsf67hvA3Nn"}, &out)

	require.NoError(t, err)
	assert.Contains(t, out.String(), "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG")
}

func TestRun_UsageErrors(t *testing.T) {
	server := newDaemon(t)

	for _, args := range [][]string{
		{},
		{"unknown"},
		{"log"},
		{"log", "level", "core"},
		{"refs"},
		{"-no-such-flag"},
	} {
		t.Run(fmt.Sprint(args), func(t *testing.T) {
			var out bytes.Buffer
			err := run(append([]string{"-api", server.URL}, args...), &out)

			var usageErr usageError
			assert.True(t, errors.As(err, &usageErr), "expected usage error, got %v", err)
		})
	}
}

func TestRun_InvalidAddr(t *testing.T) {
	newDaemon(t)
	var out bytes.Buffer

	err := run([]string{"-api", "/ip4/127.0.0.1/udp/5001", "version"}, &out)

	require.Error(t, err)
	var usageErr usageError
	assert.False(t, errors.As(err, &usageErr))
}
