package ipfsapi

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	ma "github.com/multiformats/go-multiaddr"
)

// DefaultAddr is the daemon API address used by a stock configuration.
const DefaultAddr = "/dns/localhost/tcp/5001/http"

// ResolveAddr converts a daemon address into a base URL.
//
// Addresses starting with "/" are parsed as multiaddrs and must contain a
// host component (dns, dns4, dns6, ip4 or ip6) and a tcp port. A trailing
// https or tls component selects the https scheme. Anything else must be an
// http or https URL with a host. The returned URL has no trailing slash.
//
//	base, _ := ipfsapi.ResolveAddr("/ip4/127.0.0.1/tcp/5001/http")
//	// base == "http://127.0.0.1:5001"
func ResolveAddr(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return "", fmt.Errorf("empty daemon address")
	}
	if strings.HasPrefix(addr, "/") {
		return resolveMultiaddr(addr)
	}

	u, err := url.Parse(addr)
	if err != nil {
		return "", fmt.Errorf("parse daemon URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("daemon URL %q has no host", addr)
	}
	return strings.TrimRight(u.String(), "/"), nil
}

func resolveMultiaddr(addr string) (string, error) {
	m, err := ma.NewMultiaddr(addr)
	if err != nil {
		return "", fmt.Errorf("parse daemon multiaddr: %w", err)
	}

	var host string
	for _, code := range []int{ma.P_DNS, ma.P_DNS4, ma.P_DNS6, ma.P_IP4, ma.P_IP6} {
		if v, err := m.ValueForProtocol(code); err == nil {
			host = v
			break
		}
	}
	if host == "" {
		return "", fmt.Errorf("multiaddr %q has no host component", addr)
	}

	port, err := m.ValueForProtocol(ma.P_TCP)
	if err != nil {
		return "", fmt.Errorf("multiaddr %q has no tcp component", addr)
	}

	scheme := "http"
	if hasProtocol(m, ma.P_HTTPS) || hasProtocol(m, ma.P_TLS) {
		scheme = "https"
	}

	return scheme + "://" + net.JoinHostPort(host, port), nil
}

func hasProtocol(m ma.Multiaddr, code int) bool {
	_, err := m.ValueForProtocol(code)
	return err == nil
}
