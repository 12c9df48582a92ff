package reportsapi

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/dnscache"
	"github.com/rs/zerolog/log"
)

var (
	resolverOnce sync.Once
	resolver     *dnscache.Resolver

	resolverRefreshTTL = 5 * time.Minute
)

// cachedResolver returns the shared resolver. Report generation fans out
// several calls to the same host, so lookups are cached and refreshed in
// the background.
func cachedResolver() *dnscache.Resolver {
	resolverOnce.Do(func() {
		resolver = &dnscache.Resolver{}
		go func() {
			ticker := time.NewTicker(resolverRefreshTTL)
			defer ticker.Stop()
			for range ticker.C {
				resolver.Refresh(true)
				log.Debug().Dur("ttl", resolverRefreshTTL).Msg("DNS cache refreshed")
			}
		}()
	})
	return resolver
}

// dialContextWithCache dials the first address the cached resolver returns.
func dialContextWithCache(ctx context.Context, network, address string) (net.Conn, error) {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return nil, err
	}

	ips, err := cachedResolver().LookupHost(ctx, host)
	if err != nil {
		return nil, err
	}
	if len(ips) == 0 {
		return nil, &net.DNSError{Err: "no IP addresses found", Name: host}
	}

	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return dialer.DialContext(ctx, network, net.JoinHostPort(ips[0], port))
}

// normalizeFingerprint strips colons and lower-cases a SHA-256 fingerprint.
func normalizeFingerprint(fp string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(fp), ":", ""))
}

// fingerprintVerifier accepts exactly the leaf certificate with the given
// SHA-256 fingerprint, in place of CA verification.
func fingerprintVerifier(fingerprint string) *tls.Config {
	expected := normalizeFingerprint(fingerprint)

	return &tls.Config{
		InsecureSkipVerify: true, // verified below
		VerifyPeerCertificate: func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
			if len(rawCerts) == 0 {
				return fmt.Errorf("no certificates presented by server")
			}
			sum := sha256.Sum256(rawCerts[0])
			actual := hex.EncodeToString(sum[:])
			if actual != expected {
				return fmt.Errorf("certificate fingerprint mismatch: expected %s, got %s", expected, actual)
			}
			return nil
		},
	}
}

// newHTTPClient builds the client used for the reports API.
func newHTTPClient(fingerprint string, timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   8,
		IdleConnTimeout:       90 * time.Second,
		DialContext:           dialContextWithCache,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if fingerprint != "" {
		transport.TLSClientConfig = fingerprintVerifier(fingerprint)
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}
