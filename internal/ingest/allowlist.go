// Package ingest builds the persisted index from allow-listed government
// pages: fetch, clean, chunk, embed, save.
package ingest

import (
	"fmt"
	"net/url"
	"strings"
)

// Allowlist restricts ingestion to a fixed set of domains. A host is allowed
// when it equals an entry or is a subdomain of one ("www.hdb.gov.sg" matches
// "hdb.gov.sg"). Matching is on the host only, never the path, so
// "evil.com/hdb.gov.sg" does not pass.
type Allowlist struct {
	domains []string
}

// NewAllowlist builds an allowlist from domain names (no scheme, no path).
func NewAllowlist(domains []string) *Allowlist {
	normalized := make([]string, 0, len(domains))
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			normalized = append(normalized, d)
		}
	}
	return &Allowlist{domains: normalized}
}

// HostAllowed reports whether the bare host passes the allowlist.
func (a *Allowlist) HostAllowed(host string) bool {
	host = strings.ToLower(host)
	for _, d := range a.domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// CheckURL parses rawURL and verifies scheme and host. Only http and https
// URLs with an allow-listed host pass.
func (a *Allowlist) CheckURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if !a.HostAllowed(u.Hostname()) {
		return fmt.Errorf("host %q not in allowlist", u.Hostname())
	}
	return nil
}
