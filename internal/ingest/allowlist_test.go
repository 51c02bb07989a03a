package ingest

import "testing"

func govAllowlist() *Allowlist {
	return NewAllowlist([]string{"gov.sg", "hdb.gov.sg", "cea.gov.sg", "ura.gov.sg"})
}

func TestAllowlist_hosts(t *testing.T) {
	a := govAllowlist()
	tests := []struct {
		host string
		want bool
	}{
		{"hdb.gov.sg", true},
		{"www.hdb.gov.sg", true},
		{"ura.gov.sg", true},
		{"services.gov.sg", true},
		{"HDB.GOV.SG", true},
		{"evil.com", false},
		{"hdb.gov.sg.evil.com", false},
		{"notgov.sg", false},
	}
	for _, tt := range tests {
		if got := a.HostAllowed(tt.host); got != tt.want {
			t.Errorf("HostAllowed(%q) = %v, want %v", tt.host, got, tt.want)
		}
	}
}

func TestAllowlist_urls(t *testing.T) {
	a := govAllowlist()
	if err := a.CheckURL("https://www.hdb.gov.sg/renting-a-flat"); err != nil {
		t.Errorf("expected allowed, got %v", err)
	}
	// The allow-listed domain appearing in the path must not fool the check.
	if err := a.CheckURL("https://evil.com/hdb.gov.sg"); err == nil {
		t.Error("path containing an allowed domain must be rejected")
	}
	if err := a.CheckURL("ftp://hdb.gov.sg/file"); err == nil {
		t.Error("non-http scheme must be rejected")
	}
	if err := a.CheckURL("://bad"); err == nil {
		t.Error("malformed url must be rejected")
	}
}
