package core

import (
	"errors"
	"testing"
)

func TestParseEnvironment(t *testing.T) {
	tests := []struct {
		name       string
		mode       string
		domain     string
		wantErr    error
		wantProd   bool
		wantDomain string
		wantPolicy CrossSitePolicy
	}{
		{name: "production with domain", mode: "production", domain: "example.com", wantProd: true, wantDomain: "example.com", wantPolicy: CrossSiteNone},
		{name: "production match is exact", mode: " Production ", domain: "example.com", wantDomain: "localhost", wantPolicy: CrossSiteLax},
		{name: "uppercase production is non-production", mode: "PRODUCTION", wantDomain: "localhost", wantPolicy: CrossSiteLax},
		{name: "production without domain", mode: "production", wantErr: ErrDomainRequired},
		{name: "development ignores domain", mode: "development", domain: "example.com", wantDomain: "localhost", wantPolicy: CrossSiteLax},
		{name: "empty mode is non-production", mode: "", wantDomain: "localhost", wantPolicy: CrossSiteLax},
		{name: "unknown mode is non-production", mode: "staging", wantDomain: "localhost", wantPolicy: CrossSiteLax},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			// Act
			env, err := ParseEnvironment(test.mode, test.domain)

			// Assert
			if test.wantErr != nil {
				if !errors.Is(err, test.wantErr) {
					t.Fatalf("ParseEnvironment() error = %v, want %v", err, test.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseEnvironment() error = %v", err)
			}
			if env.IsProduction() != test.wantProd {
				t.Errorf("IsProduction() = %v, want %v", env.IsProduction(), test.wantProd)
			}
			if env.SecureOnly() != test.wantProd {
				t.Errorf("SecureOnly() = %v, want %v", env.SecureOnly(), test.wantProd)
			}
			if env.CookieDomain() != test.wantDomain {
				t.Errorf("CookieDomain() = %q, want %q", env.CookieDomain(), test.wantDomain)
			}
			if env.CrossSite() != test.wantPolicy {
				t.Errorf("CrossSite() = %q, want %q", env.CrossSite(), test.wantPolicy)
			}
		})
	}
}
