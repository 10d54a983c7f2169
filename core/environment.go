package core

import "strings"

type Mode string

const (
	ModeProduction  Mode = "production"
	ModeDevelopment Mode = "development"
)

// localDomain scopes cookies outside production
const localDomain = "localhost"

// Environment selects the security attributes of issued credentials.
// It is passed explicitly instead of being read from the process at request
// time.
type Environment struct {
	Mode   Mode
	Domain string
}

// ParseEnvironment builds an Environment from deployment settings.
// Only the exact mode "production" selects production.
func ParseEnvironment(mode, domain string) (Environment, error) {
	env := Environment{Mode: ModeDevelopment}
	if Mode(mode) == ModeProduction {
		env.Mode = ModeProduction
	}

	env.Domain = strings.TrimSpace(domain)
	if err := env.Validate(); err != nil {
		return Environment{}, err
	}

	return env, nil
}

func (e Environment) Validate() error {
	if e.IsProduction() && e.Domain == "" {
		return ErrDomainRequired
	}
	return nil
}

func (e Environment) IsProduction() bool {
	return e.Mode == ModeProduction
}

// CookieDomain is the domain attribute for domain-scoped credentials
func (e Environment) CookieDomain() string {
	if e.IsProduction() {
		return e.Domain
	}
	return localDomain
}

func (e Environment) CrossSite() CrossSitePolicy {
	if e.IsProduction() {
		return CrossSiteNone
	}
	return CrossSiteLax
}

func (e Environment) SecureOnly() bool {
	return e.IsProduction()
}
