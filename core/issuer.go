package core

import (
	"fmt"
	"strings"
	"time"
)

// Credential names as seen by the client
const (
	CookieAccessToken  = "access-token"
	CookieSessionToken = "session-token"
	CookieID           = "id"
	CookieRefreshToken = "refresh-token"
)

const (
	SessionTokenMaxAge = 24 * time.Hour
	RefreshTokenMaxAge = 7 * 24 * time.Hour

	credentialPath = "/"
)

type CrossSitePolicy string

const (
	CrossSiteLax  CrossSitePolicy = "lax"
	CrossSiteNone CrossSitePolicy = "none"
)

// Credential is an instruction to store a named secret on the client.
// A zero MaxAge means the credential lives for the browser session only.
type Credential struct {
	Name               string
	Value              string
	MaxAge             time.Duration
	Path               string
	Domain             string
	CrossSite          CrossSitePolicy
	SecureOnly         bool
	ScriptInaccessible bool
}

// IssuedAccount is what the account service hands back after creating an
// account or rotating a session. The token fields are secrets and must only
// ever leave the server as credentials.
type IssuedAccount struct {
	ID           string `json:"id"`
	AccessToken  string `json:"access_token,omitempty"`
	SessionToken string `json:"sessiontoken,omitempty"`
	RefreshToken string `json:"refreshtoken,omitempty"`
	Profile      *User  `json:"profile,omitempty"`
}

// SanitizedAccount is an IssuedAccount with every secret removed
type SanitizedAccount struct {
	ID      string `json:"id"`
	Profile *User  `json:"profile,omitempty"`
}

func (a *IssuedAccount) Sanitize() SanitizedAccount {
	return SanitizedAccount{ID: a.ID, Profile: a.Profile}
}

func (a *IssuedAccount) missingFields() []string {
	var missing []string
	if a.ID == "" {
		missing = append(missing, "id")
	}
	if a.AccessToken == "" {
		missing = append(missing, "access_token")
	}
	if a.SessionToken == "" {
		missing = append(missing, "sessiontoken")
	}
	if a.RefreshToken == "" {
		missing = append(missing, "refreshtoken")
	}
	return missing
}

// CreationResult is either an informational message (nothing was created)
// or a freshly issued account.
type CreationResult struct {
	Message string
	Account *IssuedAccount
}

func Informational(message string) CreationResult {
	return CreationResult{Message: message}
}

func Created(account *IssuedAccount) CreationResult {
	return CreationResult{Account: account}
}

func (r CreationResult) IsInformational() bool {
	return r.Account == nil
}

// Issuance is the outcome of a successful Issue call
type Issuance struct {
	Credentials []Credential
	Body        Response
}

// CredentialIssuer turns account creation results into client credentials
// and a sanitized response body.
type CredentialIssuer struct {
	env Environment
}

func NewCredentialIssuer(env Environment) (*CredentialIssuer, error) {
	if err := env.Validate(); err != nil {
		return nil, err
	}
	return &CredentialIssuer{env: env}, nil
}

func (ci *CredentialIssuer) Environment() Environment {
	return ci.env
}

// Issue converts result into credentials and a response body.
//
// Informational results produce no credentials. Structured results produce
// exactly four, or none at all when a secret field is missing.
func (ci *CredentialIssuer) Issue(result CreationResult) (*Issuance, error) {
	if result.IsInformational() {
		return &Issuance{Body: Success(nil, result.Message)}, nil
	}

	account := result.Account
	if missing := account.missingFields(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrMalformedResult, strings.Join(missing, ", "))
	}

	credentials := []Credential{
		ci.credential(CookieAccessToken, account.AccessToken, 0, true),
		ci.credential(CookieSessionToken, account.SessionToken, SessionTokenMaxAge, false),
		ci.credential(CookieID, account.ID, 0, true),
		ci.credential(CookieRefreshToken, account.RefreshToken, RefreshTokenMaxAge, true),
	}

	return &Issuance{
		Credentials: credentials,
		Body:        Success(account.Sanitize(), ""),
	}, nil
}

func (ci *CredentialIssuer) credential(name, value string, maxAge time.Duration, domainScoped bool) Credential {
	c := Credential{
		Name:               name,
		Value:              value,
		MaxAge:             maxAge,
		Path:               credentialPath,
		CrossSite:          ci.env.CrossSite(),
		SecureOnly:         ci.env.SecureOnly(),
		ScriptInaccessible: true,
	}
	if domainScoped {
		c.Domain = ci.env.CookieDomain()
	}
	return c
}
