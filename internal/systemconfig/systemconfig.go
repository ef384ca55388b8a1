// Package systemconfig holds the process-wide configuration snapshot consumed
// by the auth service. A snapshot is immutable for the lifetime of a request;
// callers refresh it by asking the store again.
package systemconfig

import "context"

// PasswordLoginConfig toggles password-based login.
type PasswordLoginConfig struct {
	Enabled bool
}

// OAuthConfig holds the federated login settings.
type OAuthConfig struct {
	Enabled      bool
	IssuerURL    string
	ClientID     string
	ClientSecret string
	Scope        string
	// SigningAlgorithms is the allow-list of ID-token signing algorithms the
	// discovered provider must support. A provider outside the list is a
	// configuration error, never silently accepted.
	SigningAlgorithms []string
	AutoRegister      bool
	AutoLaunch        bool
	ButtonText        string
	MobileRedirectURI string
}

// SystemConfig is the full configuration snapshot.
type SystemConfig struct {
	PasswordLogin PasswordLoginConfig
	OAuth         OAuthConfig
}

// Equal reports whether two OAuth configs describe the same provider setup.
// Discovery caches are invalidated when this changes.
func (c OAuthConfig) Equal(other OAuthConfig) bool {
	if c.IssuerURL != other.IssuerURL ||
		c.ClientID != other.ClientID ||
		c.ClientSecret != other.ClientSecret ||
		c.Scope != other.Scope ||
		len(c.SigningAlgorithms) != len(other.SigningAlgorithms) {
		return false
	}
	for i, alg := range c.SigningAlgorithms {
		if other.SigningAlgorithms[i] != alg {
			return false
		}
	}
	return true
}

// Store supplies configuration snapshots.
// Error Contract: Get returns a usable snapshot or an infrastructure error;
// there is no not-found case.
type Store interface {
	Get(ctx context.Context) (*SystemConfig, error)
}
