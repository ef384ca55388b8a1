// Package oidc wraps the OpenID Connect client library behind a narrow
// interface so the concrete provider implementation stays swappable and the
// service layer never touches discovery documents or token plumbing directly.
package oidc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"slices"
	"strings"
	"sync"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/ochen1/immich/internal/platform/tracer"
	"github.com/ochen1/immich/internal/systemconfig"
	dErrors "github.com/ochen1/immich/pkg/domain-errors"
)

// Profile is the normalized identity fact returned after a callback exchange.
// No user or session decisions are made at this layer.
type Profile struct {
	Subject       string
	Email         string
	EmailVerified bool
	GivenName     string
	FamilyName    string
}

// Tokens holds the provider credentials returned by the code exchange.
type Tokens struct {
	OAuth2     *oauth2.Token
	RawIDToken string
}

// metadata captures the discovery fields we care about beyond the endpoints.
type metadata struct {
	EndSessionEndpoint string   `json:"end_session_endpoint"`
	SigningAlgorithms  []string `json:"id_token_signing_alg_values_supported"`
}

// Client drives OIDC discovery, authorization-URL generation, code exchange,
// and userinfo retrieval. Discovery is amortized: the result is cached
// process-wide and invalidated when the OAuth config snapshot changes.
type Client struct {
	mu        sync.Mutex
	tracer    tracer.Tracer
	cachedCfg systemconfig.OAuthConfig
	provider  *gooidc.Provider
	meta      metadata
}

// Option configures the Client.
type Option func(*Client)

// WithTracer overrides the tracer used for provider network calls.
func WithTracer(t tracer.Tracer) Option {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

// New constructs an OIDC client.
func New(opts ...Option) *Client {
	c := &Client{tracer: tracer.NewNoop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// discover fetches (or reuses) the issuer metadata for the given config.
// The provider's advertised ID-token signing algorithms must intersect the
// configured allow-list; anything else is a configuration error, never a
// silently accepted downgrade.
func (c *Client) discover(ctx context.Context, cfg systemconfig.OAuthConfig) (*gooidc.Provider, metadata, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.provider != nil && c.cachedCfg.Equal(cfg) {
		return c.provider, c.meta, nil
	}

	ctx, span := c.tracer.Start(ctx, "oidc.discover", tracer.String("issuer", cfg.IssuerURL))
	provider, err := gooidc.NewProvider(ctx, cfg.IssuerURL)
	span.End(err)
	if err != nil {
		return nil, metadata{}, wrapProviderError(err, "issuer discovery failed")
	}

	var meta metadata
	if err := provider.Claims(&meta); err != nil {
		return nil, metadata{}, dErrors.Wrap(err, dErrors.CodeInternal, "could not parse issuer metadata")
	}

	if len(meta.SigningAlgorithms) > 0 && !algorithmsOverlap(meta.SigningAlgorithms, cfg.SigningAlgorithms) {
		return nil, metadata{}, dErrors.New(dErrors.CodeBadRequest,
			fmt.Sprintf("provider signs tokens with %v, none of which are allow-listed", meta.SigningAlgorithms))
	}

	c.provider = provider
	c.meta = meta
	c.cachedCfg = cfg
	return provider, meta, nil
}

// Invalidate drops the cached discovery result. Callers invoke this when the
// OAuth configuration changes outside the snapshot comparison.
func (c *Client) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.provider = nil
	c.meta = metadata{}
	c.cachedCfg = systemconfig.OAuthConfig{}
}

// AuthorizationURL builds the provider authorization URL embedding the given
// one-time state.
func (c *Client) AuthorizationURL(ctx context.Context, cfg systemconfig.OAuthConfig, redirectURI, state string) (string, error) {
	provider, _, err := c.discover(ctx, cfg)
	if err != nil {
		return "", err
	}
	return c.oauthConfig(provider, cfg, redirectURI).AuthCodeURL(state), nil
}

// Exchange trades the authorization code for provider tokens.
func (c *Client) Exchange(ctx context.Context, cfg systemconfig.OAuthConfig, redirectURI, code string) (*Tokens, error) {
	provider, _, err := c.discover(ctx, cfg)
	if err != nil {
		return nil, err
	}

	ctx, span := c.tracer.Start(ctx, "oidc.exchange", tracer.String("issuer", cfg.IssuerURL))
	token, err := c.oauthConfig(provider, cfg, redirectURI).Exchange(ctx, code)
	span.End(err)
	if err != nil {
		return nil, wrapProviderError(err, "authorization code exchange failed")
	}

	rawIDToken, _ := token.Extra("id_token").(string)
	return &Tokens{OAuth2: token, RawIDToken: rawIDToken}, nil
}

// Userinfo verifies the ID token against the configured algorithm allow-list
// and fetches the userinfo endpoint, returning the normalized profile.
func (c *Client) Userinfo(ctx context.Context, cfg systemconfig.OAuthConfig, tokens *Tokens) (*Profile, error) {
	provider, _, err := c.discover(ctx, cfg)
	if err != nil {
		return nil, err
	}

	profile := &Profile{}

	if tokens.RawIDToken != "" {
		verifier := provider.Verifier(&gooidc.Config{
			ClientID:             cfg.ClientID,
			SupportedSigningAlgs: cfg.SigningAlgorithms,
		})
		idToken, err := verifier.Verify(ctx, tokens.RawIDToken)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "id token verification failed")
		}
		var claims struct {
			Email         string `json:"email"`
			EmailVerified bool   `json:"email_verified"`
			GivenName     string `json:"given_name"`
			FamilyName    string `json:"family_name"`
		}
		if err := idToken.Claims(&claims); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not parse id token claims")
		}
		profile.Subject = idToken.Subject
		profile.Email = claims.Email
		profile.EmailVerified = claims.EmailVerified
		profile.GivenName = claims.GivenName
		profile.FamilyName = claims.FamilyName
	}

	ctx, span := c.tracer.Start(ctx, "oidc.userinfo", tracer.String("issuer", cfg.IssuerURL))
	info, err := provider.UserInfo(ctx, oauth2.StaticTokenSource(tokens.OAuth2))
	span.End(err)
	if err != nil {
		// The userinfo endpoint is optional when the ID token already carried
		// the claims we need.
		if profile.Subject != "" && profile.Email != "" {
			return profile, nil
		}
		return nil, wrapProviderError(err, "userinfo retrieval failed")
	}

	if info.Subject != "" {
		profile.Subject = info.Subject
	}
	if info.Email != "" {
		profile.Email = info.Email
		profile.EmailVerified = info.EmailVerified
	}

	if profile.Subject == "" || profile.Email == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "provider did not return subject and email")
	}
	return profile, nil
}

// EndSessionEndpoint returns the provider's advertised end-session endpoint,
// or "" when discovery fails or the provider does not advertise one.
func (c *Client) EndSessionEndpoint(ctx context.Context, cfg systemconfig.OAuthConfig) string {
	_, meta, err := c.discover(ctx, cfg)
	if err != nil {
		return ""
	}
	return meta.EndSessionEndpoint
}

func (c *Client) oauthConfig(provider *gooidc.Provider, cfg systemconfig.OAuthConfig, redirectURI string) *oauth2.Config {
	scopes := []string{gooidc.ScopeOpenID}
	if cfg.Scope != "" {
		scopes = splitScope(cfg.Scope)
	}
	return &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  redirectURI,
		Endpoint:     provider.Endpoint(),
		Scopes:       scopes,
	}
}

func splitScope(scope string) []string {
	return strings.Fields(scope)
}

func algorithmsOverlap(advertised, allowed []string) bool {
	return slices.ContainsFunc(advertised, func(alg string) bool {
		return slices.Contains(allowed, alg)
	})
}

// wrapProviderError classifies provider I/O failures so a timeout is
// distinguishable from a refusal and neither crashes the process.
func wrapProviderError(err error, msg string) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, msg)
	}
	return dErrors.Wrap(err, dErrors.CodeUnavailable, msg)
}
