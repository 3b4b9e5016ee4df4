package issuer

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"

	"github.com/kbukum/authkit/errors"
	"github.com/kbukum/authkit/logger"
	"github.com/kbukum/authkit/reqctx"
)

// Identity is the outcome of a completed sign-in with an issuer.
type Identity struct {
	// AuthID is the stable cross-issuer identifier, "<issuer name>:<subject>".
	AuthID string

	// Issuer is the issuer name the identity came from.
	Issuer string

	// Subject is the issuer's own user identifier.
	Subject string

	// Profile holds the claims (OIDC) or fetched profile (OAuth2).
	Profile map[string]interface{}
}

// ProfileParser extracts the subject and profile from an OAuth2 profile
// response body.
type ProfileParser func(body []byte) (subject string, profile map[string]interface{}, err error)

// Client drives the authorization code flow against one issuer.
type Client struct {
	name         string
	cfg          Config
	oauth        *oauth2.Config
	verifier     *verifier
	pkceMethod   string
	http         *http.Client
	log          *logger.Logger
	parseProfile ProfileParser
}

// Option configures a Client.
type Option func(*Client)

// WithProfileParser overrides how OAuth2 profile responses are interpreted.
func WithProfileParser(parse ProfileParser) Option {
	return func(c *Client) { c.parseProfile = parse }
}

// New constructs a client for the named issuer. OIDC issuers are discovered
// eagerly, so misconfiguration surfaces at startup rather than on the first
// sign-in attempt.
func New(ctx context.Context, name string, cfg Config, redirectURL string, log *logger.Logger, opts ...Option) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Setup("issuer "+name, err.Error())
	}

	client := &Client{
		name:         name,
		cfg:          cfg,
		http:         &http.Client{Timeout: cfg.HTTPTimeout},
		log:          log.WithComponent("issuer").WithField(logger.FieldIssuer, name),
		parseProfile: defaultProfileParser,
	}
	for _, opt := range opts {
		opt(client)
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  redirectURL,
		Scopes:       cfg.Scopes,
	}

	var doc *discoveryDoc
	if cfg.Type == TypeOIDC {
		var err error
		doc, err = discover(ctx, client.http, cfg.Issuer)
		if err != nil {
			return nil, errors.Setup("issuer "+name, err.Error()).WithCause(err)
		}
		oauthCfg.Endpoint = oauth2.Endpoint{
			AuthURL:  doc.AuthorizationEndpoint,
			TokenURL: doc.TokenEndpoint,
		}
		keys := newKeySet(doc.JWKSUri, client.http, cfg.JWKSCacheDuration)
		client.verifier = newVerifier(cfg.Issuer, cfg.ClientID, cfg.SupportedSigningAlgs, keys)
	} else {
		oauthCfg.Endpoint = oauth2.Endpoint{
			AuthURL:  cfg.AuthURL,
			TokenURL: cfg.TokenURL,
		}
	}
	client.oauth = oauthCfg

	method, err := negotiatePKCE(cfg.UsePKCE, doc)
	if err != nil {
		return nil, errors.Setup("issuer "+name, err.Error())
	}
	client.pkceMethod = method

	return client, nil
}

// negotiatePKCE resolves the configured PKCE mode against the issuer's
// advertised capabilities. Explicit modes are honored as configured; "auto"
// negotiates from the discovery document when one exists.
func negotiatePKCE(mode string, doc *discoveryDoc) (string, error) {
	switch mode {
	case PKCEOff:
		return "", nil
	case PKCES256, PKCEPlain:
		return mode, nil
	}

	if doc == nil || doc.supportsChallengeMethod(PKCES256) {
		return PKCES256, nil
	}
	if doc.supportsChallengeMethod(PKCEPlain) {
		return PKCEPlain, nil
	}
	return "", fmt.Errorf("issuer advertises no supported code challenge method")
}

// Name returns the issuer name the client was registered under.
func (c *Client) Name() string {
	return c.name
}

// SuccessRedirect returns this issuer's sign-in landing override, or "" when
// the kit-wide redirect applies.
func (c *Client) SuccessRedirect() string {
	return c.cfg.SuccessRedirect
}

// FailureRedirect returns this issuer's failed-sign-in landing override, or
// "" when the kit-wide failure target applies.
func (c *Client) FailureRedirect() string {
	return c.cfg.FailureRedirect
}

// loginState is the in-flight sign-in state persisted in the session between
// the initiation redirect and the callback.
type loginState struct {
	State    string `json:"state"`
	Nonce    string `json:"nonce,omitempty"`
	Verifier string `json:"verifier,omitempty"`
	Method   string `json:"method,omitempty"`
}

func (c *Client) sessionKey() string {
	return "authkit:issuer:" + c.name
}

// Begin starts the sign-in flow: generate the state, nonce and PKCE secrets,
// persist them in the session and redirect to the issuer's authorization
// endpoint.
func (c *Client) Begin(gc *gin.Context) error {
	state, ok := reqctx.Get(gc)
	if !ok || state.Session == nil {
		return errors.MissingCapability("session", "session")
	}

	login := loginState{}
	var err error
	if login.State, err = generateState(); err != nil {
		return errors.Internal("failed to generate login state", err)
	}

	params := []oauth2.AuthCodeOption{}
	if c.cfg.Type == TypeOIDC {
		if login.Nonce, err = generateNonce(); err != nil {
			return errors.Internal("failed to generate nonce", err)
		}
		params = append(params, oauth2.SetAuthURLParam("nonce", login.Nonce))
	}

	if c.pkceMethod != "" {
		pkce, err := newPKCE(c.pkceMethod)
		if err != nil {
			return errors.Internal("failed to generate code verifier", err)
		}
		login.Verifier = pkce.Verifier
		login.Method = pkce.Method
		params = append(params,
			oauth2.SetAuthURLParam("code_challenge", pkce.Challenge),
			oauth2.SetAuthURLParam("code_challenge_method", pkce.Method),
		)
	}

	encoded, err := json.Marshal(login)
	if err != nil {
		return errors.Internal("failed to encode login state", err)
	}
	if err := state.Session.Set(c.sessionKey(), string(encoded)); err != nil {
		return err
	}

	c.log.Debug("starting sign-in")
	gc.Redirect(http.StatusFound, c.oauth.AuthCodeURL(login.State, params...))
	return nil
}

// Complete finishes the sign-in flow on the callback request: check the
// state, exchange the code, verify the ID token (OIDC) or fetch the profile
// (OAuth2), and return the resulting identity.
//
// Rejections by the issuer or mismatched login state come back as identity
// protocol errors; callers are expected to treat those as failed sign-ins
// rather than server faults.
func (c *Client) Complete(gc *gin.Context) (*Identity, error) {
	state, ok := reqctx.Get(gc)
	if !ok || state.Session == nil {
		return nil, errors.MissingCapability("session", "session")
	}

	if errParam := gc.Query("error"); errParam != "" {
		return nil, errors.IdentityProtocol(c.name, fmt.Errorf("issuer rejected the sign-in: %s", errParam))
	}

	encoded, ok := state.Session.Get(c.sessionKey())
	if !ok {
		return nil, errors.IdentityProtocol(c.name, fmt.Errorf("no sign-in in progress"))
	}
	_ = state.Session.Delete(c.sessionKey())

	var login loginState
	if err := json.Unmarshal([]byte(encoded), &login); err != nil {
		return nil, errors.IdentityProtocol(c.name, fmt.Errorf("corrupt login state"))
	}
	if gc.Query("state") == "" || gc.Query("state") != login.State {
		return nil, errors.IdentityProtocol(c.name, fmt.Errorf("state mismatch"))
	}

	code := gc.Query("code")
	if code == "" {
		return nil, errors.IdentityProtocol(c.name, fmt.Errorf("callback carried no code"))
	}

	ctx := context.WithValue(gc.Request.Context(), oauth2.HTTPClient, c.http)

	var exchangeOpts []oauth2.AuthCodeOption
	if login.Verifier != "" {
		exchangeOpts = append(exchangeOpts, oauth2.SetAuthURLParam("code_verifier", login.Verifier))
	}
	token, err := c.oauth.Exchange(ctx, code, exchangeOpts...)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if stderrors.As(err, &retrieveErr) {
			return nil, errors.IdentityProtocol(c.name, err)
		}
		return nil, errors.Internal("token exchange failed", err)
	}

	if c.cfg.Type == TypeOIDC {
		return c.identityFromIDToken(token, login.Nonce)
	}
	return c.identityFromProfile(ctx, token)
}

func (c *Client) identityFromIDToken(token *oauth2.Token, nonce string) (*Identity, error) {
	raw, ok := token.Extra("id_token").(string)
	if !ok || raw == "" {
		return nil, errors.IdentityProtocol(c.name, fmt.Errorf("token response carried no id_token"))
	}

	idToken, err := c.verifier.verify(raw)
	if err != nil {
		return nil, errors.IdentityProtocol(c.name, err)
	}
	if nonce != "" && idToken.Nonce != nonce {
		return nil, errors.IdentityProtocol(c.name, fmt.Errorf("nonce mismatch"))
	}

	return &Identity{
		AuthID:  c.name + ":" + idToken.Subject,
		Issuer:  c.name,
		Subject: idToken.Subject,
		Profile: idToken.Claims,
	}, nil
}

func (c *Client) identityFromProfile(ctx context.Context, token *oauth2.Token) (*Identity, error) {
	resp, err := c.oauth.Client(ctx, token).Get(c.cfg.UserProfileURL)
	if err != nil {
		return nil, errors.Internal("profile fetch failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.IdentityProtocol(c.name, fmt.Errorf("profile endpoint returned %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, errors.Internal("profile read failed", err)
	}

	subject, profile, err := c.parseProfile(body)
	if err != nil {
		return nil, errors.IdentityProtocol(c.name, err)
	}

	return &Identity{
		AuthID:  c.name + ":" + subject,
		Issuer:  c.name,
		Subject: subject,
		Profile: profile,
	}, nil
}

// defaultProfileParser reads a JSON object and takes the subject from "sub"
// or, failing that, "id" (GitHub's numeric user id).
func defaultProfileParser(body []byte) (string, map[string]interface{}, error) {
	var profile map[string]interface{}
	if err := json.Unmarshal(body, &profile); err != nil {
		return "", nil, fmt.Errorf("decode profile: %w", err)
	}

	if sub, ok := profile["sub"].(string); ok && sub != "" {
		return sub, profile, nil
	}
	switch id := profile["id"].(type) {
	case string:
		if id != "" {
			return id, profile, nil
		}
	case float64:
		return fmt.Sprintf("%.0f", id), profile, nil
	}
	return "", nil, fmt.Errorf("profile carries no subject")
}
