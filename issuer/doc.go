// Package issuer implements the authorization code flow against identity
// issuers.
//
// An issuer is either an OIDC provider (discovered from its well-known
// configuration, sign-ins proven by a verified ID token) or a plain OAuth2
// provider (explicit endpoints, sign-ins proven by fetching the user profile
// with the exchanged access token).
//
// A completed sign-in yields an Identity whose AuthID is stable across
// issuers: "<issuer name>:<subject>". Applications key their account linking
// on that value.
package issuer
