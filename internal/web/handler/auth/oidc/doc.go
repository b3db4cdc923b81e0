// Package oidc provides handlers for OpenID Connect (OIDC) authentication flow.
//
// Login redirects to the provider (Google by default) with a single use state token. The
// callback verifies the state and the ID token, finds or creates the user from its claims and
// starts a session.
//
//	GET  /auth/oidc/login    - Initiate OIDC login flow
//	GET  /auth/oidc/callback - Handle provider callback
package oidc
