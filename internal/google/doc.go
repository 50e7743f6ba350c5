// Package google resolves the OAuth2 credentials used to talk to Google Tasks.
//
// Credentials are looked up from a chain of TokenProviders: the
// GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET and GOOGLE_REFRESH_TOKEN environment
// variables first, then a credentials file written by the auth command. When
// neither is available ErrAuthenticationRequired is returned.
//
// RunAuthFlow implements the one-shot interactive login: a loopback
// authorization-code flow with PKCE whose resulting token is stored in the
// credentials file.
package google
