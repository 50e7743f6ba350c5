package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// ErrAuthenticationRequired is returned when no credentials are available.
var ErrAuthenticationRequired = errors.New("Authentication required. Please set GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET, and GOOGLE_REFRESH_TOKEN.")

// Credential source names reported alongside a resolved token source.
const (
	SourceEnvironment = "environment"
	SourceFile        = "file"
)

// errNoCredentials tells ResolveTokenSource to try the next provider.
var errNoCredentials = errors.New("no credentials")

// TokenProvider is one place credentials can come from.
type TokenProvider interface {
	// Name identifies the credential source for logs and metrics.
	Name() string

	// TokenSource returns errNoCredentials when the provider has nothing to
	// offer, and any other error when its credentials are unusable.
	TokenSource(ctx context.Context) (oauth2.TokenSource, error)
}

// googleEndpoint is replaced in tests.
var googleEndpoint = google.Endpoint

// EnvTokenProvider reads a client id, client secret and refresh token from
// the environment.
type EnvTokenProvider struct {
	cfg Config
}

// NewEnvTokenProvider creates an environment-based token provider
func NewEnvTokenProvider(cfg Config) *EnvTokenProvider {
	return &EnvTokenProvider{cfg: cfg}
}

func (p *EnvTokenProvider) Name() string { return SourceEnvironment }

// TokenSource returns a refreshing token source when all three variables are set.
func (p *EnvTokenProvider) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	clientID := p.cfg.getenv(EnvClientID)
	clientSecret := p.cfg.getenv(EnvClientSecret)
	refreshToken := p.cfg.getenv(EnvRefreshToken)

	if clientID == "" || clientSecret == "" || refreshToken == "" {
		return nil, errNoCredentials
	}

	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     googleEndpoint,
		Scopes:       DefaultOAuthScopes,
	}

	// The source outlives the request that resolved it
	return conf.TokenSource(context.WithoutCancel(ctx), &oauth2.Token{RefreshToken: refreshToken}), nil
}

// FileTokenProvider provides tokens from the credentials file written by the
// auth command.
type FileTokenProvider struct {
	cfg Config
}

// NewFileTokenProvider creates a new file-based token provider
func NewFileTokenProvider(cfg Config) *FileTokenProvider {
	return &FileTokenProvider{cfg: cfg}
}

func (p *FileTokenProvider) Name() string { return SourceFile }

// TokenSource loads the stored token. The token refreshes itself when client
// keys are available from the keys file or the environment; otherwise it is
// used as is until it expires.
func (p *FileTokenProvider) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	if p.cfg.CredentialsFile == "" {
		return nil, errNoCredentials
	}

	token, err := LoadToken(p.cfg.CredentialsFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errNoCredentials
	}
	if err != nil {
		return nil, err
	}

	conf, err := p.oauthConfig()
	if err != nil {
		return nil, err
	}
	if conf == nil {
		return oauth2.StaticTokenSource(token), nil
	}

	// The source outlives the request that resolved it
	return conf.TokenSource(context.WithoutCancel(ctx), token), nil
}

// oauthConfig returns nil when no client keys are known.
func (p *FileTokenProvider) oauthConfig() (*oauth2.Config, error) {
	if p.cfg.KeysFile != "" {
		keys, err := os.ReadFile(p.cfg.KeysFile)
		if err == nil {
			conf, err := google.ConfigFromJSON(keys, DefaultOAuthScopes...)
			if err != nil {
				return nil, fmt.Errorf("invalid OAuth keys file %s: %w", p.cfg.KeysFile, err)
			}
			return conf, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read OAuth keys file: %w", err)
		}
	}

	clientID := p.cfg.getenv(EnvClientID)
	clientSecret := p.cfg.getenv(EnvClientSecret)
	if clientID != "" && clientSecret != "" {
		return &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     googleEndpoint,
			Scopes:       DefaultOAuthScopes,
		}, nil
	}

	return nil, nil
}

// DefaultProviders returns the lookup chain: environment first, then file.
func DefaultProviders(cfg Config) []TokenProvider {
	return []TokenProvider{
		NewEnvTokenProvider(cfg),
		NewFileTokenProvider(cfg),
	}
}

// ResolveTokenSource walks the default provider chain and returns the first
// token source found together with the name of its source.
func ResolveTokenSource(ctx context.Context, cfg Config) (oauth2.TokenSource, string, error) {
	return resolve(ctx, DefaultProviders(cfg))
}

func resolve(ctx context.Context, providers []TokenProvider) (oauth2.TokenSource, string, error) {
	for _, p := range providers {
		ts, err := p.TokenSource(ctx)
		if errors.Is(err, errNoCredentials) {
			continue
		}
		if err != nil {
			return nil, p.Name(), fmt.Errorf("failed to load %s credentials: %w", p.Name(), err)
		}
		return ts, p.Name(), nil
	}
	return nil, "", ErrAuthenticationRequired
}

// storedToken accepts both the oauth2.Token layout and files carrying an
// "expiry_date" in Unix milliseconds.
type storedToken struct {
	oauth2.Token
	ExpiryDate int64 `json:"expiry_date,omitempty"`
}

// LoadToken reads a token saved as JSON.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var st storedToken
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("invalid credentials file %s: %w", path, err)
	}
	if st.AccessToken == "" && st.RefreshToken == "" {
		return nil, fmt.Errorf("credentials file %s holds no token", path)
	}

	token := st.Token
	if token.Expiry.IsZero() && st.ExpiryDate > 0 {
		token.Expiry = time.UnixMilli(st.ExpiryDate)
	}
	return &token, nil
}

// SaveToken writes a token as JSON with mode 0600, creating the directory
// if needed.
func SaveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// NewHTTPClient returns an HTTP client configured with OAuth2 authentication.
// The client is configured to use HTTP/1.1 to avoid HTTP/2 protocol errors.
func NewHTTPClient(ts oauth2.TokenSource) *http.Client {
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.ReuseTokenSource(nil, ts),
			Base: &http.Transport{
				Proxy:             http.ProxyFromEnvironment,
				ForceAttemptHTTP2: false,
			},
		},
	}
}
