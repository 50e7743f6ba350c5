package google

import (
	"os"
	"path/filepath"
)

const (
	appName = "gtasks-mcp"

	// CredentialsFileName is the file the auth command writes the token to.
	CredentialsFileName = "credentials.json"

	// KeysFileName is the OAuth client secrets file downloaded from the
	// Google Cloud console.
	KeysFileName = "gcp-oauth.keys.json"

	// Environment variables
	EnvClientID        = "GOOGLE_CLIENT_ID"
	EnvClientSecret    = "GOOGLE_CLIENT_SECRET"
	EnvRefreshToken    = "GOOGLE_REFRESH_TOKEN"
	EnvCredentialsFile = "GTASKS_CREDENTIALS_FILE"
)

// Config locates the credential material on disk.
type Config struct {
	// CredentialsFile holds an oauth2.Token as JSON.
	CredentialsFile string

	// KeysFile holds the OAuth client id and secret used for refreshing
	// file-based tokens and for the auth command.
	KeysFile string

	// Getenv reads environment variables. Defaults to os.Getenv.
	Getenv func(string) string
}

// DefaultConfigDir returns $XDG_CONFIG_HOME/gtasks-mcp, falling back to the
// platform's user config directory.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, appName)
	}
	return filepath.Join(".", "."+appName)
}

// DefaultConfig returns the config used when no flags override it.
// GTASKS_CREDENTIALS_FILE replaces the default credentials path.
func DefaultConfig() Config {
	dir := DefaultConfigDir()

	credentials := os.Getenv(EnvCredentialsFile)
	if credentials == "" {
		credentials = filepath.Join(dir, CredentialsFileName)
	}

	return Config{
		CredentialsFile: credentials,
		KeysFile:        filepath.Join(dir, KeysFileName),
	}
}

func (c Config) getenv(key string) string {
	if c.Getenv != nil {
		return c.Getenv(key)
	}
	return os.Getenv(key)
}
