package google

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// fakeTokenEndpoint accepts any code exchange that carries a PKCE verifier.
func fakeTokenEndpoint(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.Form.Get("grant_type"))
		assert.Equal(t, "the-code", r.Form.Get("code"))
		assert.NotEmpty(t, r.Form.Get("code_verifier"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"at","refresh_token":"rt","token_type":"Bearer","expires_in":3600}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func authFlowConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()
	keys := filepath.Join(dir, KeysFileName)
	writeFile(t, keys, testKeysJSON)
	return Config{
		CredentialsFile: filepath.Join(dir, CredentialsFileName),
		KeysFile:        keys,
	}
}

// redirect simulates the browser coming back to the loopback server.
func redirect(t *testing.T, authURL string, mutate func(q url.Values)) {
	t.Helper()

	u, err := url.Parse(authURL)
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "offline", q.Get("access_type"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))

	callback, err := url.Parse(q.Get("redirect_uri"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(callback.Host, "localhost:808"), callback.Host)

	cq := url.Values{"code": {"the-code"}, "state": {q.Get("state")}}
	if mutate != nil {
		mutate(cq)
	}
	callback.RawQuery = cq.Encode()

	resp, err := http.Get(callback.String())
	if err == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}
}

func TestRunAuthFlow(t *testing.T) {
	tokenSrv := fakeTokenEndpoint(t)
	cfg := authFlowConfig(t)

	var out strings.Builder
	token, err := RunAuthFlow(context.Background(), AuthFlowOptions{
		Config:          cfg,
		Out:             &out,
		Endpoint:        &oauth2.Endpoint{AuthURL: "https://accounts.example.com/auth", TokenURL: tokenSrv.URL},
		CallbackTimeout: 10 * time.Second,
		OnAuthURL: func(authURL string) {
			go redirect(t, authURL, nil)
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "rt", token.RefreshToken)
	assert.Contains(t, out.String(), "https://accounts.example.com/auth?")

	saved, err := LoadToken(cfg.CredentialsFile)
	require.NoError(t, err)
	assert.Equal(t, "at", saved.AccessToken)
}

func TestRunAuthFlow_StateMismatch(t *testing.T) {
	tokenSrv := fakeTokenEndpoint(t)

	_, err := RunAuthFlow(context.Background(), AuthFlowOptions{
		Config:          authFlowConfig(t),
		Endpoint:        &oauth2.Endpoint{AuthURL: "https://accounts.example.com/auth", TokenURL: tokenSrv.URL},
		CallbackTimeout: 10 * time.Second,
		OnAuthURL: func(authURL string) {
			go redirect(t, authURL, func(q url.Values) { q.Set("state", "forged") })
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "state mismatch")
}

func TestRunAuthFlow_MissingKeysFile(t *testing.T) {
	_, err := RunAuthFlow(context.Background(), AuthFlowOptions{
		Config: Config{KeysFile: filepath.Join(t.TempDir(), "nope.json")},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read OAuth keys file")
}

func TestRunAuthFlow_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	_, err := RunAuthFlow(ctx, AuthFlowOptions{
		Config:    authFlowConfig(t),
		OnAuthURL: func(string) { cancel() },
	})
	assert.ErrorIs(t, err, context.Canceled)
}
