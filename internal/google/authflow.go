package google

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	// OAuth callback timeout
	oauthCallbackTimeout = 5 * time.Minute

	// Token exchange timeout
	tokenExchangeTimeout = 30 * time.Second

	// Starting port for OAuth callback server
	oauthStartPort = 8085

	// Max port attempts
	oauthMaxPortAttempts = 5

	callbackPath = "/oauth2callback"
)

// AuthFlowOptions configures RunAuthFlow.
type AuthFlowOptions struct {
	Config Config

	// Out receives the authorization URL and progress messages.
	Out io.Writer

	// OnAuthURL is called with the authorization URL once the callback
	// server is listening. Optional.
	OnAuthURL func(authURL string)

	// Endpoint overrides the Google OAuth endpoint. Used by tests.
	Endpoint *oauth2.Endpoint

	// CallbackTimeout overrides the default wait for the browser redirect.
	CallbackTimeout time.Duration
}

// RunAuthFlow runs the interactive loopback login and stores the resulting
// token in the configured credentials file.
func RunAuthFlow(ctx context.Context, opts AuthFlowOptions) (*oauth2.Token, error) {
	out := opts.Out
	if out == nil {
		out = io.Discard
	}

	keys, err := os.ReadFile(opts.Config.KeysFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read OAuth keys file %s: %w", opts.Config.KeysFile, err)
	}

	conf, err := google.ConfigFromJSON(keys, DefaultOAuthScopes...)
	if err != nil {
		return nil, fmt.Errorf("invalid OAuth keys file %s: %w", opts.Config.KeysFile, err)
	}
	if opts.Endpoint != nil {
		conf.Endpoint = *opts.Endpoint
	}

	port, listener, err := findAvailablePort()
	if err != nil {
		return nil, fmt.Errorf("could not bind to local port for OAuth callback: %w", err)
	}
	defer listener.Close()

	conf.RedirectURL = fmt.Sprintf("http://localhost:%d%s", port, callbackPath)

	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()

	authURL := conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.S256ChallengeOption(verifier),
	)

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(callbackPath, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "State mismatch", http.StatusBadRequest)
			sendErr(errCh, errors.New("state mismatch in OAuth callback"))
			return
		}
		if e := q.Get("error"); e != "" {
			http.Error(w, "Authorization failed: "+e, http.StatusBadRequest)
			sendErr(errCh, fmt.Errorf("authorization failed: %s", e))
			return
		}
		code := q.Get("code")
		if code == "" {
			http.Error(w, "No code in callback", http.StatusBadRequest)
			sendErr(errCh, errors.New("no code in callback"))
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body><h1>Authentication successful</h1><p>You may close this window.</p></body></html>")
		select {
		case codeCh <- code:
		default:
		}
	})

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			sendErr(errCh, err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	fmt.Fprintln(out, "Open this URL in your browser to authorize gtasks-mcp:")
	fmt.Fprintln(out, authURL)
	if opts.OnAuthURL != nil {
		opts.OnAuthURL(authURL)
	}

	timeout := opts.CallbackTimeout
	if timeout == 0 {
		timeout = oauthCallbackTimeout
	}

	var code string
	select {
	case code = <-codeCh:
	case err := <-errCh:
		return nil, err
	case <-time.After(timeout):
		return nil, errors.New("oauth callback timed out")
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	exchangeCtx, cancel := context.WithTimeout(ctx, tokenExchangeTimeout)
	defer cancel()

	token, err := conf.Exchange(exchangeCtx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code for token: %w", err)
	}

	if err := SaveToken(opts.Config.CredentialsFile, token); err != nil {
		return nil, err
	}

	fmt.Fprintf(out, "Credentials saved to %s\n", opts.Config.CredentialsFile)
	return token, nil
}

func sendErr(ch chan<- error, err error) {
	select {
	case ch <- err:
	default:
	}
}

// findAvailablePort tries to find an available port starting from oauthStartPort.
func findAvailablePort() (int, net.Listener, error) {
	for i := 0; i < oauthMaxPortAttempts; i++ {
		port := oauthStartPort + i
		listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
		if err == nil {
			return port, listener, nil
		}
	}
	return 0, nil, fmt.Errorf("no available port in %d-%d", oauthStartPort, oauthStartPort+oauthMaxPortAttempts-1)
}
