package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/alvinjchoi/gtasks-mcp/internal/google"
	"github.com/alvinjchoi/gtasks-mcp/internal/logging"
)

func newAuthCmd() *cobra.Command {
	var (
		credentialsFile string
		keysFile        string
	)

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize access to Google Tasks",
		Long: `Run the OAuth authorization flow and store the resulting credentials.

The OAuth client keys are read from gcp-oauth.keys.json in the configuration
directory (override with --keys-file). A local callback server is started on
localhost:8085-8089; open the printed URL in a browser and grant access. The
token is written to credentials.json in the configuration directory (override
with --credentials-file or GTASKS_CREDENTIALS_FILE).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			cfg := google.DefaultConfig()
			if credentialsFile != "" {
				cfg.CredentialsFile = credentialsFile
			}
			if keysFile != "" {
				cfg.KeysFile = keysFile
			}

			return runAuth(ctx, cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&credentialsFile, "credentials-file", "", "Where to write the OAuth token (default: $XDG_CONFIG_HOME/gtasks-mcp/credentials.json)")
	cmd.Flags().StringVar(&keysFile, "keys-file", "", "OAuth client keys file (default: $XDG_CONFIG_HOME/gtasks-mcp/gcp-oauth.keys.json)")

	return cmd
}

func runAuth(ctx context.Context, cmd *cobra.Command, cfg google.Config) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Launching auth flow...")
	fmt.Fprintf(out, "Using OAuth client keys from %s\n", cfg.KeysFile)

	tok, err := google.RunAuthFlow(ctx, google.AuthFlowOptions{
		Config: cfg,
		Out:    out,
	})
	if err != nil {
		return fmt.Errorf("authorization failed: %w", err)
	}

	fmt.Fprintln(out, describeToken(tok))
	fmt.Fprintf(out, "Credentials saved to %s. You can now run the server.\n", cfg.CredentialsFile)
	return nil
}

// describeToken summarizes a granted token without revealing it. Google
// omits the refresh token when the account already granted access, and the
// server cannot run unattended without one.
func describeToken(tok *oauth2.Token) string {
	if tok.RefreshToken == "" {
		return "Warning: no refresh token was granted; revoke the app's access in your Google account and run auth again."
	}
	return fmt.Sprintf("Refresh token received %s.", logging.SanitizeToken(tok.RefreshToken))
}
