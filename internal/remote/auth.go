package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/Tiliavir/worktimer/internal/config"
)

// ErrLoginNotConfigured is returned by Login when the device flow endpoints
// or the client ID are missing from the remote config.
var ErrLoginNotConfigured = errors.New("remote login needs remote.client_id, remote.device_auth_url and remote.token_url")

// TokenPath returns the path of the stored token below the data directory.
func TokenPath(dataDir string) string {
	return filepath.Join(dataDir, "auth", "token.json")
}

func oauth2Config(cfg *config.RemoteConfig) *oauth2.Config {
	return &oauth2.Config{
		ClientID: cfg.ClientID,
		Scopes:   cfg.Scopes,
		Endpoint: oauth2.Endpoint{
			DeviceAuthURL: cfg.DeviceAuthURL,
			TokenURL:      cfg.TokenURL,
			AuthStyle:     oauth2.AuthStyleInParams,
		},
	}
}

// loadToken returns nil when no token has been saved yet.
func loadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("corrupt token file (delete %s to re-authenticate): %w", path, err)
	}
	return &tok, nil
}

func saveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating auth directory: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling token: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving token file: %w", err)
	}
	return nil
}

// savingTokenSource persists refreshed tokens.
type savingTokenSource struct {
	ts     oauth2.TokenSource
	path   string
	logger *zap.Logger
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.ts.Token()
	if err != nil {
		return nil, err
	}
	if err := saveToken(s.path, tok); err != nil {
		s.logger.Warn("could not save refreshed token", zap.Error(err))
	}
	return tok, nil
}

// NewTokenSource picks the credentials for backend requests: the static
// remote.api_token when set, otherwise the token saved by Login. It returns
// nil when neither exists, in which case requests are sent unauthenticated.
func NewTokenSource(ctx context.Context, cfg *config.RemoteConfig, tokenPath string, logger *zap.Logger) oauth2.TokenSource {
	if cfg.APIToken != "" {
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.APIToken, TokenType: "Bearer"})
	}

	tok, err := loadToken(tokenPath)
	if err != nil {
		logger.Warn("ignoring stored token", zap.Error(err))
		return nil
	}
	if tok == nil {
		logger.Debug("no backend credentials configured")
		return nil
	}
	if tok.RefreshToken == "" || cfg.TokenURL == "" {
		return oauth2.StaticTokenSource(tok)
	}
	ts := oauth2Config(cfg).TokenSource(ctx, tok)
	return oauth2.ReuseTokenSource(tok, &savingTokenSource{ts: ts, path: tokenPath, logger: logger})
}

// Login runs the oauth2 device code flow, printing the verification prompt
// to out, and saves the resulting token to tokenPath.
func Login(ctx context.Context, cfg *config.RemoteConfig, tokenPath string, out io.Writer) (*oauth2.Token, error) {
	if cfg.ClientID == "" || cfg.DeviceAuthURL == "" || cfg.TokenURL == "" {
		return nil, ErrLoginNotConfigured
	}
	oc := oauth2Config(cfg)

	resp, err := oc.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("device auth request failed: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "To sign in, use a web browser to open the page:")
	fmt.Fprintf(out, "  %s\n", resp.VerificationURI)
	fmt.Fprintf(out, "Enter the code: %s\n", resp.UserCode)
	fmt.Fprintln(out)

	tok, err := oc.DeviceAccessToken(ctx, resp)
	if err != nil {
		return nil, fmt.Errorf("device authentication failed: %w", err)
	}
	if err := saveToken(tokenPath, tok); err != nil {
		return tok, err
	}
	return tok, nil
}
