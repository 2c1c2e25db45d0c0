package gmailstore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/mikey/gmail-triage/internal/core"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// oauthClient returns an HTTP client carrying the user's OAuth token. The
// token is loaded from tokenFile when present; otherwise the auth-code flow
// runs interactively and the new token is persisted for subsequent runs.
// Refresh is handled transparently by the oauth2 transport.
func oauthClient(ctx context.Context, config *oauth2.Config, tokenFile string, logger *zap.Logger) (*http.Client, error) {
	tok, err := tokenFromFile(tokenFile)
	if err != nil {
		tok, err = tokenFromPrompt(ctx, config)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrCredentials, err)
		}
		if err := saveToken(tokenFile, tok); err != nil {
			// The session still has a usable token; only persistence failed.
			logger.Warn("Unable to save oauth token", zap.String("file", tokenFile), zap.Error(err))
		} else {
			logger.Info("Saved oauth token", zap.String("file", tokenFile))
		}
	}
	return config.Client(ctx, tok), nil
}

// tokenFromPrompt walks the user through the auth-code grant on the terminal.
func tokenFromPrompt(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Go to the following link in your browser then type the "+
		"authorization code:\n%v\n", authURL)

	var authCode string
	if _, err := fmt.Scan(&authCode); err != nil {
		return nil, fmt.Errorf("reading authorization code: %w", err)
	}

	tok, err := config.Exchange(ctx, authCode)
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}
	return tok, nil
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

func saveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	return json.NewEncoder(f).Encode(token)
}
