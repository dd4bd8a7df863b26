package graph

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const graphScope = "https://graph.microsoft.com/.default"

// tokenSource hands out client-credentials access tokens. Tokens are cached
// by the underlying oauth2 source until shortly before expiry.
type tokenSource struct {
	mu         sync.Mutex
	cfg        *clientcredentials.Config
	httpClient *http.Client
	src        oauth2.TokenSource
}

func newTokenSource(tokenURL, clientID, clientSecret string, httpClient *http.Client) *tokenSource {
	return &tokenSource{
		cfg: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
			Scopes:       []string{graphScope},
			AuthStyle:    oauth2.AuthStyleInParams,
		},
		httpClient: httpClient,
	}
}

// Token returns a valid access token. Safe for concurrent use.
func (ts *tokenSource) Token() (string, error) {
	ts.mu.Lock()
	if ts.src == nil {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, ts.httpClient)
		ts.src = ts.cfg.TokenSource(ctx)
	}
	src := ts.src
	ts.mu.Unlock()

	tok, err := src.Token()
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	return tok.AccessToken, nil
}

// Invalidate drops the cached token so the next Token call fetches a new one.
func (ts *tokenSource) Invalidate() {
	ts.mu.Lock()
	ts.src = nil
	ts.mu.Unlock()
}
