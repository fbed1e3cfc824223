// Package auth obtains OAuth2 client-credentials tokens for outgoing requests.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// ClientCred caches a client-credentials token and refreshes it on expiry.
type ClientCred struct {
	conf clientcredentials.Config
	// tokenClient is used for the token endpoint only; nil means
	// http.DefaultClient.
	tokenClient *http.Client

	mu    sync.Mutex
	token *oauth2.Token
}

// NewClientCred returns a ClientCred for conf. tokenClient may be nil.
func NewClientCred(conf Conf, tokenClient *http.Client) *ClientCred {
	return &ClientCred{
		conf:        conf.toOauth2Config(),
		tokenClient: tokenClient,
	}
}

// GetToken returns the cached token when still valid, fetching a new one
// otherwise.
func (c *ClientCred) GetToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token.Valid() {
		return c.token.AccessToken, nil
	}
	if err := c.fetch(ctx); err != nil {
		return "", err
	}
	return c.token.AccessToken, nil
}

// ForceRefresh discards the cached token and fetches a new one.
func (c *ClientCred) ForceRefresh(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fetch(ctx); err != nil {
		return "", err
	}
	return c.token.AccessToken, nil
}

// SetAuthHeader adds the bearer token to r using r's context.
func (c *ClientCred) SetAuthHeader(r *http.Request) error {
	if _, err := c.GetToken(r.Context()); err != nil {
		return err
	}
	c.mu.Lock()
	tok := c.token
	c.mu.Unlock()
	tok.SetAuthHeader(r)
	return nil
}

// fetch must be called with mu held.
func (c *ClientCred) fetch(ctx context.Context) error {
	if c.tokenClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.tokenClient)
	}
	tok, err := c.conf.Token(ctx)
	if err != nil {
		c.token = nil
		return fmt.Errorf("failed to get token: %w", err)
	}
	c.token = tok
	return nil
}
