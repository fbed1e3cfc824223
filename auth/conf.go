package auth

import (
	"errors"
	"net/url"

	"golang.org/x/oauth2/clientcredentials"
)

// Conf holds the OAuth2 client credentials used to call a protected
// prediction endpoint. An empty ClientID disables authentication.
type Conf struct {
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	AuthURL      string   `json:"auth_url"`
	Scopes       []string `json:"scopes"`
}

// Enabled reports whether credentials are configured.
func (c Conf) Enabled() bool { return c.ClientID != "" }

// Validate checks the token URL when authentication is enabled.
func (c Conf) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if c.ClientSecret == "" {
		return errors.New("client_secret is required with client_id")
	}
	u, err := url.Parse(c.AuthURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("auth_url must be an absolute URL")
	}
	return nil
}

func (c *Conf) toOauth2Config() clientcredentials.Config {
	return clientcredentials.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		TokenURL:     c.AuthURL,
		Scopes:       c.Scopes,
	}
}
