package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := hits.Add(1)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"token%d","token_type":"bearer","expires_in":3600}`, n)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGetTokenAndSetAuthHeader(t *testing.T) {
	var hits atomic.Int32
	srv := tokenServer(t, &hits)
	client := NewClientCred(Conf{ClientID: "id", ClientSecret: "secret", AuthURL: srv.URL}, srv.Client())

	token, err := client.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token1", token)

	req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	require.NoError(t, client.SetAuthHeader(req))
	assert.Equal(t, "Bearer token1", req.Header.Get("Authorization"))
	assert.Equal(t, int32(1), hits.Load(), "valid token must be reused")
}

func TestForceRefresh(t *testing.T) {
	var hits atomic.Int32
	srv := tokenServer(t, &hits)
	client := NewClientCred(Conf{ClientID: "id", ClientSecret: "secret", AuthURL: srv.URL}, nil)

	_, err := client.GetToken(context.Background())
	require.NoError(t, err)
	token, err := client.ForceRefresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token2", token)
}

func TestTokenEndpointFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_client"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()
	client := NewClientCred(Conf{ClientID: "id", ClientSecret: "bad", AuthURL: srv.URL}, nil)
	req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	assert.Error(t, client.SetAuthHeader(req))
	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestConfValidate(t *testing.T) {
	assert.NoError(t, Conf{}.Validate())
	assert.False(t, Conf{}.Enabled())
	assert.Error(t, Conf{ClientID: "id"}.Validate())
	assert.Error(t, Conf{ClientID: "id", ClientSecret: "s", AuthURL: "/token"}.Validate())
	assert.NoError(t, Conf{ClientID: "id", ClientSecret: "s", AuthURL: "https://idp.example.com/token"}.Validate())
}
