package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// newFakeGitHub serves the token endpoint and /user from one test server and
// points a provider at it.
func newFakeGitHub(t *testing.T, user GitHubUser, userStatus int) *GitHubProvider {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"access_token": "gho_test",
			"token_type":   "bearer",
		})
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer gho_test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(userStatus)
		json.NewEncoder(w).Encode(user)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	p := NewGitHubProvider("client-id", "client-secret", "http://localhost/auth/github/callback")
	p.config.Endpoint = oauth2.Endpoint{
		AuthURL:  srv.URL + "/login/oauth/authorize",
		TokenURL: srv.URL + "/login/oauth/access_token",
	}
	p.apiURL = srv.URL
	return p
}

func TestGitHubProvider_AuthURL(t *testing.T) {
	p := NewGitHubProvider("client-id", "client-secret", "http://localhost/auth/github/callback")

	u, err := url.Parse(p.AuthURL("state-123"))
	require.NoError(t, err)

	q := u.Query()
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "state-123", q.Get("state"))
	assert.Equal(t, "http://localhost/auth/github/callback", q.Get("redirect_uri"))
}

func TestGitHubProvider_Exchange(t *testing.T) {
	p := newFakeGitHub(t, GitHubUser{ID: 42, Login: "octocat", Email: "octo@example.com"}, http.StatusOK)

	ghUser, err := p.Exchange(context.Background(), "code")
	require.NoError(t, err)
	assert.Equal(t, int64(42), ghUser.ID)
	assert.Equal(t, "octocat", ghUser.Login)
	assert.Equal(t, "octo@example.com", ghUser.Email)
}

func TestGitHubProvider_Exchange_Errors(t *testing.T) {
	t.Run("api failure", func(t *testing.T) {
		p := newFakeGitHub(t, GitHubUser{ID: 42, Login: "octocat"}, http.StatusBadGateway)
		_, err := p.Exchange(context.Background(), "code")
		assert.Error(t, err)
	})

	t.Run("incomplete user", func(t *testing.T) {
		p := newFakeGitHub(t, GitHubUser{}, http.StatusOK)
		_, err := p.Exchange(context.Background(), "code")
		assert.Error(t, err)
	})
}
