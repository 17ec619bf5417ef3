package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoUser writes the requester ID, or "anonymous".
var echoUser = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	if id, ok := UserIDFromContext(r.Context()); ok {
		w.Write([]byte(id))
		return
	}
	w.Write([]byte("anonymous"))
})

func TestRequireAuth(t *testing.T) {
	ts := newTestTokenService(t)
	token, err := ts.Generate("alice-id")
	require.NoError(t, err)
	expired, err := ts.GenerateWithDuration("alice-id", -time.Minute)
	require.NoError(t, err)

	h := RequireAuth(ts)(echoUser)

	tests := []struct {
		name     string
		prepare  func(r *http.Request)
		wantCode int
		wantBody string
	}{
		{
			name:     "bearer header",
			prepare:  func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) },
			wantCode: http.StatusOK,
			wantBody: "alice-id",
		},
		{
			name:     "cookie",
			prepare:  func(r *http.Request) { r.AddCookie(&http.Cookie{Name: CookieName, Value: token}) },
			wantCode: http.StatusOK,
			wantBody: "alice-id",
		},
		{
			name:     "no credentials",
			prepare:  func(r *http.Request) {},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "expired token",
			prepare:  func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+expired) },
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "wrong scheme",
			prepare:  func(r *http.Request) { r.Header.Set("Authorization", "Basic "+token) },
			wantCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/cards", nil)
			tt.prepare(req)
			rr := httptest.NewRecorder()

			h.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantCode, rr.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rr.Body.String())
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	ts := newTestTokenService(t)
	token, err := ts.Generate("bob-id")
	require.NoError(t, err)

	h := OptionalAuth(ts)(echoUser)

	t.Run("anonymous passes through", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/profiles/bob", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "anonymous", rr.Body.String())
	})

	t.Run("invalid token is treated as anonymous", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/profiles/bob", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, "anonymous", rr.Body.String())
	})

	t.Run("valid token sets requester", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/profiles/bob", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, "bob-id", rr.Body.String())
	})
}
