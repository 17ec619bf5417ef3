package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/sakif/cards/internal/auth"
	"github.com/sakif/cards/internal/handler"
	sqliteRepo "github.com/sakif/cards/internal/repository/sqlite"
	"github.com/sakif/cards/internal/service"
)

// =========================================================================
// TEST ENVIRONMENT
// =========================================================================

// testEnv wires real services over an in-memory database.
type testEnv struct {
	router  chi.Router
	db      *sqliteRepo.DB
	authSvc *service.AuthService
	tokens  *auth.TokenService
	github  *fakeGitHub
}

type fakeGitHub struct {
	user *auth.GitHubUser
	err  error
}

func (f *fakeGitHub) AuthURL(state string) string {
	return "https://github.example/authorize?state=" + state
}

func (f *fakeGitHub) Exchange(_ context.Context, code string) (*auth.GitHubUser, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqliteRepo.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens, err := auth.NewTokenService("handler-test-secret-123", time.Hour)
	require.NoError(t, err)
	passwords := auth.NewPasswordServiceForTest()

	authSvc := service.NewAuthService(db.Users(), tokens, passwords, logger)
	profileSvc := service.NewProfileService(db.Users(), db.Follows(), passwords, logger)
	cardSvc := service.NewCardService(db.Cards(), db.Users(), logger)
	followSvc := service.NewFollowService(db.Follows(), db.Users(), logger)

	links := handler.NewLinks("http://cards.test")
	gh := &fakeGitHub{}
	authH := handler.NewAuthHandler(authSvc, profileSvc, gh, links, handler.CookieOptions{TTL: time.Hour}, "", logger)
	profileH := handler.NewProfileHandler(profileSvc, links, logger)
	cardH := handler.NewCardHandler(cardSvc, logger)
	followH := handler.NewFollowHandler(followSvc, links, logger)

	r := chi.NewRouter()
	handler.Mount(r, handler.Handlers{
		Auth:    authH,
		Profile: profileH,
		Card:    cardH,
		Follow:  followH,
		Health:  handler.NewHealthHandler(db, logger),
	}, tokens)

	return &testEnv{router: r, db: db, authSvc: authSvc, tokens: tokens, github: gh}
}

// user registers username and returns its ID and bearer token.
func (e *testEnv) user(t *testing.T, username string) (id, token string) {
	t.Helper()
	res, err := e.authSvc.Register(context.Background(), service.Registration{Username: username, Password: "password-" + username})
	require.NoError(t, err)
	return res.User.ID, res.Token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v), "body: %s", rr.Body.String())
	return v
}
