package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/cards/internal/auth"
	"github.com/sakif/cards/internal/dto"
	"github.com/sakif/cards/internal/service"
)

const stateCookieName = "oauth_state"

// OAuthProvider is the GitHub side of the sign-in flow.
// *auth.GitHubProvider satisfies it.
type OAuthProvider interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.GitHubUser, error)
}

// CookieOptions controls the access-token cookie.
type CookieOptions struct {
	TTL    time.Duration
	Secure bool
}

// AuthHandler serves registration, password login, GitHub login and logout.
type AuthHandler struct {
	auth     *service.AuthService
	profiles *service.ProfileService
	github   OAuthProvider // nil when GitHub sign-in is not configured
	links    Links
	cookie   CookieOptions
	redirect string
	logger   *slog.Logger
}

func NewAuthHandler(
	authSvc *service.AuthService,
	profiles *service.ProfileService,
	github OAuthProvider,
	links Links,
	cookie CookieOptions,
	redirect string,
	logger *slog.Logger,
) *AuthHandler {
	if redirect == "" {
		redirect = "/api/me"
	}
	return &AuthHandler{
		auth:     authSvc,
		profiles: profiles,
		github:   github,
		links:    links,
		cookie:   cookie,
		redirect: redirect,
		logger:   logger,
	}
}

// GitHubEnabled reports whether GitHub sign-in is available.
func (h *AuthHandler) GitHubEnabled() bool {
	return h.github != nil
}

// HandleRegister creates an account and signs it in.
//
// HTTP: POST /auth/register
// REQUEST BODY: {"username": "alice", "password": "wonderland", "email": "..."}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := bind(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.auth.Register(r.Context(), service.Registration{
		Username:  req.Username,
		Password:  req.Password,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	h.respond(w, r, http.StatusCreated, res)
}

// HandleLogin signs in with a username and password.
//
// HTTP: POST /auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := bind(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.respond(w, r, http.StatusOK, res)
}

// HandleLogout clears the token cookie. Tokens are stateless, so a bearer
// token stays valid until it expires.
//
// HTTP: POST /auth/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// HandleGitHubLogin redirects the browser to GitHub. A random state is kept
// in a short-lived cookie and checked on the callback.
//
// HTTP: GET /auth/github/login
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback completes the GitHub flow: check state, exchange the
// code, upsert the user, set the token cookie and redirect.
//
// HTTP: GET /auth/github/callback?code=xxx&state=yyy
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("auth callback: invalid state")
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "invalid OAuth state", Field: "state"})
		return
	}

	// single use
	http.SetCookie(w, &http.Cookie{Name: stateCookieName, Value: "", Path: "/", MaxAge: -1})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("auth callback: user denied authorization", slog.String("error", errParam))
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "GitHub authorization was denied"})
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "missing OAuth code", Field: "code"})
		return
	}

	ghUser, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("auth callback: GitHub exchange failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: "upstream_error", Message: "authentication with GitHub failed"})
		return
	}

	res, err := h.auth.LoginWithGitHub(r.Context(), ghUser)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setTokenCookie(w, res.Token)
	http.Redirect(w, r, h.redirect, http.StatusSeeOther)
}

func (h *AuthHandler) respond(w http.ResponseWriter, r *http.Request, status int, res *service.AuthResult) {
	p, err := h.profiles.GetByID(r.Context(), res.User.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setTokenCookie(w, res.Token)
	writeJSON(w, status, dto.AuthResponse{
		Token:   res.Token,
		Profile: dto.NewProfileResponse(p.User, p.Followers, h.links.APIBase(r)),
	})
}

func (h *AuthHandler) setTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookie.TTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
