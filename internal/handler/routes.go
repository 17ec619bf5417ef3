package handler

import (
	"github.com/go-chi/chi/v5"

	"github.com/sakif/cards/internal/auth"
)

// Handlers groups the endpoint handlers mounted by Mount.
type Handlers struct {
	Auth    *AuthHandler
	Profile *ProfileHandler
	Card    *CardHandler
	Follow  *FollowHandler
	Health  *HealthHandler
}

// Mount registers the health, auth and API routes on r. The GitHub routes
// are only mounted when the auth handler has a provider.
func Mount(r chi.Router, h Handlers, tokens *auth.TokenService) {
	r.Get("/healthz", h.Health.HandleHealth)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Auth.HandleRegister)
		r.Post("/login", h.Auth.HandleLogin)
		r.Post("/logout", h.Auth.HandleLogout)

		if h.Auth.GitHubEnabled() {
			r.Get("/github/login", h.Auth.HandleGitHubLogin)
			r.Get("/github/callback", h.Auth.HandleGitHubCallback)
		}
	})

	r.Route("/api", func(r chi.Router) {
		r.With(auth.OptionalAuth(tokens)).Get("/profiles/{username}", h.Profile.HandleGet)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/me", h.Profile.HandleMe)
			r.Patch("/profiles/{username}", h.Profile.HandleUpdate)
			r.Delete("/profiles/{username}", h.Profile.HandleDelete)

			r.Get("/cards", h.Card.HandleList)
			r.Post("/cards", h.Card.HandleCreate)
			r.Get("/cards/sent", h.Card.HandleListSent)
			r.Get("/cards/received", h.Card.HandleListReceived)
			r.Get("/cards/feed", h.Card.HandleFeed)
			r.Get("/cards/{id}", h.Card.HandleGet)
			r.Patch("/cards/{id}", h.Card.HandleUpdate)
			r.Delete("/cards/{id}", h.Card.HandleDelete)

			r.Post("/follows", h.Follow.HandleFollow)
			r.Delete("/follows", h.Follow.HandleUnfollow)
			r.Get("/follows/following", h.Follow.HandleListFollowing)
			r.Get("/follows/followers", h.Follow.HandleListFollowers)
			r.Delete("/follows/{id}", h.Follow.HandleUnfollowByID)
		})
	})
}
