package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/cards/internal/dto"
	"github.com/sakif/cards/internal/service"
)

// ProfileHandler serves /api/profiles/{username}.
type ProfileHandler struct {
	profiles *service.ProfileService
	links    Links
	logger   *slog.Logger
}

func NewProfileHandler(profiles *service.ProfileService, links Links, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
		links:    links,
		logger:   logger,
	}
}

// HandleGet returns a public profile.
//
// HTTP: GET /api/profiles/{username}
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.Get(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewProfileResponse(p.User, p.Followers, h.links.APIBase(r)))
}

// HandleUpdate edits the requester's own profile.
//
// HTTP: PATCH /api/profiles/{username}
func (h *ProfileHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	if err := h.profiles.Authorize(r.Context(), requester(r), username, r.Method); err != nil {
		writeError(w, err)
		return
	}

	var req dto.UpdateProfileRequest
	if err := bind(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	p, err := h.profiles.Update(r.Context(), requester(r), username, service.ProfileChanges{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Password:  req.Password,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewProfileResponse(p.User, p.Followers, h.links.APIBase(r)))
}

// HandleDelete removes the requester's own account.
//
// HTTP: DELETE /api/profiles/{username}
func (h *ProfileHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.profiles.Delete(r.Context(), requester(r), chi.URLParam(r, "username")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleMe returns the requester's own profile.
//
// HTTP: GET /api/me
func (h *ProfileHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.GetByID(r.Context(), requester(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewProfileResponse(p.User, p.Followers, h.links.APIBase(r)))
}
