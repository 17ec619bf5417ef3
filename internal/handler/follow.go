package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/cards/internal/dto"
	"github.com/sakif/cards/internal/service"
)

// FollowHandler serves /api/follows.
type FollowHandler struct {
	follows *service.FollowService
	links   Links
	logger  *slog.Logger
}

func NewFollowHandler(follows *service.FollowService, links Links, logger *slog.Logger) *FollowHandler {
	return &FollowHandler{
		follows: follows,
		links:   links,
		logger:  logger,
	}
}

// HandleFollow makes the requester follow another user.
//
// HTTP: POST /api/follows
// REQUEST BODY: {"user_this_user_is_following": "bob"}
func (h *FollowHandler) HandleFollow(w http.ResponseWriter, r *http.Request) {
	var req dto.FollowRequest
	if err := bind(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	follow, err := h.follows.Follow(r.Context(), requester(r), req.UserThisUserIsFollowing)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.NewFollowResponse(follow))
}

// HandleUnfollow removes a follow edge named in the body, either by edge ID
// or by the followee's username.
//
// HTTP: DELETE /api/follows
// REQUEST BODY: {"user_this_user_is_following": "bob"} or {"id": "..."}
func (h *FollowHandler) HandleUnfollow(w http.ResponseWriter, r *http.Request) {
	var req dto.UnfollowRequest
	if err := bind(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	h.unfollow(w, r, service.UnfollowTarget{ID: req.ID, Username: req.UserThisUserIsFollowing})
}

// HandleUnfollowByID removes the follow edge named in the URL.
//
// HTTP: DELETE /api/follows/{id}
func (h *FollowHandler) HandleUnfollowByID(w http.ResponseWriter, r *http.Request) {
	h.unfollow(w, r, service.UnfollowTarget{ID: chi.URLParam(r, "id")})
}

func (h *FollowHandler) unfollow(w http.ResponseWriter, r *http.Request, target service.UnfollowTarget) {
	if err := h.follows.Unfollow(r.Context(), requester(r), target); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleListFollowing returns the users the requester follows.
//
// HTTP: GET /api/follows/following
func (h *FollowHandler) HandleListFollowing(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptions(r)
	if err != nil {
		writeError(w, err)
		return
	}

	users, err := h.follows.ListFollowing(r.Context(), requester(r), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewFolloweeResponses(users, h.links.APIBase(r)))
}

// HandleListFollowers returns the users following the requester.
//
// HTTP: GET /api/follows/followers
func (h *FollowHandler) HandleListFollowers(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptions(r)
	if err != nil {
		writeError(w, err)
		return
	}

	users, err := h.follows.ListFollowers(r.Context(), requester(r), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewFollowerResponses(users, h.links.APIBase(r)))
}
