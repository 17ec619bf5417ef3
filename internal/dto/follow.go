package dto

import (
	"time"

	"github.com/sakif/cards/internal/model"
)

// FollowRequest is the body of POST /api/follows. The follower is always the
// authenticated requester; a this_user key in the body is ignored.
type FollowRequest struct {
	UserThisUserIsFollowing string `json:"user_this_user_is_following" validate:"required,username"`
}

// UnfollowRequest is the body of DELETE /api/follows. Either the edge ID or
// the followee's username identifies the edge.
type UnfollowRequest struct {
	ID                      string `json:"id" validate:"required_without=UserThisUserIsFollowing"`
	UserThisUserIsFollowing string `json:"user_this_user_is_following" validate:"omitempty,username"`
}

type FollowResponse struct {
	ID                      string    `json:"id"`
	ThisUser                string    `json:"this_user"`
	UserThisUserIsFollowing string    `json:"user_this_user_is_following"`
	CreatedAt               time.Time `json:"created_at"`
}

func NewFollowResponse(f *model.Follow) FollowResponse {
	return FollowResponse{
		ID:                      f.ID,
		ThisUser:                f.ThisUsername,
		UserThisUserIsFollowing: f.UserThisUserIsFollowingName,
		CreatedAt:               f.CreatedAt,
	}
}

// FolloweeResponse is one entry of GET /api/follows/following: a user the
// requester follows.
type FolloweeResponse struct {
	FollowID  string    `json:"follow_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Profile   string    `json:"profile"`
	Since     time.Time `json:"since"`
}

// FollowerResponse is one entry of GET /api/follows/followers: a user who
// follows the requester.
type FollowerResponse FolloweeResponse

func newRelated(fu model.FollowedUser, base string) FolloweeResponse {
	return FolloweeResponse{
		FollowID:  fu.FollowID,
		UserID:    fu.UserID,
		Username:  fu.Username,
		FirstName: fu.FirstName,
		LastName:  fu.LastName,
		Profile:   ProfileURL(base, fu.Username),
		Since:     fu.Since,
	}
}

func NewFolloweeResponses(users []model.FollowedUser, base string) []FolloweeResponse {
	out := make([]FolloweeResponse, 0, len(users))
	for _, fu := range users {
		out = append(out, newRelated(fu, base))
	}
	return out
}

func NewFollowerResponses(users []model.FollowedUser, base string) []FollowerResponse {
	out := make([]FollowerResponse, 0, len(users))
	for _, fu := range users {
		out = append(out, FollowerResponse(newRelated(fu, base)))
	}
	return out
}
