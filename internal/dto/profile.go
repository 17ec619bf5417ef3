package dto

import (
	"net/url"
	"strings"
	"time"

	"github.com/sakif/cards/internal/model"
)

// ProfileResponse is the public representation of a user. It has no
// password field, so no code path can serialize one.
type ProfileResponse struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Bio        string    `json:"bio"`
	DateJoined time.Time `json:"date_joined"`
	UpdatedAt  time.Time `json:"updated_at"`
	Followers  []string  `json:"followers"`
}

// UpdateProfileRequest is the body of PATCH /api/profiles/{username}. A nil
// field is left unchanged. The username is not writable.
type UpdateProfileRequest struct {
	Email     *string `json:"email" validate:"omitnil,email"`
	FirstName *string `json:"first_name" validate:"omitnil,max=150"`
	LastName  *string `json:"last_name" validate:"omitnil,max=150"`
	Bio       *string `json:"bio" validate:"omitnil,max=500"`
	Password  *string `json:"password" validate:"omitnil,min=8,max=72"`
}

// ProfileURL returns the absolute link to a user's profile. base is the API
// root, for example "https://cards.example.com/api".
func ProfileURL(base, username string) string {
	return strings.TrimRight(base, "/") + "/profiles/" + url.PathEscape(username)
}

// NewProfileResponse maps a user and their followers. Each follower is
// rendered as a hyperlink to that follower's profile.
func NewProfileResponse(u *model.User, followers []model.FollowedUser, base string) ProfileResponse {
	links := make([]string, 0, len(followers))
	for _, f := range followers {
		links = append(links, ProfileURL(base, f.Username))
	}

	return ProfileResponse{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Bio:        u.Bio,
		DateJoined: u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
		Followers:  links,
	}
}
