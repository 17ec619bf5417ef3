package dto

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/cards/internal/apperror"
	"github.com/sakif/cards/internal/model"
)

// requireFieldError asserts err is a validation error on field.
func requireFieldError(t *testing.T, err error, field string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrValidation), "expected validation error, got %v", err)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, field, appErr.Field)
}

// =========================================================================
// Bind TESTS
// =========================================================================

func TestBind_CreateCard(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{"valid", `{"content":"hello","sent_to_user":"bob"}`, ""},
		{"sender in body is ignored", `{"content":"hello","sent_to_user":"bob","sent_by_user":"mallory"}`, ""},
		{"empty body", ``, "body"},
		{"malformed", `{"content":`, "body"},
		{"wrong type", `{"content":12,"sent_to_user":"bob"}`, "content"},
		{"missing content", `{"sent_to_user":"bob"}`, "content"},
		{"missing recipient", `{"content":"hi"}`, "sent_to_user"},
		{"bad recipient", `{"content":"hi","sent_to_user":"no spaces allowed"}`, "sent_to_user"},
		{"content too long", `{"content":"` + strings.Repeat("x", MaxContentLength+1) + `","sent_to_user":"bob"}`, "content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req CreateCardRequest
			err := Bind(strings.NewReader(tt.body), &req)
			if tt.wantField == "" {
				require.NoError(t, err)
				assert.Equal(t, "bob", req.SentToUser)
				return
			}
			requireFieldError(t, err, tt.wantField)
		})
	}
}

func TestBind_UpdateCard(t *testing.T) {
	var req UpdateCardRequest
	require.NoError(t, Bind(strings.NewReader(`{}`), &req))
	assert.Nil(t, req.Content)

	req = UpdateCardRequest{}
	requireFieldError(t, Bind(strings.NewReader(`{"content":""}`), &req), "content")

	req = UpdateCardRequest{}
	require.NoError(t, Bind(strings.NewReader(`{"content":"edited"}`), &req))
	require.NotNil(t, req.Content)
	assert.Equal(t, "edited", *req.Content)
}

func TestBind_UpdateProfile(t *testing.T) {
	var req UpdateProfileRequest
	require.NoError(t, Bind(strings.NewReader(`{"email":"alice@example.com","bio":"hi"}`), &req))
	assert.Nil(t, req.FirstName)

	req = UpdateProfileRequest{}
	requireFieldError(t, Bind(strings.NewReader(`{"email":"not-an-email"}`), &req), "email")

	req = UpdateProfileRequest{}
	requireFieldError(t, Bind(strings.NewReader(`{"password":"short"}`), &req), "password")
}

func TestBind_Unfollow(t *testing.T) {
	var req UnfollowRequest
	require.NoError(t, Bind(strings.NewReader(`{"id":"abc"}`), &req))

	req = UnfollowRequest{}
	require.NoError(t, Bind(strings.NewReader(`{"user_this_user_is_following":"bob"}`), &req))

	req = UnfollowRequest{}
	requireFieldError(t, Bind(strings.NewReader(`{}`), &req), "id")
}

func TestValidUsername(t *testing.T) {
	assert.True(t, ValidUsername("alice"))
	assert.True(t, ValidUsername("a.b-c_d"))
	assert.False(t, ValidUsername("ab"))
	assert.False(t, ValidUsername(strings.Repeat("a", MaxUsernameLength+1)))
	assert.False(t, ValidUsername("al ice"))
}

// =========================================================================
// Response mapping TESTS
// =========================================================================

func TestProfileResponse_NeverHasPassword(t *testing.T) {
	u := &model.User{
		ID:           "u1",
		Username:     "alice",
		PasswordHash: "$2a$04$secret",
		CreatedAt:    time.Now(),
	}

	raw, err := json.Marshal(NewProfileResponse(u, nil, "http://example.com/api"))
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.NotContains(t, fields, "password")
	assert.NotContains(t, string(raw), "$2a$04$secret")
	assert.Equal(t, []any{}, fields["followers"])
}

func TestProfileResponse_FollowerLinks(t *testing.T) {
	u := &model.User{ID: "u1", Username: "alice"}
	followers := []model.FollowedUser{{Username: "bob"}, {Username: "carol"}}

	resp := NewProfileResponse(u, followers, "http://example.com/api/")

	assert.Equal(t, []string{
		"http://example.com/api/profiles/bob",
		"http://example.com/api/profiles/carol",
	}, resp.Followers)
}

func TestNewCardResponse(t *testing.T) {
	c := &model.Card{
		ID:             "c1",
		Content:        "hi",
		SentByUserID:   "u1",
		SentToUserID:   "u2",
		SentByUsername: "alice",
		SentToUsername: "bob",
	}

	resp := NewCardResponse(c)

	assert.Equal(t, "alice", resp.SentByUser)
	assert.Equal(t, "bob", resp.SentToUser)
	assert.Equal(t, "u1", resp.SentByUserID)
	assert.Len(t, NewCardResponses(nil), 0)
	assert.NotNil(t, NewCardResponses(nil))
}

func TestNewFollowerResponses(t *testing.T) {
	users := []model.FollowedUser{{FollowID: "f1", UserID: "u2", Username: "bob"}}

	followers := NewFollowerResponses(users, "http://h/api")
	require.Len(t, followers, 1)
	assert.Equal(t, "http://h/api/profiles/bob", followers[0].Profile)
	assert.Equal(t, "f1", followers[0].FollowID)

	followees := NewFolloweeResponses(users, "http://h/api")
	assert.Equal(t, followers[0].Username, followees[0].Username)
}
