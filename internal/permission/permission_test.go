package permission

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sakif/cards/internal/apperror"
	"github.com/sakif/cards/internal/model"
)

func TestIsSafeMethod(t *testing.T) {
	for _, m := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		assert.True(t, IsSafeMethod(m), m)
	}
	for _, m := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		assert.False(t, IsSafeMethod(m), m)
	}
}

func TestProfileOwnerOrReadOnly(t *testing.T) {
	profile := &model.User{ID: "alice-id", Username: "alice"}

	tests := []struct {
		name      string
		requester string
		method    string
		want      bool
	}{
		{"anonymous may read", "", http.MethodGet, true},
		{"other user may read", "bob-id", http.MethodGet, true},
		{"owner may patch", "alice-id", http.MethodPatch, true},
		{"owner may delete", "alice-id", http.MethodDelete, true},
		{"other user may not patch", "bob-id", http.MethodPatch, false},
		{"other user may not delete", "bob-id", http.MethodDelete, false},
		{"anonymous may not patch", "", http.MethodPatch, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ProfileOwnerOrReadOnly.Allow(tt.requester, profile, tt.method))
		})
	}
}

func TestCardSenderOrReadOnly(t *testing.T) {
	card := &model.Card{ID: "c1", SentByUserID: "alice-id", SentToUserID: "bob-id"}

	assert.True(t, CardSenderOrReadOnly.Allow("bob-id", card, http.MethodGet))
	assert.True(t, CardSenderOrReadOnly.Allow("alice-id", card, http.MethodPatch))
	assert.True(t, CardSenderOrReadOnly.Allow("alice-id", card, http.MethodDelete))
	// The recipient does not own the card.
	assert.False(t, CardSenderOrReadOnly.Allow("bob-id", card, http.MethodPatch))
	assert.False(t, CardSenderOrReadOnly.Allow("bob-id", card, http.MethodDelete))
	assert.False(t, CardSenderOrReadOnly.Allow("", card, http.MethodDelete))
}

func TestThisUserUnfollowingOrReadOnly(t *testing.T) {
	edge := &model.Follow{ID: "f1", ThisUserID: "alice-id", UserThisUserIsFollowingID: "bob-id"}

	assert.True(t, ThisUserUnfollowingOrReadOnly.Allow("alice-id", edge, http.MethodDelete))
	// Neither the followee nor a third party may remove the edge.
	assert.False(t, ThisUserUnfollowingOrReadOnly.Allow("bob-id", edge, http.MethodDelete))
	assert.False(t, ThisUserUnfollowingOrReadOnly.Allow("carol-id", edge, http.MethodDelete))
}

func TestIsAuthenticated(t *testing.T) {
	p := IsAuthenticated[*model.Card]()

	assert.True(t, p.Allow("alice-id", nil, http.MethodGet))
	assert.False(t, p.Allow("", nil, http.MethodGet))
}

func TestCheck(t *testing.T) {
	card := &model.Card{SentByUserID: "alice-id"}

	t.Run("all predicates allow", func(t *testing.T) {
		err := Check("alice-id", card, http.MethodPatch, IsAuthenticated[*model.Card](), CardSenderOrReadOnly)
		assert.NoError(t, err)
	})

	t.Run("authenticated non-owner is forbidden", func(t *testing.T) {
		err := Check("bob-id", card, http.MethodPatch, IsAuthenticated[*model.Card](), CardSenderOrReadOnly)
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("anonymous write is unauthorized", func(t *testing.T) {
		err := Check("", card, http.MethodDelete, CardSenderOrReadOnly)
		assert.ErrorIs(t, err, apperror.ErrUnauthorized)
	})

	t.Run("no predicates allows", func(t *testing.T) {
		assert.NoError(t, Check[*model.Card]("", card, http.MethodDelete))
	})
}
