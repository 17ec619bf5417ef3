package model

import "time"

// Follow is a directed edge: ThisUserID follows UserThisUserIsFollowingID.
//
// The pair (this_user_id, user_this_user_is_following_id) is UNIQUE in the
// database, and an edge from a user to themselves is rejected by the service.
type Follow struct {
	ID                        string    `json:"id"                        db:"id"`
	ThisUserID                string    `json:"thisUserId"                db:"this_user_id"`
	UserThisUserIsFollowingID string    `json:"userThisUserIsFollowingId" db:"user_this_user_is_following_id"`
	CreatedAt                 time.Time `json:"createdAt"                 db:"created_at"`

	ThisUsername                string `json:"thisUsername"                db:"-"`
	UserThisUserIsFollowingName string `json:"userThisUserIsFollowingName" db:"-"`
}

// FollowedUser is one row of a follow listing: the edge plus the
// counterpart user's public identity (the followee when listing who a user
// follows, the follower when listing who follows a user).
type FollowedUser struct {
	FollowID  string
	UserID    string
	Username  string
	FirstName string
	LastName  string
	Since     time.Time
}
