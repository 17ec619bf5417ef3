// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data. Relations between users,
// cards and follows are expressed as ID fields; the repositories resolve them.
package model

import "time"

// User represents a registered account and its public profile.
//
// PasswordHash carries the `json:"-"` tag so that the model can never leak
// it, but API responses go through dto.ProfileResponse, which has no
// password field at all.
//
// GitHubID is nil for users who registered with a username and password.
// Users who signed in with GitHub get it set on first login; the UNIQUE
// constraint on github_id maps one GitHub account to exactly one user.
type User struct {
	ID           string    `json:"id"           db:"id"`
	Username     string    `json:"username"     db:"username"`
	PasswordHash string    `json:"-"            db:"password_hash"`
	Email        string    `json:"email"        db:"email"`
	FirstName    string    `json:"firstName"    db:"first_name"`
	LastName     string    `json:"lastName"     db:"last_name"`
	Bio          string    `json:"bio"          db:"bio"`
	GitHubID     *int64    `json:"-"            db:"github_id"`
	CreatedAt    time.Time `json:"createdAt"    db:"created_at"` // date joined
	UpdatedAt    time.Time `json:"updatedAt"    db:"updated_at"`
}
