package model

import "time"

// Card is a message sent by one user to another.
//
// SentByUserID and SentToUserID are foreign keys to users(id).
// SentByUsername and SentToUsername are not stored on the cards table;
// the repository fills them from a JOIN on users so the API can show
// display names instead of raw IDs.
type Card struct {
	ID           string    `json:"id"           db:"id"`
	Content      string    `json:"content"      db:"content"`
	SentByUserID string    `json:"sentByUserId" db:"sent_by_user_id"`
	SentToUserID string    `json:"sentToUserId" db:"sent_to_user_id"`
	CreatedAt    time.Time `json:"createdAt"    db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt"    db:"updated_at"`

	SentByUsername string `json:"sentByUsername" db:"-"`
	SentToUsername string `json:"sentToUsername" db:"-"`
}
