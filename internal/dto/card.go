package dto

import (
	"time"

	"github.com/sakif/cards/internal/model"
)

// CreateCardRequest is the body of POST /api/cards. The sender is always the
// authenticated requester, so a sent_by_user key in the body is ignored.
type CreateCardRequest struct {
	Content    string `json:"content" validate:"required,max=1000"`
	SentToUser string `json:"sent_to_user" validate:"required,username"`
}

// UpdateCardRequest is the body of PATCH /api/cards/{id}. Only the content
// of a card can change.
type UpdateCardRequest struct {
	Content *string `json:"content" validate:"omitnil,min=1,max=1000"`
}

type CardResponse struct {
	ID           string    `json:"id"`
	Content      string    `json:"content"`
	SentByUser   string    `json:"sent_by_user"`
	SentToUser   string    `json:"sent_to_user"`
	SentByUserID string    `json:"sent_by_user_id"`
	SentToUserID string    `json:"sent_to_user_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func NewCardResponse(c *model.Card) CardResponse {
	return CardResponse{
		ID:           c.ID,
		Content:      c.Content,
		SentByUser:   c.SentByUsername,
		SentToUser:   c.SentToUsername,
		SentByUserID: c.SentByUserID,
		SentToUserID: c.SentToUserID,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func NewCardResponses(cards []model.Card) []CardResponse {
	out := make([]CardResponse, 0, len(cards))
	for i := range cards {
		out = append(out, NewCardResponse(&cards[i]))
	}
	return out
}
