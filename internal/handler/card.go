package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/cards/internal/dto"
	"github.com/sakif/cards/internal/service"
)

// CardHandler serves /api/cards and its sub-resources. Each verb has its
// own method and builds its own query.
type CardHandler struct {
	cards  *service.CardService
	logger *slog.Logger
}

func NewCardHandler(cards *service.CardService, logger *slog.Logger) *CardHandler {
	return &CardHandler{
		cards:  cards,
		logger: logger,
	}
}

// HandleList returns all cards, newest first.
//
// HTTP: GET /api/cards?limit=20&offset=0
func (h *CardHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptions(r)
	if err != nil {
		writeError(w, err)
		return
	}

	cards, err := h.cards.List(r.Context(), requester(r), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewCardResponses(cards))
}

// HandleCreate sends a card from the requester.
//
// HTTP: POST /api/cards
// REQUEST BODY: {"content": "happy birthday", "sent_to_user": "bob"}
func (h *CardHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateCardRequest
	if err := bind(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	card, err := h.cards.Send(r.Context(), requester(r), req.SentToUser, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.NewCardResponse(card))
}

// HandleGet returns one card.
//
// HTTP: GET /api/cards/{id}
func (h *CardHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	card, err := h.cards.Get(r.Context(), requester(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewCardResponse(card))
}

// HandleUpdate edits a card the requester sent.
//
// HTTP: PATCH /api/cards/{id}
func (h *CardHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	// Ownership is decided before the body is looked at.
	if err := h.cards.Authorize(r.Context(), requester(r), id, r.Method); err != nil {
		writeError(w, err)
		return
	}

	var req dto.UpdateCardRequest
	if err := bind(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	card, err := h.cards.Update(r.Context(), requester(r), id, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewCardResponse(card))
}

// HandleDelete removes a card the requester sent.
//
// HTTP: DELETE /api/cards/{id}
func (h *CardHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.cards.Delete(r.Context(), requester(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleListSent returns the cards the requester sent.
//
// HTTP: GET /api/cards/sent
func (h *CardHandler) HandleListSent(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptions(r)
	if err != nil {
		writeError(w, err)
		return
	}

	cards, err := h.cards.ListSent(r.Context(), requester(r), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewCardResponses(cards))
}

// HandleFeed returns the cards sent by users the requester follows.
//
// HTTP: GET /api/cards/feed
func (h *CardHandler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptions(r)
	if err != nil {
		writeError(w, err)
		return
	}

	cards, err := h.cards.Feed(r.Context(), requester(r), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewCardResponses(cards))
}

// HandleListReceived returns the cards addressed to the requester.
//
// HTTP: GET /api/cards/received
func (h *CardHandler) HandleListReceived(w http.ResponseWriter, r *http.Request) {
	opts, err := listOptions(r)
	if err != nil {
		writeError(w, err)
		return
	}

	cards, err := h.cards.ListReceived(r.Context(), requester(r), opts)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewCardResponses(cards))
}
