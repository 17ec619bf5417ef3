package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/sakif/cards/internal/apperror"
	"github.com/sakif/cards/internal/model"
	"github.com/sakif/cards/internal/permission"
	"github.com/sakif/cards/internal/repository"
)

// CardService handles sending, editing and listing cards.
type CardService struct {
	cards  repository.CardRepository
	users  repository.UserRepository
	logger *slog.Logger
}

func NewCardService(cards repository.CardRepository, users repository.UserRepository, logger *slog.Logger) *CardService {
	return &CardService{
		cards:  cards,
		users:  users,
		logger: logger,
	}
}

var requireCardReader = permission.IsAuthenticated[*model.Card]()

// List returns every card, newest first.
func (s *CardService) List(ctx context.Context, requesterID string, opts repository.ListOptions) ([]model.Card, error) {
	if err := permission.Check(requesterID, (*model.Card)(nil), http.MethodGet, requireCardReader); err != nil {
		return nil, err
	}

	cards, err := s.cards.List(ctx, normalizePage(opts))
	if err != nil {
		return nil, fmt.Errorf("service/card: listing cards: %w", err)
	}
	return cards, nil
}

// Send creates a card from the requester to the user named recipient. The
// sender is always the requester.
func (s *CardService) Send(ctx context.Context, requesterID, recipient, content string) (*model.Card, error) {
	if err := permission.Check(requesterID, (*model.Card)(nil), http.MethodPost, requireCardReader); err != nil {
		return nil, err
	}

	content, err := validateContent(content)
	if err != nil {
		return nil, err
	}

	to, err := s.users.GetByUsername(ctx, strings.TrimSpace(recipient))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.ValidationFailed("sent_to_user", fmt.Sprintf("user %q does not exist", recipient))
		}
		return nil, fmt.Errorf("service/card: resolving recipient %s: %w", recipient, err)
	}

	card := &model.Card{
		Content:      content,
		SentByUserID: requesterID,
		SentToUserID: to.ID,
	}
	if err := s.cards.Create(ctx, card); err != nil {
		if errors.Is(err, apperror.ErrValidation) {
			return nil, err
		}
		return nil, fmt.Errorf("service/card: creating card: %w", err)
	}

	s.logger.Info("card sent",
		slog.String("id", card.ID),
		slog.String("from", requesterID),
		slog.String("to", to.ID),
	)

	return s.cards.GetByID(ctx, card.ID)
}

// Get returns one card.
func (s *CardService) Get(ctx context.Context, requesterID, id string) (*model.Card, error) {
	card, err := s.cards.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := permission.Check(requesterID, card, http.MethodGet, requireCardReader, permission.CardSenderOrReadOnly); err != nil {
		return nil, err
	}
	return card, nil
}

// Authorize reports whether the requester may apply method to the card
// with the given ID. Handlers call it before reading a request body so a
// non-sender is refused whatever the body contains.
func (s *CardService) Authorize(ctx context.Context, requesterID, id, method string) error {
	card, err := s.cards.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return permission.Check(requesterID, card, method, requireCardReader, permission.CardSenderOrReadOnly)
}

// Update replaces the content of a card. Only the sender may edit it; a nil
// content leaves the card unchanged.
func (s *CardService) Update(ctx context.Context, requesterID, id string, content *string) (*model.Card, error) {
	card, err := s.cards.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := permission.Check(requesterID, card, http.MethodPatch, permission.CardSenderOrReadOnly); err != nil {
		s.logger.Warn("card update denied",
			slog.String("requesterID", requesterID),
			slog.String("cardID", id),
		)
		return nil, err
	}

	if content == nil {
		return card, nil
	}

	card.Content, err = validateContent(*content)
	if err != nil {
		return nil, err
	}

	if err := s.cards.Update(ctx, card); err != nil {
		return nil, fmt.Errorf("service/card: updating card %s: %w", id, err)
	}

	s.logger.Info("card updated", slog.String("id", id))
	return card, nil
}

// Delete removes a card. Only the sender may delete it.
func (s *CardService) Delete(ctx context.Context, requesterID, id string) error {
	card, err := s.cards.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := permission.Check(requesterID, card, http.MethodDelete, permission.CardSenderOrReadOnly); err != nil {
		return err
	}

	if err := s.cards.Delete(ctx, id); err != nil {
		return fmt.Errorf("service/card: deleting card %s: %w", id, err)
	}

	s.logger.Info("card deleted", slog.String("id", id))
	return nil
}

// ListSent returns the cards the requester has sent.
func (s *CardService) ListSent(ctx context.Context, requesterID string, opts repository.ListOptions) ([]model.Card, error) {
	if err := permission.Check(requesterID, (*model.Card)(nil), http.MethodGet, requireCardReader); err != nil {
		return nil, err
	}

	cards, err := s.cards.ListSentBy(ctx, requesterID, normalizePage(opts))
	if err != nil {
		return nil, fmt.Errorf("service/card: listing sent cards: %w", err)
	}
	return cards, nil
}

// ListReceived returns the cards addressed to the requester.
func (s *CardService) ListReceived(ctx context.Context, requesterID string, opts repository.ListOptions) ([]model.Card, error) {
	if err := permission.Check(requesterID, (*model.Card)(nil), http.MethodGet, requireCardReader); err != nil {
		return nil, err
	}

	cards, err := s.cards.ListReceivedBy(ctx, requesterID, normalizePage(opts))
	if err != nil {
		return nil, fmt.Errorf("service/card: listing received cards: %w", err)
	}
	return cards, nil
}

// Feed returns the cards sent by the users the requester follows.
func (s *CardService) Feed(ctx context.Context, requesterID string, opts repository.ListOptions) ([]model.Card, error) {
	if err := permission.Check(requesterID, (*model.Card)(nil), http.MethodGet, requireCardReader); err != nil {
		return nil, err
	}

	cards, err := s.cards.ListFeed(ctx, requesterID, normalizePage(opts))
	if err != nil {
		return nil, fmt.Errorf("service/card: listing feed: %w", err)
	}
	return cards, nil
}

func validateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", apperror.ValidationFailed("content", "card content is required")
	}
	if utf8.RuneCountInString(content) > model.MaxContentLength {
		return "", apperror.ValidationFailed("content",
			fmt.Sprintf("card content must be %d characters or less", model.MaxContentLength))
	}
	return content, nil
}
