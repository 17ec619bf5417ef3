package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/cards/internal/apperror"
	"github.com/sakif/cards/internal/model"
	"github.com/sakif/cards/internal/repository"
)

var _ repository.CardRepository = (*CardStore)(nil)

// CardStore persists cards.
type CardStore struct {
	conn *sql.DB
}

// cardSelect joins the sender and recipient so every card read carries
// both usernames.
const cardSelect = `
	SELECT c.id, c.content, c.sent_by_user_id, c.sent_to_user_id, c.created_at, c.updated_at,
	       s.username, r.username
	FROM cards c
	JOIN users s ON s.id = c.sent_by_user_id
	JOIN users r ON r.id = c.sent_to_user_id`

func scanCard(row scanner) (*model.Card, error) {
	var c model.Card
	if err := row.Scan(
		&c.ID,
		&c.Content,
		&c.SentByUserID,
		&c.SentToUserID,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.SentByUsername,
		&c.SentToUsername,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new card. Sender and recipient must exist; a dangling
// reference is reported as a validation error on sent_to_user.
func (s *CardStore) Create(ctx context.Context, card *model.Card) error {
	now := time.Now().UTC()
	card.ID = xid.New().String()
	card.CreatedAt = now
	card.UpdatedAt = now

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO cards (id, content, sent_by_user_id, sent_to_user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		card.ID,
		card.Content,
		card.SentByUserID,
		card.SentToUserID,
		card.CreatedAt,
		card.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.ValidationFailed("sent_to_user", "sender and recipient must be existing users")
		}
		return fmt.Errorf("sqlite: creating card: %w", err)
	}

	return nil
}

// GetByID retrieves a single card by its ID.
func (s *CardStore) GetByID(ctx context.Context, id string) (*model.Card, error) {
	c, err := scanCard(s.conn.QueryRowContext(ctx, cardSelect+` WHERE c.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("card", id)
		}
		return nil, fmt.Errorf("sqlite: getting card %s: %w", id, err)
	}
	return c, nil
}

// List returns every card, newest first.
func (s *CardStore) List(ctx context.Context, opts repository.ListOptions) ([]model.Card, error) {
	limit, offset := pageBounds(opts)
	return s.query(ctx, "listing cards",
		cardSelect+` ORDER BY c.created_at DESC, c.id DESC LIMIT ? OFFSET ?`,
		limit, offset)
}

// ListSentBy returns the cards whose sender is userID.
func (s *CardStore) ListSentBy(ctx context.Context, userID string, opts repository.ListOptions) ([]model.Card, error) {
	limit, offset := pageBounds(opts)
	return s.query(ctx, "listing sent cards",
		cardSelect+` WHERE c.sent_by_user_id = ? ORDER BY c.created_at DESC, c.id DESC LIMIT ? OFFSET ?`,
		userID, limit, offset)
}

// ListReceivedBy returns the cards whose recipient is userID.
func (s *CardStore) ListReceivedBy(ctx context.Context, userID string, opts repository.ListOptions) ([]model.Card, error) {
	limit, offset := pageBounds(opts)
	return s.query(ctx, "listing received cards",
		cardSelect+` WHERE c.sent_to_user_id = ? ORDER BY c.created_at DESC, c.id DESC LIMIT ? OFFSET ?`,
		userID, limit, offset)
}

// ListFeed returns the cards sent by users that userID follows.
func (s *CardStore) ListFeed(ctx context.Context, userID string, opts repository.ListOptions) ([]model.Card, error) {
	limit, offset := pageBounds(opts)
	return s.query(ctx, "listing feed",
		cardSelect+`
		JOIN follows f ON f.user_this_user_is_following_id = c.sent_by_user_id
		WHERE f.this_user_id = ?
		ORDER BY c.created_at DESC, c.id DESC LIMIT ? OFFSET ?`,
		userID, limit, offset)
}

func (s *CardStore) query(ctx context.Context, op, query string, args ...any) ([]model.Card, error) {
	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %s: %w", op, err)
	}
	defer rows.Close()

	cards := make([]model.Card, 0)
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning card row: %w", err)
		}
		cards = append(cards, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: %s: %w", op, err)
	}

	return cards, nil
}

// Update modifies a card's content. Sender and recipient are immutable.
func (s *CardStore) Update(ctx context.Context, card *model.Card) error {
	card.UpdatedAt = time.Now().UTC()

	result, err := s.conn.ExecContext(ctx,
		`UPDATE cards SET content = ?, updated_at = ? WHERE id = ?`,
		card.Content,
		card.UpdatedAt,
		card.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating card %s: %w", card.ID, err)
	}

	return rowsAffected(result, apperror.NotFound("card", card.ID))
}

// Delete removes a card by its ID.
func (s *CardStore) Delete(ctx context.Context, id string) error {
	result, err := s.conn.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting card %s: %w", id, err)
	}

	return rowsAffected(result, apperror.NotFound("card", id))
}
