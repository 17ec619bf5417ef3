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

var _ repository.FollowRepository = (*FollowStore)(nil)

// FollowStore persists follow edges.
type FollowStore struct {
	conn *sql.DB
}

const followSelect = `
	SELECT f.id, f.this_user_id, f.user_this_user_is_following_id, f.created_at,
	       a.username, b.username
	FROM follows f
	JOIN users a ON a.id = f.this_user_id
	JOIN users b ON b.id = f.user_this_user_is_following_id`

func scanFollow(row scanner) (*model.Follow, error) {
	var f model.Follow
	if err := row.Scan(
		&f.ID,
		&f.ThisUserID,
		&f.UserThisUserIsFollowingID,
		&f.CreatedAt,
		&f.ThisUsername,
		&f.UserThisUserIsFollowingName,
	); err != nil {
		return nil, err
	}
	return &f, nil
}

// Create inserts a follow edge. A second edge for the same pair returns
// apperror.ErrConflict.
func (s *FollowStore) Create(ctx context.Context, follow *model.Follow) error {
	follow.ID = xid.New().String()
	follow.CreatedAt = time.Now().UTC()

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO follows (id, this_user_id, user_this_user_is_following_id, created_at)
		 VALUES (?, ?, ?, ?)`,
		follow.ID,
		follow.ThisUserID,
		follow.UserThisUserIsFollowingID,
		follow.CreatedAt,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return apperror.Conflict("follow", follow.ThisUserID+"->"+follow.UserThisUserIsFollowingID)
		case isForeignKeyViolation(err):
			return apperror.ValidationFailed("user_this_user_is_following", "followed user does not exist")
		}
		return fmt.Errorf("sqlite: creating follow: %w", err)
	}

	return nil
}

// GetByID retrieves a follow edge by its ID.
func (s *FollowStore) GetByID(ctx context.Context, id string) (*model.Follow, error) {
	f, err := scanFollow(s.conn.QueryRowContext(ctx, followSelect+` WHERE f.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("follow", id)
		}
		return nil, fmt.Errorf("sqlite: getting follow %s: %w", id, err)
	}
	return f, nil
}

// GetByPair retrieves the edge thisUserID → followingUserID.
func (s *FollowStore) GetByPair(ctx context.Context, thisUserID, followingUserID string) (*model.Follow, error) {
	f, err := scanFollow(s.conn.QueryRowContext(ctx,
		followSelect+` WHERE f.this_user_id = ? AND f.user_this_user_is_following_id = ?`,
		thisUserID, followingUserID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("follow", thisUserID+"->"+followingUserID)
		}
		return nil, fmt.Errorf("sqlite: getting follow %s->%s: %w", thisUserID, followingUserID, err)
	}
	return f, nil
}

// Delete removes a follow edge by its ID.
func (s *FollowStore) Delete(ctx context.Context, id string) error {
	result, err := s.conn.ExecContext(ctx, `DELETE FROM follows WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting follow %s: %w", id, err)
	}

	return rowsAffected(result, apperror.NotFound("follow", id))
}

// ListFollowing returns the users userID follows, most recent first.
func (s *FollowStore) ListFollowing(ctx context.Context, userID string, opts repository.ListOptions) ([]model.FollowedUser, error) {
	limit, offset := pageBounds(opts)
	return s.query(ctx, "listing following", `
		SELECT f.id, u.id, u.username, u.first_name, u.last_name, f.created_at
		FROM follows f
		JOIN users u ON u.id = f.user_this_user_is_following_id
		WHERE f.this_user_id = ?
		ORDER BY f.created_at DESC, f.id DESC
		LIMIT ? OFFSET ?`,
		userID, limit, offset)
}

// ListFollowers returns the users following userID, most recent first.
func (s *FollowStore) ListFollowers(ctx context.Context, userID string, opts repository.ListOptions) ([]model.FollowedUser, error) {
	limit, offset := pageBounds(opts)
	return s.query(ctx, "listing followers", `
		SELECT f.id, u.id, u.username, u.first_name, u.last_name, f.created_at
		FROM follows f
		JOIN users u ON u.id = f.this_user_id
		WHERE f.user_this_user_is_following_id = ?
		ORDER BY f.created_at DESC, f.id DESC
		LIMIT ? OFFSET ?`,
		userID, limit, offset)
}

func (s *FollowStore) query(ctx context.Context, op, query string, args ...any) ([]model.FollowedUser, error) {
	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %s: %w", op, err)
	}
	defer rows.Close()

	users := make([]model.FollowedUser, 0)
	for rows.Next() {
		var fu model.FollowedUser
		if err := rows.Scan(&fu.FollowID, &fu.UserID, &fu.Username, &fu.FirstName, &fu.LastName, &fu.Since); err != nil {
			return nil, fmt.Errorf("sqlite: scanning follow row: %w", err)
		}
		users = append(users, fu)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: %s: %w", op, err)
	}

	return users, nil
}
