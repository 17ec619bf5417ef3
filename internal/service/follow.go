package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sakif/cards/internal/apperror"
	"github.com/sakif/cards/internal/model"
	"github.com/sakif/cards/internal/permission"
	"github.com/sakif/cards/internal/repository"
)

// FollowService creates and removes follow edges.
type FollowService struct {
	follows repository.FollowRepository
	users   repository.UserRepository
	logger  *slog.Logger
}

func NewFollowService(follows repository.FollowRepository, users repository.UserRepository, logger *slog.Logger) *FollowService {
	return &FollowService{
		follows: follows,
		users:   users,
		logger:  logger,
	}
}

var requireFollower = permission.IsAuthenticated[*model.Follow]()

// UnfollowTarget identifies the edge to remove, by its ID or by the
// followee's username. ID wins when both are set.
type UnfollowTarget struct {
	ID       string
	Username string
}

// Follow makes the requester follow the user named followee. Following
// yourself is a validation error and following twice is a conflict.
func (s *FollowService) Follow(ctx context.Context, requesterID, followee string) (*model.Follow, error) {
	if err := permission.Check(requesterID, (*model.Follow)(nil), http.MethodPost, requireFollower); err != nil {
		return nil, err
	}

	target, err := s.users.GetByUsername(ctx, strings.TrimSpace(followee))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.ValidationFailed("user_this_user_is_following", fmt.Sprintf("user %q does not exist", followee))
		}
		return nil, fmt.Errorf("service/follow: resolving %s: %w", followee, err)
	}

	if target.ID == requesterID {
		return nil, apperror.ValidationFailed("user_this_user_is_following", "you cannot follow yourself")
	}

	if _, err := s.follows.GetByPair(ctx, requesterID, target.ID); err == nil {
		return nil, apperror.Conflict("follow", target.Username)
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/follow: checking existing edge: %w", err)
	}

	follow := &model.Follow{
		ThisUserID:                requesterID,
		UserThisUserIsFollowingID: target.ID,
	}
	if err := s.follows.Create(ctx, follow); err != nil {
		if errors.Is(err, apperror.ErrConflict) || errors.Is(err, apperror.ErrValidation) {
			return nil, err
		}
		return nil, fmt.Errorf("service/follow: creating edge: %w", err)
	}

	s.logger.Info("user followed",
		slog.String("id", follow.ID),
		slog.String("follower", requesterID),
		slog.String("followee", target.ID),
	)

	return s.follows.GetByID(ctx, follow.ID)
}

// Unfollow removes a follow edge. Only the follower may remove it: naming
// someone else's edge by ID is forbidden.
func (s *FollowService) Unfollow(ctx context.Context, requesterID string, target UnfollowTarget) error {
	if err := permission.Check(requesterID, (*model.Follow)(nil), http.MethodDelete, requireFollower); err != nil {
		return err
	}

	var (
		follow *model.Follow
		err    error
	)
	switch {
	case target.ID != "":
		follow, err = s.follows.GetByID(ctx, target.ID)
	case target.Username != "":
		follow, err = s.edgeTo(ctx, requesterID, target.Username)
	default:
		return apperror.ValidationFailed("id", "either id or user_this_user_is_following is required")
	}
	if err != nil {
		return err
	}

	if err := permission.Check(requesterID, follow, http.MethodDelete, permission.ThisUserUnfollowingOrReadOnly); err != nil {
		s.logger.Warn("unfollow denied",
			slog.String("requesterID", requesterID),
			slog.String("followID", follow.ID),
		)
		return err
	}

	if err := s.follows.Delete(ctx, follow.ID); err != nil {
		return fmt.Errorf("service/follow: deleting edge %s: %w", follow.ID, err)
	}

	s.logger.Info("user unfollowed",
		slog.String("id", follow.ID),
		slog.String("follower", follow.ThisUserID),
		slog.String("followee", follow.UserThisUserIsFollowingID),
	)
	return nil
}

// edgeTo finds the requester's edge to the user named username.
func (s *FollowService) edgeTo(ctx context.Context, requesterID, username string) (*model.Follow, error) {
	followee, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	return s.follows.GetByPair(ctx, requesterID, followee.ID)
}

// ListFollowing returns the users the requester follows.
func (s *FollowService) ListFollowing(ctx context.Context, requesterID string, opts repository.ListOptions) ([]model.FollowedUser, error) {
	if err := permission.Check(requesterID, (*model.Follow)(nil), http.MethodGet, requireFollower); err != nil {
		return nil, err
	}

	users, err := s.follows.ListFollowing(ctx, requesterID, normalizePage(opts))
	if err != nil {
		return nil, fmt.Errorf("service/follow: listing following: %w", err)
	}
	return users, nil
}

// ListFollowers returns the users following the requester.
func (s *FollowService) ListFollowers(ctx context.Context, requesterID string, opts repository.ListOptions) ([]model.FollowedUser, error) {
	if err := permission.Check(requesterID, (*model.Follow)(nil), http.MethodGet, requireFollower); err != nil {
		return nil, err
	}

	users, err := s.follows.ListFollowers(ctx, requesterID, normalizePage(opts))
	if err != nil {
		return nil, fmt.Errorf("service/follow: listing followers: %w", err)
	}
	return users, nil
}
