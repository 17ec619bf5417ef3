package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sakif/cards/internal/apperror"
	"github.com/sakif/cards/internal/auth"
	"github.com/sakif/cards/internal/model"
	"github.com/sakif/cards/internal/permission"
	"github.com/sakif/cards/internal/repository"
)

// ProfileService reads and edits user profiles.
type ProfileService struct {
	users     repository.UserRepository
	follows   repository.FollowRepository
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewProfileService(
	users repository.UserRepository,
	follows repository.FollowRepository,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *ProfileService {
	return &ProfileService{
		users:     users,
		follows:   follows,
		passwords: passwords,
		logger:    logger,
	}
}

// Profile is a user together with everyone who follows them.
type Profile struct {
	User      *model.User
	Followers []model.FollowedUser
}

// ProfileChanges lists the editable profile fields. Nil means unchanged.
type ProfileChanges struct {
	Email     *string
	FirstName *string
	LastName  *string
	Bio       *string
	Password  *string
}

// Get returns the profile of username. Profiles are public.
func (s *ProfileService) Get(ctx context.Context, username string) (*Profile, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.withFollowers(ctx, user)
}

// GetByID returns the profile of the user with the given ID.
func (s *ProfileService) GetByID(ctx context.Context, id string) (*Profile, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withFollowers(ctx, user)
}

// Authorize reports whether the requester may apply method to the profile
// of username.
func (s *ProfileService) Authorize(ctx context.Context, requesterID, username, method string) error {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	return permission.Check(requesterID, user, method, permission.ProfileOwnerOrReadOnly)
}

// Update applies changes to the profile of username. Only the user
// themselves may do so.
func (s *ProfileService) Update(ctx context.Context, requesterID, username string, ch ProfileChanges) (*Profile, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if err := permission.Check(requesterID, user, http.MethodPatch, permission.ProfileOwnerOrReadOnly); err != nil {
		s.logger.Warn("profile update denied",
			slog.String("requesterID", requesterID),
			slog.String("username", username),
		)
		return nil, err
	}

	if ch.Email != nil {
		user.Email = strings.TrimSpace(*ch.Email)
	}
	if ch.FirstName != nil {
		user.FirstName = strings.TrimSpace(*ch.FirstName)
	}
	if ch.LastName != nil {
		user.LastName = strings.TrimSpace(*ch.LastName)
	}
	if ch.Bio != nil {
		user.Bio = *ch.Bio
	}
	if ch.Password != nil {
		hash, err := s.passwords.Hash(*ch.Password)
		if err != nil {
			return nil, apperror.ValidationFailed("password", err.Error())
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("service/profile: updating %s: %w", username, err)
	}

	s.logger.Info("profile updated", slog.String("userID", user.ID))

	return s.withFollowers(ctx, user)
}

// Delete removes the account of username together with its cards and
// follow edges. Only the user themselves may do so.
func (s *ProfileService) Delete(ctx context.Context, requesterID, username string) error {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}

	if err := permission.Check(requesterID, user, http.MethodDelete, permission.ProfileOwnerOrReadOnly); err != nil {
		return err
	}

	if err := s.users.Delete(ctx, user.ID); err != nil {
		return fmt.Errorf("service/profile: deleting %s: %w", username, err)
	}

	s.logger.Info("profile deleted",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)
	return nil
}

// withFollowers pages through every follower of user.
func (s *ProfileService) withFollowers(ctx context.Context, user *model.User) (*Profile, error) {
	followers := make([]model.FollowedUser, 0)
	for offset := 0; ; offset += MaxListLimit {
		page, err := s.follows.ListFollowers(ctx, user.ID, repository.ListOptions{Limit: MaxListLimit, Offset: offset})
		if err != nil {
			return nil, fmt.Errorf("service/profile: listing followers of %s: %w", user.ID, err)
		}
		followers = append(followers, page...)
		if len(page) < MaxListLimit {
			break
		}
	}
	return &Profile{User: user, Followers: followers}, nil
}
