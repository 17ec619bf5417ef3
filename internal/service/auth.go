package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/cards/internal/apperror"
	"github.com/sakif/cards/internal/auth"
	"github.com/sakif/cards/internal/model"
	"github.com/sakif/cards/internal/repository"
)

// AuthService registers users and signs them in, either with a username and
// password or through GitHub.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the signed-in user with a freshly issued access token.
type AuthResult struct {
	User  *model.User
	Token string
}

// Registration is the input of Register.
type Registration struct {
	Username  string
	Password  string
	Email     string
	FirstName string
	LastName  string
}

// Register creates a local account and signs it in. A taken username
// returns apperror.ErrConflict.
func (s *AuthService) Register(ctx context.Context, in Registration) (*AuthResult, error) {
	username := strings.TrimSpace(in.Username)
	if !model.UsernamePattern.MatchString(username) {
		return nil, apperror.ValidationFailed("username", "username must be 3-30 characters of letters, digits, '_', '.' or '-'")
	}
	if len(in.Password) < model.MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", model.MinPasswordLength))
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", err.Error())
	}

	user := &model.User{
		Username:     username,
		PasswordHash: hash,
		Email:        strings.TrimSpace(in.Email),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("service/auth: registering %s: %w", username, err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return s.issue(user)
}

// Login checks a username and password. Unknown users and wrong passwords
// produce the same apperror.ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("invalid username or password")
		}
		return nil, fmt.Errorf("service/auth: loading %s: %w", username, err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		s.logger.Debug("login rejected", slog.String("username", user.Username))
		return nil, apperror.Unauthorized("invalid username or password")
	}

	return s.issue(user)
}

// LoginWithGitHub signs in the account linked to a GitHub user, creating it
// on first login. The GitHub login becomes the username; when that name is
// already taken by a local account the GitHub ID is appended.
func (s *AuthService) LoginWithGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service/auth: GitHub user must not be nil")
	}

	githubID := ghUser.ID
	first, last, _ := strings.Cut(strings.TrimSpace(ghUser.Name), " ")
	user := &model.User{
		Username:  githubUsername(ghUser.Login, 0),
		Email:     ghUser.Email,
		FirstName: first,
		LastName:  last,
		GitHubID:  &githubID,
	}

	err := s.users.Upsert(ctx, user)
	if errors.Is(err, apperror.ErrConflict) {
		user.Username = githubUsername(ghUser.Login, githubID)
		err = s.users.Upsert(ctx, user)
	}
	if err != nil {
		return nil, fmt.Errorf("service/auth: upserting user (githubID=%d): %w", githubID, err)
	}

	s.logger.Info("user authenticated via GitHub",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return s.issue(user)
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

// githubUsername derives a username from a GitHub login. GitHub allows 39
// characters, so the result is cut to fit, keeping room for the suffix.
func githubUsername(login string, suffix int64) string {
	name := login
	tail := ""
	if suffix != 0 {
		tail = fmt.Sprintf("-%d", suffix)
	}
	if limit := model.MaxUsernameLength - len(tail); len(name) > limit {
		name = name[:limit]
	}
	name += tail
	for len(name) < model.MinUsernameLength {
		name += "_"
	}
	return name
}
