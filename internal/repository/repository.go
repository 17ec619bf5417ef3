// Package repository declares the persistence interfaces used by the service
// layer. Each interface is a "queryset" over one entity: the methods name the
// filtered views the endpoints need (cards sent by a user, users a user
// follows, ...) instead of exposing a generic query builder.
package repository

import (
	"context"

	"github.com/sakif/cards/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByGitHubID(ctx context.Context, githubID int64) (*model.User, error)
	// Upsert inserts or updates a user keyed by GitHubID.
	Upsert(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id string) error
}

type CardRepository interface {
	Create(ctx context.Context, card *model.Card) error
	GetByID(ctx context.Context, id string) (*model.Card, error)
	List(ctx context.Context, opts ListOptions) ([]model.Card, error)
	ListSentBy(ctx context.Context, userID string, opts ListOptions) ([]model.Card, error)
	ListReceivedBy(ctx context.Context, userID string, opts ListOptions) ([]model.Card, error)
	// ListFeed returns cards sent by the users that userID follows.
	ListFeed(ctx context.Context, userID string, opts ListOptions) ([]model.Card, error)
	Update(ctx context.Context, card *model.Card) error
	Delete(ctx context.Context, id string) error
}

type FollowRepository interface {
	Create(ctx context.Context, follow *model.Follow) error
	GetByID(ctx context.Context, id string) (*model.Follow, error)
	GetByPair(ctx context.Context, thisUserID, followingUserID string) (*model.Follow, error)
	Delete(ctx context.Context, id string) error
	// ListFollowing returns the users that userID follows.
	ListFollowing(ctx context.Context, userID string, opts ListOptions) ([]model.FollowedUser, error)
	// ListFollowers returns the users that follow userID.
	ListFollowers(ctx context.Context, userID string, opts ListOptions) ([]model.FollowedUser, error)
}
