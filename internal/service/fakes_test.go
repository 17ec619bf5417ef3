package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/sakif/cards/internal/apperror"
	"github.com/sakif/cards/internal/auth"
	"github.com/sakif/cards/internal/model"
	"github.com/sakif/cards/internal/repository"
)

// =========================================================================
// FAKE REPOSITORIES
// =========================================================================
//
// fakeDB keeps users, cards and follows in memory. The three repository
// fakes share it so joined usernames and cascades behave like SQLite.

type fakeDB struct {
	users   map[string]*model.User
	cards   map[string]*model.Card
	follows map[string]*model.Follow
	nextID  int
	clock   time.Time

	// set to a non-nil error to simulate a database failure
	failWith error
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		users:   make(map[string]*model.User),
		cards:   make(map[string]*model.Card),
		follows: make(map[string]*model.Follow),
		clock:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (db *fakeDB) id(prefix string) string {
	db.nextID++
	return fmt.Sprintf("%s-%d", prefix, db.nextID)
}

// tick returns strictly increasing timestamps so ordering is deterministic.
func (db *fakeDB) tick() time.Time {
	db.clock = db.clock.Add(time.Second)
	return db.clock
}

func page[T any](items []T, opts repository.ListOptions) []T {
	if opts.Offset >= len(items) {
		return []T{}
	}
	items = items[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(items) {
		items = items[:opts.Limit]
	}
	return items
}

// --- users ---

type fakeUserRepo struct{ db *fakeDB }

var _ repository.UserRepository = fakeUserRepo{}

func (r fakeUserRepo) Create(_ context.Context, u *model.User) error {
	if r.db.failWith != nil {
		return r.db.failWith
	}
	for _, existing := range r.db.users {
		if existing.Username == u.Username {
			return apperror.Conflict("user", u.Username)
		}
	}
	u.ID = r.db.id("user")
	u.CreatedAt = r.db.tick()
	u.UpdatedAt = u.CreatedAt
	stored := *u
	r.db.users[u.ID] = &stored
	return nil
}

func (r fakeUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	u, ok := r.db.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	out := *u
	return &out, nil
}

func (r fakeUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.db.users {
		if u.Username == username {
			out := *u
			return &out, nil
		}
	}
	return nil, apperror.NotFound("user", username)
}

func (r fakeUserRepo) GetByGitHubID(_ context.Context, githubID int64) (*model.User, error) {
	for _, u := range r.db.users {
		if u.GitHubID != nil && *u.GitHubID == githubID {
			out := *u
			return &out, nil
		}
	}
	return nil, apperror.NotFound("user", fmt.Sprintf("github:%d", githubID))
}

func (r fakeUserRepo) Upsert(ctx context.Context, u *model.User) error {
	existing, err := r.GetByGitHubID(ctx, *u.GitHubID)
	if err != nil {
		return r.Create(ctx, u)
	}
	existing.Email = u.Email
	r.db.users[existing.ID].Email = u.Email
	*u = *existing
	return nil
}

func (r fakeUserRepo) Update(_ context.Context, u *model.User) error {
	if _, ok := r.db.users[u.ID]; !ok {
		return apperror.NotFound("user", u.ID)
	}
	u.UpdatedAt = r.db.tick()
	stored := *u
	r.db.users[u.ID] = &stored
	return nil
}

func (r fakeUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.db.users[id]; !ok {
		return apperror.NotFound("user", id)
	}
	delete(r.db.users, id)
	for cid, c := range r.db.cards {
		if c.SentByUserID == id || c.SentToUserID == id {
			delete(r.db.cards, cid)
		}
	}
	for fid, f := range r.db.follows {
		if f.ThisUserID == id || f.UserThisUserIsFollowingID == id {
			delete(r.db.follows, fid)
		}
	}
	return nil
}

// --- cards ---

type fakeCardRepo struct{ db *fakeDB }

var _ repository.CardRepository = fakeCardRepo{}

func (r fakeCardRepo) joined(c *model.Card) model.Card {
	out := *c
	out.SentByUsername = r.db.users[c.SentByUserID].Username
	out.SentToUsername = r.db.users[c.SentToUserID].Username
	return out
}

func (r fakeCardRepo) Create(_ context.Context, c *model.Card) error {
	if r.db.failWith != nil {
		return r.db.failWith
	}
	if r.db.users[c.SentByUserID] == nil || r.db.users[c.SentToUserID] == nil {
		return apperror.ValidationFailed("sent_to_user", "sender and recipient must be existing users")
	}
	c.ID = r.db.id("card")
	c.CreatedAt = r.db.tick()
	c.UpdatedAt = c.CreatedAt
	stored := *c
	r.db.cards[c.ID] = &stored
	return nil
}

func (r fakeCardRepo) GetByID(_ context.Context, id string) (*model.Card, error) {
	c, ok := r.db.cards[id]
	if !ok {
		return nil, apperror.NotFound("card", id)
	}
	out := r.joined(c)
	return &out, nil
}

func (r fakeCardRepo) filter(keep func(*model.Card) bool, opts repository.ListOptions) []model.Card {
	out := make([]model.Card, 0)
	for _, c := range r.db.cards {
		if keep(c) {
			out = append(out, r.joined(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, opts)
}

func (r fakeCardRepo) List(_ context.Context, opts repository.ListOptions) ([]model.Card, error) {
	return r.filter(func(*model.Card) bool { return true }, opts), nil
}

func (r fakeCardRepo) ListSentBy(_ context.Context, userID string, opts repository.ListOptions) ([]model.Card, error) {
	return r.filter(func(c *model.Card) bool { return c.SentByUserID == userID }, opts), nil
}

func (r fakeCardRepo) ListReceivedBy(_ context.Context, userID string, opts repository.ListOptions) ([]model.Card, error) {
	return r.filter(func(c *model.Card) bool { return c.SentToUserID == userID }, opts), nil
}

func (r fakeCardRepo) ListFeed(_ context.Context, userID string, opts repository.ListOptions) ([]model.Card, error) {
	followed := make(map[string]bool)
	for _, f := range r.db.follows {
		if f.ThisUserID == userID {
			followed[f.UserThisUserIsFollowingID] = true
		}
	}
	return r.filter(func(c *model.Card) bool { return followed[c.SentByUserID] }, opts), nil
}

func (r fakeCardRepo) Update(_ context.Context, c *model.Card) error {
	stored, ok := r.db.cards[c.ID]
	if !ok {
		return apperror.NotFound("card", c.ID)
	}
	stored.Content = c.Content
	stored.UpdatedAt = r.db.tick()
	c.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r fakeCardRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.db.cards[id]; !ok {
		return apperror.NotFound("card", id)
	}
	delete(r.db.cards, id)
	return nil
}

// --- follows ---

type fakeFollowRepo struct{ db *fakeDB }

var _ repository.FollowRepository = fakeFollowRepo{}

func (r fakeFollowRepo) joined(f *model.Follow) model.Follow {
	out := *f
	out.ThisUsername = r.db.users[f.ThisUserID].Username
	out.UserThisUserIsFollowingName = r.db.users[f.UserThisUserIsFollowingID].Username
	return out
}

func (r fakeFollowRepo) Create(_ context.Context, f *model.Follow) error {
	if r.db.failWith != nil {
		return r.db.failWith
	}
	for _, existing := range r.db.follows {
		if existing.ThisUserID == f.ThisUserID && existing.UserThisUserIsFollowingID == f.UserThisUserIsFollowingID {
			return apperror.Conflict("follow", f.ThisUserID+"->"+f.UserThisUserIsFollowingID)
		}
	}
	f.ID = r.db.id("follow")
	f.CreatedAt = r.db.tick()
	stored := *f
	r.db.follows[f.ID] = &stored
	return nil
}

func (r fakeFollowRepo) GetByID(_ context.Context, id string) (*model.Follow, error) {
	f, ok := r.db.follows[id]
	if !ok {
		return nil, apperror.NotFound("follow", id)
	}
	out := r.joined(f)
	return &out, nil
}

func (r fakeFollowRepo) GetByPair(_ context.Context, thisUserID, followingUserID string) (*model.Follow, error) {
	for _, f := range r.db.follows {
		if f.ThisUserID == thisUserID && f.UserThisUserIsFollowingID == followingUserID {
			out := r.joined(f)
			return &out, nil
		}
	}
	return nil, apperror.NotFound("follow", thisUserID+"->"+followingUserID)
}

func (r fakeFollowRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.db.follows[id]; !ok {
		return apperror.NotFound("follow", id)
	}
	delete(r.db.follows, id)
	return nil
}

func (r fakeFollowRepo) related(match func(*model.Follow) (string, bool), opts repository.ListOptions) []model.FollowedUser {
	type edge struct {
		f *model.Follow
		u *model.User
	}
	edges := make([]edge, 0)
	for _, f := range r.db.follows {
		if otherID, ok := match(f); ok {
			edges = append(edges, edge{f, r.db.users[otherID]})
		}
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].f.CreatedAt.After(edges[j].f.CreatedAt) })

	out := make([]model.FollowedUser, 0, len(edges))
	for _, e := range edges {
		out = append(out, model.FollowedUser{
			FollowID:  e.f.ID,
			UserID:    e.u.ID,
			Username:  e.u.Username,
			FirstName: e.u.FirstName,
			LastName:  e.u.LastName,
			Since:     e.f.CreatedAt,
		})
	}
	return page(out, opts)
}

func (r fakeFollowRepo) ListFollowing(_ context.Context, userID string, opts repository.ListOptions) ([]model.FollowedUser, error) {
	return r.related(func(f *model.Follow) (string, bool) {
		return f.UserThisUserIsFollowingID, f.ThisUserID == userID
	}, opts), nil
}

func (r fakeFollowRepo) ListFollowers(_ context.Context, userID string, opts repository.ListOptions) ([]model.FollowedUser, error) {
	return r.related(func(f *model.Follow) (string, bool) {
		return f.ThisUserID, f.UserThisUserIsFollowingID == userID
	}, opts), nil
}

// =========================================================================
// TEST HELPERS
// =========================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testTokens(t *testing.T) *auth.TokenService {
	t.Helper()
	ts, err := auth.NewTokenService("test-secret-for-service-tests", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}
	return ts
}

// seedUser stores a user directly and returns it.
func seedUser(t *testing.T, db *fakeDB, username string) *model.User {
	t.Helper()
	u := &model.User{Username: username}
	if err := (fakeUserRepo{db}).Create(context.Background(), u); err != nil {
		t.Fatalf("seedUser(%s) error = %v", username, err)
	}
	return u
}
