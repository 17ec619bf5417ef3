// Package permission holds the per-object permission predicates.
//
// A predicate answers one question: may this requester perform this HTTP
// method on this object? Predicates are pure functions of their arguments.
// Endpoints compose them with Check, which evaluates them in order and
// stops at the first denial.
package permission

import (
	"net/http"

	"github.com/sakif/cards/internal/apperror"
	"github.com/sakif/cards/internal/model"
)

// Predicate decides whether requesterID may apply method to obj.
// An empty requesterID means the request is anonymous.
type Predicate[T any] interface {
	Allow(requesterID string, obj T, method string) bool
}

// PredicateFunc adapts an ordinary function to the Predicate interface.
type PredicateFunc[T any] func(requesterID string, obj T, method string) bool

// Allow calls f(requesterID, obj, method).
func (f PredicateFunc[T]) Allow(requesterID string, obj T, method string) bool {
	return f(requesterID, obj, method)
}

// IsSafeMethod reports whether method only reads state.
func IsSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// IsAuthenticated returns a predicate that allows any identified requester.
func IsAuthenticated[T any]() Predicate[T] {
	return PredicateFunc[T](func(requesterID string, _ T, _ string) bool {
		return requesterID != ""
	})
}

// ProfileOwnerOrReadOnly lets anyone read a profile; only the user
// themselves may change or delete it.
var ProfileOwnerOrReadOnly Predicate[*model.User] = PredicateFunc[*model.User](
	func(requesterID string, profile *model.User, method string) bool {
		if IsSafeMethod(method) {
			return true
		}
		return requesterID != "" && profile != nil && profile.ID == requesterID
	})

// CardSenderOrReadOnly lets anyone read a card; only its sender may change
// or delete it.
var CardSenderOrReadOnly Predicate[*model.Card] = PredicateFunc[*model.Card](
	func(requesterID string, card *model.Card, method string) bool {
		if IsSafeMethod(method) {
			return true
		}
		return requesterID != "" && card != nil && card.SentByUserID == requesterID
	})

// ThisUserUnfollowingOrReadOnly lets only the follower remove a follow edge.
var ThisUserUnfollowingOrReadOnly Predicate[*model.Follow] = PredicateFunc[*model.Follow](
	func(requesterID string, follow *model.Follow, method string) bool {
		if IsSafeMethod(method) {
			return true
		}
		return requesterID != "" && follow != nil && follow.ThisUserID == requesterID
	})

// Check evaluates preds in order. An anonymous requester attempting a
// write gets apperror.ErrUnauthorized; any other denial is
// apperror.ErrForbidden.
func Check[T any](requesterID string, obj T, method string, preds ...Predicate[T]) error {
	for _, p := range preds {
		if p.Allow(requesterID, obj, method) {
			continue
		}
		if requesterID == "" {
			return apperror.Unauthorized("authentication credentials were not provided")
		}
		return apperror.Forbidden("you do not have permission to perform this action")
	}
	return nil
}
