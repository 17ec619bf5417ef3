// Package service contains the business operations behind each endpoint.
//
// Handlers decode requests and encode responses; services load the objects a
// request touches, run the permission predicates against the requester, and
// persist the change through the repository interfaces. Services never see
// an *http.Request, only the requester's ID and the HTTP method being
// applied, which is what the predicates need.
package service

import (
	"github.com/sakif/cards/internal/repository"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// normalizePage clamps a page request to sane bounds.
func normalizePage(opts repository.ListOptions) repository.ListOptions {
	if opts.Limit <= 0 {
		opts.Limit = DefaultListLimit
	}
	if opts.Limit > MaxListLimit {
		opts.Limit = MaxListLimit
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	return opts
}
