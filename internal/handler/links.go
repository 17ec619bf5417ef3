package handler

import (
	"net/http"
	"strings"
)

// Links builds absolute URLs for hyperlinked fields such as a profile's
// followers.
type Links struct {
	publicURL string
}

// NewLinks returns a Links rooted at publicURL. When publicURL is empty the
// origin is taken from each request.
func NewLinks(publicURL string) Links {
	return Links{publicURL: strings.TrimRight(publicURL, "/")}
}

// APIBase returns the absolute URL of the /api root for r.
func (l Links) APIBase(r *http.Request) string {
	if l.publicURL != "" {
		return l.publicURL + "/api"
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}
	return scheme + "://" + r.Host + "/api"
}
