package model

import "regexp"

// Field limits enforced on writes.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
	MaxContentLength  = 1000
	MinPasswordLength = 8
	MaxPasswordLength = 72
	MaxNameLength     = 150
	MaxBioLength      = 500
)

// UsernamePattern matches an acceptable username.
var UsernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,30}$`)
