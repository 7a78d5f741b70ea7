package session

import "errors"

// ErrUnknownChallenge is returned when a challenge id is not defined.
var ErrUnknownChallenge = errors.New("unknown challenge")
