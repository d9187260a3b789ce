package realm

import (
	"errors"
	"fmt"
)

var (
	// ErrUserNotFound matches any UserNotFoundError via errors.Is.
	ErrUserNotFound = errors.New("realm: user not found")

	// ErrNoAuthority matches any NoAuthorityError via errors.Is.
	ErrNoAuthority = errors.New("realm: user has no granted authorities")

	// ErrNoAuthoritySource is returned by New when both direct and
	// group authority loading are disabled.
	ErrNoAuthoritySource = errors.New(
		"realm: use of either authorities or groups must be enabled",
	)
)

// UserNotFoundError is returned by Resolve when the user query matched
// no rows for the given username.
type UserNotFoundError struct {
	Username string
}

func (e *UserNotFoundError) Error() string {
	return fmt.Sprintf("realm: username %q not found", e.Username)
}

func (e *UserNotFoundError) Is(target error) bool {
	return target == ErrUserNotFound
}

// NoAuthorityError is returned when a user record exists but the
// aggregated authority list is empty after the custom-authorities hook
// has run. It is distinct from UserNotFoundError so callers can render
// "unknown user" and "no permissions assigned" differently.
type NoAuthorityError struct {
	Username string
}

func (e *NoAuthorityError) Error() string {
	return fmt.Sprintf("realm: user %q has no granted authorities", e.Username)
}

func (e *NoAuthorityError) Is(target error) bool {
	return target == ErrNoAuthority
}
