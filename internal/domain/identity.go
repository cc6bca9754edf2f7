package domain

import "strings"

// Identity is the already-authenticated caller as supplied by the
// authenticating layer in front of this service.
type Identity struct {
	UserID   string
	Email    string
	Username string
}

// IsZero reports whether no identity was supplied.
func (i Identity) IsZero() bool {
	return strings.TrimSpace(i.UserID) == ""
}

// DisplayName returns the username, falling back to the email address.
func (i Identity) DisplayName() string {
	if i.Username != "" {
		return i.Username
	}
	return i.Email
}
