// Searchgate - Authorization Gate for Embedded Search Cores
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/searchgate

package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/searchgate/internal/config"
)

// ErrInvalidCredentials is returned for an unknown user or a wrong password.
// The two cases are not distinguished.
var ErrInvalidCredentials = errors.New("invalid credentials")

// dummyHash is compared against when the user is unknown so both failure
// paths cost one bcrypt comparison.
var dummyHash = []byte("$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z4lXqJGq0sZ1x3L7q0.8hQ5K")

type user struct {
	id   *Identity
	hash []byte
}

// UserDirectory holds the locally configured accounts.
// It is read-only after construction and safe for concurrent use.
type UserDirectory struct {
	users map[string]*user
}

// NewUserDirectory builds a directory from configured users.
func NewUserDirectory(users []config.UserConfig) (*UserDirectory, error) {
	d := &UserDirectory{users: make(map[string]*user, len(users))}
	for _, u := range users {
		if _, err := bcrypt.Cost([]byte(u.PasswordHash)); err != nil {
			return nil, fmt.Errorf("user %q: invalid bcrypt hash: %w", u.Username, err)
		}
		d.users[u.Username] = &user{
			id: &Identity{
				UserID:   u.Username,
				Username: u.Username,
				Roles:    append([]string(nil), u.Roles...),
				Locale:   u.Locale,
			},
			hash: []byte(u.PasswordHash),
		}
	}
	return d, nil
}

// Authenticate verifies a username and password.
// The returned Identity has no provider set; the caller decides how it is carried.
func (d *UserDirectory) Authenticate(username, password string) (*Identity, error) {
	u, ok := d.users[username]
	if !ok {
		//nolint:errcheck // equalizes timing with the known-user path
		bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(u.hash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	id := *u.id
	id.Roles = append([]string(nil), u.id.Roles...)
	return &id, nil
}

// Len returns the number of configured users.
func (d *UserDirectory) Len() int {
	return len(d.users)
}
