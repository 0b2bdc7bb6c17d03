// Package accounts covers the session endpoints: login, logout, the
// profile card and the per-branch user list.
package accounts

import "errors"

// ErrInvalidCredentials is returned when the backend refuses a login.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Profile is the signed in user as answered by /accounts/me/.
type Profile struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Branch   string `json:"branch"`
	AddedBy  string `json:"added_by"`
}

// User is one row of the branch user list.
type User struct {
	Username string
	Email    string
	Role     string
}

// UsersPage is one page of branch users. Empty holds the placeholder row
// text when the backend found nobody.
type UsersPage struct {
	Users    []User
	NextPage int
	Empty    string
}

// Credentials is the login form.
type Credentials struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}
