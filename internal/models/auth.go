package models

import "github.com/golang-jwt/jwt/v5"

// CredentialsRequest is the payload of both register and login. Password
// length is bounded by bcrypt when hashing, so only registration rejects
// overlong passwords.
type CredentialsRequest struct {
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required"`
}

// Identity is the authenticated caller attached to a session. It never
// carries the password hash.
type Identity struct {
	ID    int64    `json:"id"`
	Email string   `json:"email"`
	Role  UserRole `json:"role"`
}

// IsAdmin reports whether the identity holds the admin role.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// Session binds an opaque token to an identity. A nil Identity is an
// anonymous session.
type Session struct {
	Token    string
	Identity *Identity
}

// Authenticated reports whether the session carries an identity.
func (s *Session) Authenticated() bool {
	return s != nil && s.Identity != nil
}

// SessionClaims is the signed payload of the session cookie. Only the
// session id (jti) is carried; the identity stays server side.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// RegisterResponse acknowledges a new account.
type RegisterResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"userId"`
}

// LoginResponse acknowledges a successful login.
type LoginResponse struct {
	Message string    `json:"message"`
	User    *Identity `json:"user"`
}

// SessionStatus reports who, if anyone, the caller is.
type SessionStatus struct {
	LoggedIn bool      `json:"loggedIn"`
	User     *Identity `json:"user,omitempty"`
}
