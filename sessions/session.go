package sessions

import (
	"errors"

	"github.com/jrsteele09/go-auth-client/users"
)

// SessionKey is the storage slot the session record lives in.
const SessionKey = "tutorbot.session.v1"

// ErrNoSession is returned by accessors that need a session when none is cached.
var ErrNoSession = errors.New("no session")

// Session is the cached result of a successful sign-in or sign-up. It is
// written and deleted as a whole and never partially updated.
type Session struct {
	AccessToken  string        `json:"accessToken"`  // Bearer token for API calls
	RefreshToken string        `json:"refreshToken"` // Exchanged at /api/auth/refresh
	User         users.Summary `json:"user"`         // Opaque user object from the backend
}

// New builds a session record from the fields of a backend auth response.
func New(accessToken, refreshToken string, user users.Summary) *Session {
	return &Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}
}
