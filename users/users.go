package users

import "strings"

// MinPasswordLength is the shortest password the sign-up form accepts.
const MinPasswordLength = 8

// Summary is the user object the backend returns alongside tokens. It is
// forwarded and cached as-is; the client only reads a few display fields.
type Summary map[string]any

// Email returns the user's email address, or "" when absent.
func (s Summary) Email() string {
	return s.str("email")
}

// Username returns the optional username, or "" when absent or null.
func (s Summary) Username() string {
	return s.str("username")
}

// DisplayName is the username when non-empty, otherwise the email. The
// username is shown exactly as the backend sent it.
func (s Summary) DisplayName() string {
	if u := s.Username(); u != "" {
		return u
	}
	return s.Email()
}

func (s Summary) str(key string) string {
	if s == nil {
		return ""
	}
	v, _ := s[key].(string)
	return v
}

// NormaliseEmail trims surrounding space and lower-cases an address the way
// the sign-in form does before it is sent.
func NormaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
