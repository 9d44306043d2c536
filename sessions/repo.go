package sessions

import (
	"context"
	"errors"

	"github.com/jrsteele09/go-auth-client/apiclient"
)

// Repo is the single source of truth for whether a user is signed in on this
// machine. Implementations replace the record wholesale on Set.
type Repo interface {
	// Get returns the cached session, or nil when there is none.
	Get(ctx context.Context) (*Session, error)

	// Set stores session, replacing any previous record.
	Set(ctx context.Context, session *Session) error

	// Clear removes the cached session. Clearing an empty repo is not an error.
	Clear(ctx context.Context) error
}

// SetFromAuthResponse stores a fresh session built from an auth response and
// returns the stored record.
func SetFromAuthResponse(ctx context.Context, repo Repo, resp *apiclient.AuthResponse) (*Session, error) {
	if resp == nil {
		return nil, errors.New("[SetFromAuthResponse] auth response is required")
	}
	s := New(resp.AccessToken, resp.RefreshToken, resp.User)
	if err := repo.Set(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// GetAccessToken returns the cached access token and whether one exists.
func GetAccessToken(ctx context.Context, repo Repo) (string, bool, error) {
	s, err := repo.Get(ctx)
	if err != nil {
		return "", false, err
	}
	if s == nil || s.AccessToken == "" {
		return "", false, nil
	}
	return s.AccessToken, true, nil
}
