package auth

import (
	"context"

	"github.com/jrsteele09/go-auth-client/sessions"
)

// LandingState is what the landing page renders for the current visitor.
type LandingState struct {
	SignedIn    bool
	DisplayName string
	APIBaseURL  string
}

// Landing reads the cached session. A session without a user object is
// treated as signed out.
func Landing(ctx context.Context, repo sessions.Repo, apiBaseURL string) (*LandingState, error) {
	s, err := repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	state := &LandingState{APIBaseURL: apiBaseURL}
	if s != nil && s.User != nil {
		state.SignedIn = true
		state.DisplayName = s.User.DisplayName()
	}
	return state, nil
}

// SignOut forgets the cached session.
func SignOut(ctx context.Context, repo sessions.Repo) error {
	return repo.Clear(ctx)
}
