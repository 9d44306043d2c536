package sessions

import (
	"context"

	"golang.org/x/oauth2"
)

type repoTokenSource struct {
	ctx  context.Context
	repo Repo
}

// TokenSource exposes the cached session as an oauth2.TokenSource so it can
// drive an oauth2.Transport. Every call re-reads the repo; nothing is
// refreshed automatically.
func TokenSource(ctx context.Context, repo Repo) oauth2.TokenSource {
	return &repoTokenSource{ctx: ctx, repo: repo}
}

func (ts *repoTokenSource) Token() (*oauth2.Token, error) {
	s, err := ts.repo.Get(ts.ctx)
	if err != nil {
		return nil, err
	}
	if s == nil || s.AccessToken == "" {
		return nil, ErrNoSession
	}
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: s.RefreshToken,
	}, nil
}
