package sessions_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-auth-client/apiclient"
	"github.com/jrsteele09/go-auth-client/sessions"
	fakesessionrepo "github.com/jrsteele09/go-auth-client/sessions/repofakes"
	"github.com/stretchr/testify/require"
)

func TestTokenSource(t *testing.T) {
	ctx := context.Background()
	repo := fakesessionrepo.NewFakeSessionRepo()
	ts := sessions.TokenSource(ctx, repo)

	_, err := ts.Token()
	require.ErrorIs(t, err, sessions.ErrNoSession)

	_, err = sessions.SetFromAuthResponse(ctx, repo, &apiclient.AuthResponse{AccessToken: "access-3", RefreshToken: "refresh-3", User: testUser})
	require.NoError(t, err)

	tok, err := ts.Token()
	require.NoError(t, err)
	require.Equal(t, "access-3", tok.AccessToken)
	require.Equal(t, "refresh-3", tok.RefreshToken)
	require.Equal(t, "Bearer", tok.Type())

	require.NoError(t, repo.Clear(ctx))
	_, err = ts.Token()
	require.ErrorIs(t, err, sessions.ErrNoSession)
}

func TestPeekClaims(t *testing.T) {
	issued := time.Now().Add(-time.Minute).Truncate(time.Second)
	expires := issued.Add(time.Hour)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    "tutorbot",
		IssuedAt:  jwt.NewNumericDate(issued),
		ExpiresAt: jwt.NewNumericDate(expires),
	}).SignedString([]byte("not-checked"))
	require.NoError(t, err)

	t.Run("reads registered claims without the key", func(t *testing.T) {
		c, err := sessions.PeekClaims(signed)
		require.NoError(t, err)
		require.Equal(t, "user-1", c.Subject)
		require.Equal(t, "tutorbot", c.Issuer)
		require.NotNil(t, c.ExpiresAt)
		require.True(t, expires.Equal(*c.ExpiresAt))

		left, ok := c.ExpiresIn(issued)
		require.True(t, ok)
		require.Equal(t, time.Hour, left)
	})

	t.Run("opaque token", func(t *testing.T) {
		_, err := sessions.PeekClaims("opaque-token")
		require.Error(t, err)
	})

	t.Run("no exp claim", func(t *testing.T) {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "s"}).SignedString([]byte("k"))
		require.NoError(t, err)
		c, err := sessions.PeekClaims(tok)
		require.NoError(t, err)
		_, ok := c.ExpiresIn(time.Now())
		require.False(t, ok)
	})
}
