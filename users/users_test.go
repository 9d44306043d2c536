package users_test

import (
	"encoding/json"
	"testing"

	"github.com/jrsteele09/go-auth-client/users"
	"github.com/stretchr/testify/require"
)

func TestSummary_DisplayName(t *testing.T) {
	t.Run("prefers username", func(t *testing.T) {
		s := users.Summary{"email": "a@b.com", "username": "ada"}
		require.Equal(t, "ada", s.DisplayName())
	})

	t.Run("falls back to email when username null", func(t *testing.T) {
		var s users.Summary
		require.NoError(t, json.Unmarshal([]byte(`{"email":"a@b.com","username":null}`), &s))
		require.Equal(t, "a@b.com", s.DisplayName())
	})

	t.Run("falls back to email when username empty", func(t *testing.T) {
		s := users.Summary{"email": "a@b.com", "username": ""}
		require.Equal(t, "a@b.com", s.DisplayName())
	})

	t.Run("username shown as sent", func(t *testing.T) {
		s := users.Summary{"email": "a@b.com", "username": " ada "}
		require.Equal(t, " ada ", s.DisplayName())
	})

	t.Run("nil summary", func(t *testing.T) {
		var s users.Summary
		require.Empty(t, s.DisplayName())
	})

	t.Run("non-string fields ignored", func(t *testing.T) {
		s := users.Summary{"email": 42}
		require.Empty(t, s.Email())
	})
}

func TestNormaliseEmail(t *testing.T) {
	require.Equal(t, "ada@example.com", users.NormaliseEmail("  Ada@Example.COM "))
}
