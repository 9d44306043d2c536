package sessions_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/jrsteele09/go-auth-client/apiclient"
	"github.com/jrsteele09/go-auth-client/sessions"
	"github.com/jrsteele09/go-auth-client/storage"
	"github.com/jrsteele09/go-auth-client/users"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
)

var testUser = users.Summary{"email": "ada@example.com", "username": "ada", "id": "u-1"}

func newTestStore(t *testing.T) (*sessions.Store, *storage.Memory) {
	t.Helper()
	mem := storage.NewMemory()
	return sessions.NewStore(mem), mem
}

// captureLog routes the global logger into a buffer for the test's duration.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })
	return &buf
}

func TestStore_GetEmpty(t *testing.T) {
	st, _ := newTestStore(t)
	s, err := st.Get(context.Background())
	require.NoError(t, err)
	require.Nil(t, s)
}

func TestStore_CorruptRecordSelfHeals(t *testing.T) {
	ctx := context.Background()
	cases := map[string]string{
		"truncated":        `{"accessToken":"a"`,
		"not json":         `definitely not json`,
		"array":            `[1,2,3]`,
		"bare string":      `"token"`,
		"wrong field type": `{"accessToken":5,"refreshToken":"r","user":{}}`,
		"user not object":  `{"accessToken":"a","refreshToken":"r","user":"ada"}`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			logs := captureLog(t)
			st, mem := newTestStore(t)
			require.NoError(t, mem.SetItem(ctx, sessions.SessionKey, raw))

			s, err := st.Get(ctx)
			require.NoError(t, err)
			require.Nil(t, s)

			_, ok, err := mem.GetItem(ctx, sessions.SessionKey)
			require.NoError(t, err)
			require.False(t, ok, "corrupt slot should be removed")
			require.Contains(t, logs.String(), "discarding corrupt session record")
		})
	}
}

func TestStore_SetFromAuthResponseThenGet(t *testing.T) {
	ctx := context.Background()
	st, mem := newTestStore(t)

	stored, err := sessions.SetFromAuthResponse(ctx, st, &apiclient.AuthResponse{AccessToken: "access-1", RefreshToken: "refresh-1", User: testUser})
	require.NoError(t, err)
	require.Equal(t, "access-1", stored.AccessToken)

	got, err := st.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "access-1", got.AccessToken)
	require.Equal(t, "refresh-1", got.RefreshToken)
	require.Equal(t, testUser, got.User)

	raw, ok, err := mem.GetItem(ctx, sessions.SessionKey)
	require.NoError(t, err)
	require.True(t, ok)
	var wire map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &wire))
	require.Contains(t, wire, "accessToken")
	require.Contains(t, wire, "refreshToken")
	require.Contains(t, wire, "user")

	_, err = sessions.SetFromAuthResponse(ctx, st, nil)
	require.Error(t, err)
}

func TestStore_SetReplacesPriorRecord(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(t)

	_, err := sessions.SetFromAuthResponse(ctx, st, &apiclient.AuthResponse{AccessToken: "old", RefreshToken: "old-r", User: users.Summary{"email": "old@example.com", "username": "old"}})
	require.NoError(t, err)
	_, err = sessions.SetFromAuthResponse(ctx, st, &apiclient.AuthResponse{AccessToken: "new", RefreshToken: "new-r", User: users.Summary{"email": "new@example.com"}})
	require.NoError(t, err)

	got, err := st.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "new", got.AccessToken)
	require.Equal(t, users.Summary{"email": "new@example.com"}, got.User)
}

func TestStore_ClearAlwaysLeavesNoSession(t *testing.T) {
	ctx := context.Background()
	prior := map[string]func(t *testing.T, st *sessions.Store, mem *storage.Memory){
		"empty": func(t *testing.T, st *sessions.Store, mem *storage.Memory) {},
		"valid": func(t *testing.T, st *sessions.Store, mem *storage.Memory) {
			_, err := sessions.SetFromAuthResponse(ctx, st, &apiclient.AuthResponse{AccessToken: "a", RefreshToken: "r", User: testUser})
			require.NoError(t, err)
		},
		"corrupt": func(t *testing.T, st *sessions.Store, mem *storage.Memory) {
			require.NoError(t, mem.SetItem(ctx, sessions.SessionKey, "{{{"))
		},
	}

	for name, setup := range prior {
		t.Run(name, func(t *testing.T) {
			st, mem := newTestStore(t)
			setup(t, st, mem)

			require.NoError(t, st.Clear(ctx))
			require.NoError(t, st.Clear(ctx))

			s, err := st.Get(ctx)
			require.NoError(t, err)
			require.Nil(t, s)
		})
	}
}

func TestGetAccessToken(t *testing.T) {
	ctx := context.Background()
	st, _ := newTestStore(t)

	_, ok, err := sessions.GetAccessToken(ctx, st)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = sessions.SetFromAuthResponse(ctx, st, &apiclient.AuthResponse{AccessToken: "access-2", RefreshToken: "refresh-2", User: testUser})
	require.NoError(t, err)

	tok, ok, err := sessions.GetAccessToken(ctx, st)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "access-2", tok)
}

type failingStorage struct {
	*storage.Memory
}

var errDiskGone = errors.New("disk gone")

func (*failingStorage) GetItem(context.Context, string) (string, bool, error) {
	return "", false, errDiskGone
}

func TestStore_StorageErrorsAreNotSwallowed(t *testing.T) {
	st := sessions.NewStore(&failingStorage{Memory: storage.NewMemory()})
	_, err := st.Get(context.Background())
	require.ErrorIs(t, err, errDiskGone)
}
