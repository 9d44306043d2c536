package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-client/apiclient"
	"github.com/jrsteele09/go-auth-client/auth"
	fakeauthapi "github.com/jrsteele09/go-auth-client/auth/repofakes"
	"github.com/jrsteele09/go-auth-client/internal/testbackend"
	"github.com/jrsteele09/go-auth-client/internal/utils"
	"github.com/jrsteele09/go-auth-client/sessions"
	fakesessionrepo "github.com/jrsteele09/go-auth-client/sessions/repofakes"
	"github.com/jrsteele09/go-auth-client/storage"
	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "ada@example.com"
	testPassword = "correct-horse"
)

// testFixture holds all test dependencies
type testFixture struct {
	api     *fakeauthapi.FakeAuthAPI
	repo    *fakesessionrepo.FakeSessionRepo
	service *auth.Service
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	api := fakeauthapi.NewFakeAuthAPI()
	repo := fakesessionrepo.NewFakeSessionRepo()
	svc, err := auth.NewService(api, repo)
	require.NoError(t, err)

	return &testFixture{api: api, repo: repo, service: svc}
}

func TestNewService_RequiresDependencies(t *testing.T) {
	_, err := auth.NewService(nil, fakesessionrepo.NewFakeSessionRepo())
	require.Error(t, err)
	_, err = auth.NewService(fakeauthapi.NewFakeAuthAPI(), nil)
	require.Error(t, err)
}

func TestSubmit_LocalValidationNeverCallsAPI(t *testing.T) {
	cases := map[string]auth.Form{
		"seven character password": {Email: testEmail, Password: "1234567", ConfirmPassword: "1234567"},
		"mismatched confirmation":  {Email: testEmail, Password: testPassword, ConfirmPassword: testPassword + "!"},
		"missing email":            {Password: testPassword, ConfirmPassword: testPassword},
	}

	for name, form := range cases {
		t.Run(name, func(t *testing.T) {
			f := setupTestFixture(t)

			res, err := f.service.Submit(context.Background(), auth.ModeSignUp, form)
			require.Nil(t, res)
			require.ErrorIs(t, err, apiclient.ErrValidation)
			require.Equal(t, 0, f.api.RegisterCalls)
			require.Equal(t, 0, f.api.Calls())
			require.False(t, f.service.Submitting())

			s, err := f.repo.Get(context.Background())
			require.NoError(t, err)
			require.Nil(t, s)
		})
	}
}

func TestSubmit_SignUp(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	res, err := f.service.Submit(ctx, auth.ModeSignUp, auth.Form{
		Email:           "  Ada@Example.com ",
		Password:        testPassword,
		ConfirmPassword: testPassword,
		Username:        "  ada ",
	})
	require.NoError(t, err)
	require.Equal(t, auth.MsgSuccess, res.Message)

	require.Equal(t, 1, f.api.RegisterCalls)
	require.Equal(t, testEmail, f.api.LastEmail)
	require.Equal(t, testPassword, f.api.LastPassword)
	require.Equal(t, utils.Ptr("ada"), f.api.LastUsername)

	stored, err := f.repo.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "access-fake", stored.AccessToken)
	require.Equal(t, "refresh-fake", stored.RefreshToken)
	require.Equal(t, f.api.Response.User, stored.User)
}

func TestSubmit_SignUpBlankUsernameIsNil(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.service.Submit(context.Background(), auth.ModeSignUp, auth.Form{
		Email: testEmail, Password: testPassword, ConfirmPassword: testPassword, Username: "   ",
	})
	require.NoError(t, err)
	require.Nil(t, f.api.LastUsername)
}

func TestSubmit_SignIn(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.service.Submit(context.Background(), auth.ModeSignIn, auth.Form{Email: testEmail, Password: "short"})
	require.NoError(t, err)
	require.Equal(t, 1, f.api.LoginCalls)
	require.Equal(t, 0, f.api.RegisterCalls)

	signedIn, err := f.service.AlreadySignedIn(context.Background())
	require.NoError(t, err)
	require.True(t, signedIn)
}

func TestSubmit_APIErrorLeavesSessionUntouched(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	_, err := sessions.SetFromAuthResponse(ctx, f.repo, &apiclient.AuthResponse{AccessToken: "prior", RefreshToken: "prior-r", User: nil})
	require.NoError(t, err)

	f.api.Err = &apiclient.APIError{Kind: apiclient.KindHTTP, StatusCode: 401, Message: "invalid credentials"}

	_, err = f.service.Submit(ctx, auth.ModeSignIn, auth.Form{Email: testEmail, Password: "nope"})
	require.Error(t, err)
	require.Equal(t, "invalid credentials", auth.UserMessage(err))

	s, err := f.repo.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "prior", s.AccessToken)
}

func TestSubmit_RejectsOverlappingSubmit(t *testing.T) {
	f := setupTestFixture(t)
	f.api.Block = make(chan struct{})
	ctx := context.Background()
	form := auth.Form{Email: testEmail, Password: testPassword}

	done := make(chan error, 1)
	go func() {
		_, err := f.service.Submit(ctx, auth.ModeSignIn, form)
		done <- err
	}()

	require.Eventually(t, f.service.Submitting, time.Second, 5*time.Millisecond)

	_, err := f.service.Submit(ctx, auth.ModeSignIn, form)
	require.ErrorIs(t, err, auth.ErrSubmitInProgress)

	close(f.api.Block)
	require.NoError(t, <-done)
	require.Equal(t, 1, f.api.Calls())
	require.False(t, f.service.Submitting())
}

func TestUserMessage(t *testing.T) {
	require.Empty(t, auth.UserMessage(nil))
	require.Equal(t, "request timed out", auth.UserMessage(&apiclient.APIError{Kind: apiclient.KindTimeout, Message: apiclient.MsgTimeout}))
	require.Equal(t, auth.MsgUnexpected, auth.UserMessage(errors.New("disk full")))
}

func TestSubmit_AgainstBackend(t *testing.T) {
	b := testbackend.New(t)
	client := apiclient.New(b.URL())
	store := sessions.NewStore(storage.NewMemory())
	svc, err := auth.NewService(client, store)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.Submit(ctx, auth.ModeSignUp, auth.Form{Email: testEmail, Password: "1234567", ConfirmPassword: "1234567"})
	require.ErrorIs(t, err, apiclient.ErrValidation)
	require.Equal(t, 0, b.CountRequests(apiclient.RouteRegister))

	res, err := svc.Submit(ctx, auth.ModeSignUp, auth.Form{
		Email: testEmail, Password: testPassword, ConfirmPassword: testPassword, Username: "ada",
	})
	require.NoError(t, err)
	require.Equal(t, 1, b.CountRequests(apiclient.RouteRegister))

	cached, err := store.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, res.Session.AccessToken, cached.AccessToken)
	require.Equal(t, "ada", cached.User.DisplayName())

	me, err := client.GetMe(ctx, cached.AccessToken)
	require.NoError(t, err)
	require.Equal(t, testEmail, me.Email())

	_, err = svc.Submit(ctx, auth.ModeSignUp, auth.Form{Email: testEmail, Password: testPassword, ConfirmPassword: testPassword})
	require.Equal(t, "email already registered", auth.UserMessage(err))
}
