package fakeauthapi

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-auth-client/apiclient"
	"github.com/jrsteele09/go-auth-client/users"
)

// FakeAuthAPI records calls and answers with canned responses.
type FakeAuthAPI struct {
	lock sync.Mutex

	RegisterCalls int
	LoginCalls    int

	LastEmail    string
	LastPassword string
	LastUsername *string

	Response *apiclient.AuthResponse
	Err      error

	// Block, when set, is waited on inside each call.
	Block chan struct{}
}

func NewFakeAuthAPI() *FakeAuthAPI {
	return &FakeAuthAPI{
		Response: &apiclient.AuthResponse{
			AccessToken:  "access-fake",
			RefreshToken: "refresh-fake",
			User:         users.Summary{"email": "ada@example.com", "username": "ada"},
		},
	}
}

func (f *FakeAuthAPI) Register(ctx context.Context, email, password string, username *string) (*apiclient.AuthResponse, error) {
	f.lock.Lock()
	f.RegisterCalls++
	f.LastEmail, f.LastPassword, f.LastUsername = email, password, username
	f.lock.Unlock()
	return f.answer(ctx)
}

func (f *FakeAuthAPI) Login(ctx context.Context, email, password string) (*apiclient.AuthResponse, error) {
	f.lock.Lock()
	f.LoginCalls++
	f.LastEmail, f.LastPassword, f.LastUsername = email, password, nil
	f.lock.Unlock()
	return f.answer(ctx)
}

func (f *FakeAuthAPI) Calls() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.RegisterCalls + f.LoginCalls
}

func (f *FakeAuthAPI) answer(ctx context.Context) (*apiclient.AuthResponse, error) {
	if f.Block != nil {
		select {
		case <-f.Block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Response, nil
}
