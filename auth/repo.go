package auth

import (
	"context"

	"github.com/jrsteele09/go-auth-client/apiclient"
)

// AuthAPI is the part of the backend client the form needs.
type AuthAPI interface {
	Register(ctx context.Context, email, password string, username *string) (*apiclient.AuthResponse, error)
	Login(ctx context.Context, email, password string) (*apiclient.AuthResponse, error)
}

var _ AuthAPI = (*apiclient.Client)(nil)
