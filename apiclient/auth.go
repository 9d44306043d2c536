package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-auth-client/users"
)

// Backend auth routes.
const (
	RouteRegister = "/api/auth/register"
	RouteLogin    = "/api/auth/login"
	RouteRefresh  = "/api/auth/refresh"
	RouteMe       = "/api/auth/me"
)

// AuthResponse is what the backend returns from register, login and refresh.
type AuthResponse struct {
	// AccessToken authenticates API calls: "Authorization: Bearer <access_token>".
	AccessToken string `json:"access_token"`

	// RefreshToken is exchanged at /api/auth/refresh for a new access token.
	RefreshToken string `json:"refresh_token"`

	// User is the backend's view of the account. Forwarded untouched.
	User users.Summary `json:"user"`

	TokenType string `json:"token_type,omitempty"`
	ExpiresIn int    `json:"expires_in,omitempty"`
}

type registerRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Username *string `json:"username"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account. A nil username is sent as JSON null.
func (c *Client) Register(ctx context.Context, email, password string, username *string) (*AuthResponse, error) {
	raw, err := c.Request(ctx, RouteRegister, RequestOptions{
		Method:  http.MethodPost,
		Payload: registerRequest{Email: email, Password: password, Username: username},
	})
	if err != nil {
		return nil, err
	}
	return decode[AuthResponse](raw, "Register")
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	raw, err := c.Request(ctx, RouteLogin, RequestOptions{
		Method:  http.MethodPost,
		Payload: loginRequest{Email: email, Password: password},
	})
	if err != nil {
		return nil, err
	}
	return decode[AuthResponse](raw, "Login")
}

// RefreshToken presents the refresh token as the bearer credential.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	raw, err := c.Request(ctx, RouteRefresh, RequestOptions{
		Method: http.MethodPost,
		Token:  refreshToken,
	})
	if err != nil {
		return nil, err
	}
	return decode[AuthResponse](raw, "RefreshToken")
}

func (c *Client) GetMe(ctx context.Context, accessToken string) (users.Summary, error) {
	raw, err := c.Request(ctx, RouteMe, RequestOptions{
		Method: http.MethodGet,
		Token:  accessToken,
	})
	if err != nil {
		return nil, err
	}
	me, err := decode[users.Summary](raw, "GetMe")
	if err != nil {
		return nil, err
	}
	return *me, nil
}

func (c *Client) AuthedGet(ctx context.Context, path, accessToken string, params map[string]any) (json.RawMessage, error) {
	return c.Request(ctx, path, RequestOptions{
		Method:  http.MethodGet,
		Token:   accessToken,
		Params:  params,
		Timeout: c.authedTimeout,
	})
}

func (c *Client) AuthedPost(ctx context.Context, path, accessToken string, payload any) (json.RawMessage, error) {
	return c.Request(ctx, path, RequestOptions{
		Method:  http.MethodPost,
		Token:   accessToken,
		Payload: payload,
		Timeout: c.authedTimeout,
	})
}

// AuthedDelete keeps the standard timeout.
func (c *Client) AuthedDelete(ctx context.Context, path, accessToken string) (json.RawMessage, error) {
	return c.Request(ctx, path, RequestOptions{
		Method: http.MethodDelete,
		Token:  accessToken,
	})
}

func decode[T any](raw json.RawMessage, op string) (*T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("[Client %s] decode response: %w", op, err)
	}
	return &v, nil
}
