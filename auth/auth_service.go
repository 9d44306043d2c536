// Package auth drives the sign-in and sign-up forms: local validation, one
// request per submit, and caching the resulting session.
package auth

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/jrsteele09/go-auth-client/apiclient"
	"github.com/jrsteele09/go-auth-client/internal/utils"
	"github.com/jrsteele09/go-auth-client/sessions"
	"github.com/jrsteele09/go-auth-client/users"
	"github.com/rs/zerolog/log"
)

// Result is what a successful submit shows and stores.
type Result struct {
	Message string
	Session *sessions.Session
}

// Service handles form submissions.
type Service struct {
	api        AuthAPI
	sessions   sessions.Repo
	validator  *Validator
	submitting atomic.Bool
}

// NewService wires the form to the backend client and the session repo.
func NewService(api AuthAPI, repo sessions.Repo) (*Service, error) {
	if api == nil {
		return nil, errors.New("[NewService] api is required")
	}
	if repo == nil {
		return nil, errors.New("[NewService] session repo is required")
	}
	return &Service{
		api:       api,
		sessions:  repo,
		validator: NewValidator(),
	}, nil
}

// AlreadySignedIn reports whether a session with an access token is cached,
// in which case the form should not be shown.
func (s *Service) AlreadySignedIn(ctx context.Context) (bool, error) {
	_, ok, err := sessions.GetAccessToken(ctx, s.sessions)
	return ok, err
}

// Submit validates the form, issues exactly one register or login request and
// stores the session on success. While a submit is running any other call
// fails with ErrSubmitInProgress.
func (s *Service) Submit(ctx context.Context, mode Mode, f Form) (*Result, error) {
	if !s.submitting.CompareAndSwap(false, true) {
		return nil, ErrSubmitInProgress
	}
	defer s.submitting.Store(false)

	if err := s.validator.Validate(mode, f); err != nil {
		return nil, err
	}

	email := users.NormaliseEmail(f.Email)

	var (
		resp *apiclient.AuthResponse
		err  error
	)
	switch mode {
	case ModeSignUp:
		resp, err = s.api.Register(ctx, email, f.Password, utils.NonEmpty(f.Username))
	default:
		resp, err = s.api.Login(ctx, email, f.Password)
	}
	if err != nil {
		return nil, err
	}

	session, err := sessions.SetFromAuthResponse(ctx, s.sessions, resp)
	if err != nil {
		log.Err(err).Msg("failed to store session")
		return nil, err
	}

	return &Result{Message: MsgSuccess, Session: session}, nil
}

// Submitting reports whether a submit is in flight; the form uses it to
// disable its button.
func (s *Service) Submitting() bool {
	return s.submitting.Load()
}

// UserMessage converts any submit error into the text shown on the form.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if apiErr, ok := apiclient.AsAPIError(err); ok {
		return apiErr.Message
	}
	return MsgUnexpected
}
