package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jrsteele09/go-auth-client/apiclient"
	"github.com/jrsteele09/go-auth-client/users"
)

// Mode selects which form is being submitted.
type Mode string

const (
	ModeSignIn Mode = "signin"
	ModeSignUp Mode = "signup"
)

// ParseMode accepts the mode names used on the command line.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "signin", "login":
		return ModeSignIn, nil
	case "signup", "register":
		return ModeSignUp, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// Form holds the raw field values as typed by the user.
type Form struct {
	Email           string
	Password        string
	ConfirmPassword string // sign-up only
	Username        string // sign-up only, optional
}

type signInInput struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

type signUpInput struct {
	Email           string `validate:"required"`
	Password        string `validate:"required,min=8"`
	ConfirmPassword string `validate:"eqfield=Password"`
}

// Validator runs the client-side checks that short-circuit a submit before
// any request is made.
type Validator struct {
	v *validator.Validate
}

// NewValidator creates a new Validator instance
func NewValidator() *Validator {
	return &Validator{v: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate returns an *apiclient.APIError of KindValidation, or nil.
func (v *Validator) Validate(mode Mode, f Form) error {
	email := users.NormaliseEmail(f.Email)

	var input any
	switch mode {
	case ModeSignIn:
		input = signInInput{Email: email, Password: f.Password}
	case ModeSignUp:
		input = signUpInput{Email: email, Password: f.Password, ConfirmPassword: f.ConfirmPassword}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}

	err := v.v.Struct(input)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	return apiclient.NewValidationError(firstMessage(ve))
}

// firstMessage picks the message for the highest-priority failure: missing
// fields, then password length, then confirmation mismatch.
func firstMessage(ve validator.ValidationErrors) string {
	tags := make(map[string]bool, len(ve))
	for _, fe := range ve {
		tags[fe.Tag()] = true
	}
	switch {
	case tags["required"]:
		return MsgCredentialsRequired
	case tags["min"]:
		return MsgPasswordTooShort
	case tags["eqfield"]:
		return MsgPasswordsDontMatch
	default:
		return fmt.Sprintf("%s failed validation (%s)", strings.ToLower(ve[0].Field()), ve[0].Tag())
	}
}
