package auth

import autherrors "github.com/jrsteele09/go-auth-client/internal/errors"

// Messages shown to the user.
const (
	MsgCredentialsRequired = "Email and password are required."
	MsgPasswordTooShort    = "Password must be at least 8 characters."
	MsgPasswordsDontMatch  = "Passwords do not match."
	MsgSuccess             = "Success. Redirecting..."
	MsgUnexpected          = "Unexpected error occurred. Please try again."
)

var (
	ErrSubmitInProgress = autherrors.ErrSubmitInProgress
	ErrInvalidMode      = autherrors.ErrInvalidMode
)
