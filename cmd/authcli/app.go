package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-auth-client/apiclient"
	"github.com/jrsteele09/go-auth-client/auth"
	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/jrsteele09/go-auth-client/metrics"
	"github.com/jrsteele09/go-auth-client/sessions"
	"github.com/jrsteele09/go-auth-client/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var errNotSignedIn = errors.New("not signed in")

type app struct {
	config   config.Config
	out      io.Writer
	store    storage.Storage
	sessions sessions.Repo
	client   *apiclient.Client
	forms    *auth.Service
	registry *prometheus.Registry
	now      func() time.Time

	quiet       bool
	showMetrics bool
}

func newApp(ctx context.Context, c config.Config, out io.Writer) (*app, error) {
	st, err := storage.Open(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("[newApp] open session storage: %w", err)
	}

	reg := prometheus.NewRegistry()
	client := apiclient.New(c.GetAPIBaseURL(),
		apiclient.WithTimeouts(c.GetRequestTimeout(), c.GetAuthedTimeout()),
		apiclient.WithObserver(metrics.NewRequestMetrics(reg)),
	)
	repo := sessions.NewStore(st)

	forms, err := auth.NewService(client, repo)
	if err != nil {
		st.Close()
		return nil, err
	}

	return &app{
		config:   c,
		out:      out,
		store:    st,
		sessions: repo,
		client:   client,
		forms:    forms,
		registry: reg,
		now:      time.Now,
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// execute runs one command line. Request counters are printed after the
// command when --metrics is set, whether or not it failed.
func (a *app) execute(ctx context.Context, args []string) error {
	root := a.rootCommand()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if a.showMetrics {
		if mErr := metrics.WriteSummary(a.out, a.registry); mErr != nil && err == nil {
			err = mErr
		}
	}
	return err
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "authcli",
		Short:         "Sign up, sign in and call the tutor-bot API from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if !a.quiet {
				displayAppname(a.out, a.config.GetAppName())
			}
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetOut(a.out)
	root.SetErr(a.out)
	root.PersistentFlags().BoolVar(&a.quiet, "quiet", false, "suppress the banner")
	root.PersistentFlags().BoolVar(&a.showMetrics, "metrics", false, "print request counters after the command")

	root.AddCommand(
		a.formCommand(auth.ModeSignUp),
		a.formCommand(auth.ModeSignIn),
		&cobra.Command{
			Use:     "logout",
			Aliases: []string{"signout"},
			Short:   "Forget the cached session",
			Args:    cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.logout(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show who is signed in and when the access token expires",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.status(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "whoami",
			Short: "Fetch the signed-in user from the backend",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.whoami(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "refresh",
			Short: "Exchange the refresh token for new tokens",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.refresh(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "get PATH [key=value ...]",
			Short: "Authenticated GET",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.authed(cmd.Context(), http.MethodGet, args)
			},
		},
		&cobra.Command{
			Use:   "post PATH [JSON]",
			Short: "Authenticated POST",
			Args:  cobra.RangeArgs(1, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.authed(cmd.Context(), http.MethodPost, args)
			},
		},
		&cobra.Command{
			Use:   "delete PATH",
			Short: "Authenticated DELETE",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.authed(cmd.Context(), http.MethodDelete, args)
			},
		},
	)
	return root
}

// formCommand builds the signup or login command. Missing fields are left to
// the form's own validation so the user sees the same messages either way.
func (a *app) formCommand(mode auth.Mode) *cobra.Command {
	var form auth.Form
	cmd := &cobra.Command{
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.submit(cmd.Context(), mode, form)
		},
	}
	cmd.Flags().StringVar(&form.Email, "email", "", "account email")
	cmd.Flags().StringVar(&form.Password, "password", "", "account password")

	if mode == auth.ModeSignUp {
		cmd.Use = "signup"
		cmd.Aliases = []string{"register"}
		cmd.Short = "Create an account and sign in"
		cmd.Flags().StringVar(&form.ConfirmPassword, "confirm", "", "password confirmation")
		cmd.Flags().StringVar(&form.Username, "username", "", "optional username")
	} else {
		cmd.Use = "login"
		cmd.Aliases = []string{"signin"}
		cmd.Short = "Sign in to an existing account"
	}
	return cmd
}

func (a *app) submit(ctx context.Context, mode auth.Mode, form auth.Form) error {
	signedIn, err := a.forms.AlreadySignedIn(ctx)
	if err != nil {
		return err
	}
	if signedIn {
		fmt.Fprintln(a.out, "Already signed in.")
		return nil
	}

	res, err := a.forms.Submit(ctx, mode, form)
	if err != nil {
		return errors.New(auth.UserMessage(err))
	}
	fmt.Fprintln(a.out, res.Message)
	fmt.Fprintf(a.out, "Signed in as %s\n", res.Session.User.DisplayName())
	return nil
}

func (a *app) logout(ctx context.Context) error {
	if err := auth.SignOut(ctx, a.sessions); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out.")
	return nil
}

func (a *app) status(ctx context.Context) error {
	state, err := auth.Landing(ctx, a.sessions, a.client.BaseURL())
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "API: %s\n", state.APIBaseURL)
	if !state.SignedIn {
		fmt.Fprintln(a.out, "Not signed in.")
		return nil
	}
	fmt.Fprintf(a.out, "Signed in as %s\n", state.DisplayName)

	token, ok, err := sessions.GetAccessToken(ctx, a.sessions)
	if err != nil || !ok {
		return err
	}
	claims, err := sessions.PeekClaims(token)
	if err != nil {
		// opaque tokens carry nothing to show
		return nil
	}
	if left, ok := claims.ExpiresIn(a.now()); ok {
		if left > 0 {
			fmt.Fprintf(a.out, "Access token expires in %s\n", left.Round(time.Second))
		} else {
			fmt.Fprintln(a.out, "Access token has expired; run refresh.")
		}
	}
	return nil
}

func (a *app) whoami(ctx context.Context) error {
	tok, err := sessions.TokenSource(ctx, a.sessions).Token()
	if err != nil {
		return a.notSignedIn(err)
	}
	me, err := a.client.GetMe(ctx, tok.AccessToken)
	if err != nil {
		return errors.New(auth.UserMessage(err))
	}
	return a.printJSON(me)
}

// refresh swaps the cached tokens for new ones, keeping the cached user when
// the backend does not send one back.
func (a *app) refresh(ctx context.Context) error {
	current, err := a.sessions.Get(ctx)
	if err != nil {
		return err
	}
	if current == nil || current.RefreshToken == "" {
		return a.notSignedIn(sessions.ErrNoSession)
	}

	resp, err := a.client.RefreshToken(ctx, current.RefreshToken)
	if err != nil {
		return errors.New(auth.UserMessage(err))
	}
	if resp.User == nil {
		resp.User = current.User
	}
	if resp.RefreshToken == "" {
		resp.RefreshToken = current.RefreshToken
	}
	if _, err := sessions.SetFromAuthResponse(ctx, a.sessions, resp); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Tokens refreshed.")
	return nil
}

func (a *app) authed(ctx context.Context, method string, args []string) error {
	path := args[0]

	tok, err := sessions.TokenSource(ctx, a.sessions).Token()
	if err != nil {
		return a.notSignedIn(err)
	}

	var raw json.RawMessage
	switch method {
	case http.MethodGet:
		params, perr := parseParams(args[1:])
		if perr != nil {
			return perr
		}
		raw, err = a.client.AuthedGet(ctx, path, tok.AccessToken, params)
	case http.MethodPost:
		var payload any
		if len(args) > 1 {
			if jerr := json.Unmarshal([]byte(args[1]), &payload); jerr != nil {
				return fmt.Errorf("invalid JSON payload: %w", jerr)
			}
		}
		raw, err = a.client.AuthedPost(ctx, path, tok.AccessToken, payload)
	case http.MethodDelete:
		raw, err = a.client.AuthedDelete(ctx, path, tok.AccessToken)
	}
	if err != nil {
		if apiErr, ok := apiclient.AsAPIError(err); ok && apiErr.StatusCode != 0 {
			return fmt.Errorf("%s (status %d)", apiErr.Message, apiErr.StatusCode)
		}
		return errors.New(auth.UserMessage(err))
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	return a.printJSON(v)
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseParams(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	params := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid query parameter %q, want key=value", p)
		}
		params[k] = v
	}
	return params, nil
}

func (a *app) notSignedIn(err error) error {
	if errors.Is(err, sessions.ErrNoSession) {
		fmt.Fprintln(a.out, "Not signed in. Run login first.")
		return errNotSignedIn
	}
	return err
}
