// Package testbackend runs an in-process stand-in for the tutor-bot auth API
// so client and form tests can exercise real HTTP round trips.
package testbackend

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Recorded is one request as the backend saw it.
type Recorded struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   string
}

type account struct {
	ID       string
	Email    string
	Password string
	Username *string
}

// Backend is a fake API server. The zero value is not usable; call New.
type Backend struct {
	Server *httptest.Server

	lock     sync.Mutex
	accounts map[string]*account // by email
	access   map[string]string   // access token -> email
	refresh  map[string]string   // refresh token -> email
	requests []Recorded
}

// New starts a backend and stops it when the test ends.
func New(t testing.TB) *Backend {
	t.Helper()

	b := &Backend{
		accounts: make(map[string]*account),
		access:   make(map[string]string),
		refresh:  make(map[string]string),
	}

	r := chi.NewRouter()
	r.Use(b.record)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", b.register)
		r.Post("/login", b.login)
		r.Post("/refresh", b.refreshTokens)
		r.Get("/me", b.me)
	})

	r.Get("/api/echo", b.echo)
	r.Post("/api/echo", b.echo)
	r.Delete("/api/items/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Get("/api/slow", b.slow)
	r.Get("/api/status/{code}", b.status)

	b.Server = httptest.NewServer(r)
	t.Cleanup(b.Server.Close)
	return b
}

// URL is the backend origin.
func (b *Backend) URL() string {
	return b.Server.URL
}

// Requests returns a copy of everything received so far.
func (b *Backend) Requests() []Recorded {
	b.lock.Lock()
	defer b.lock.Unlock()
	return append([]Recorded(nil), b.requests...)
}

// CountRequests returns how many requests hit path.
func (b *Backend) CountRequests(path string) int {
	n := 0
	for _, r := range b.Requests() {
		if r.Path == path {
			n++
		}
	}
	return n
}

// AddAccount seeds an account directly.
func (b *Backend) AddAccount(email, password string, username *string) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.accounts[email] = &account{ID: uuid.NewString(), Email: email, Password: password, Username: username}
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body.Close()
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		b.lock.Lock()
		b.requests = append(b.requests, Recorded{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Header: r.Header.Clone(),
			Body:   string(body),
		})
		b.lock.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (b *Backend) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string  `json:"email"`
		Password string  `json:"password"`
		Username *string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "email and password are required"})
		return
	}

	b.lock.Lock()
	if _, exists := b.accounts[req.Email]; exists {
		b.lock.Unlock()
		writeJSON(w, http.StatusConflict, map[string]any{"error": "email already registered"})
		return
	}
	acc := &account{ID: uuid.NewString(), Email: req.Email, Password: req.Password, Username: req.Username}
	b.accounts[req.Email] = acc
	resp := b.issueLocked(acc)
	b.lock.Unlock()

	writeJSON(w, http.StatusCreated, resp)
}

func (b *Backend) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request body"})
		return
	}

	b.lock.Lock()
	acc, ok := b.accounts[req.Email]
	if !ok || acc.Password != req.Password {
		b.lock.Unlock()
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "invalid credentials"})
		return
	}
	resp := b.issueLocked(acc)
	b.lock.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

func (b *Backend) refreshTokens(w http.ResponseWriter, r *http.Request) {
	token := bearer(r)

	b.lock.Lock()
	email, ok := b.refresh[token]
	if !ok {
		b.lock.Unlock()
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "invalid refresh token"})
		return
	}
	delete(b.refresh, token)
	resp := b.issueLocked(b.accounts[email])
	b.lock.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

func (b *Backend) me(w http.ResponseWriter, r *http.Request) {
	b.lock.Lock()
	email, ok := b.access[bearer(r)]
	var acc *account
	if ok {
		acc = b.accounts[email]
	}
	b.lock.Unlock()

	if acc == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "unauthorized"})
		return
	}
	writeJSON(w, http.StatusOK, userJSON(acc))
}

func (b *Backend) echo(w http.ResponseWriter, r *http.Request) {
	var payload any
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&payload)
	}
	query := map[string]string{}
	for k := range r.URL.Query() {
		query[k] = r.URL.Query().Get(k)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"method":  r.Method,
		"query":   query,
		"payload": payload,
		"auth":    r.Header.Get("Authorization"),
	})
}

// slow waits for ?ms= milliseconds or until the client gives up.
func (b *Backend) slow(w http.ResponseWriter, r *http.Request) {
	ms, _ := strconv.Atoi(r.URL.Query().Get("ms"))
	if ms <= 0 {
		ms = 1000
	}
	select {
	case <-time.After(time.Duration(ms) * time.Millisecond):
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	case <-r.Context().Done():
	}
}

// status replies with the code from the path. ?body= sets the body and
// ?type= its content type (default application/json).
func (b *Backend) status(w http.ResponseWriter, r *http.Request) {
	code, err := strconv.Atoi(chi.URLParam(r, "code"))
	if err != nil {
		code = http.StatusBadRequest
	}
	ct := r.URL.Query().Get("type")
	if ct == "" {
		ct = "application/json"
	}
	w.Header().Set("Content-Type", ct)
	w.WriteHeader(code)
	_, _ = io.WriteString(w, r.URL.Query().Get("body"))
}

func (b *Backend) issueLocked(acc *account) map[string]any {
	access := "access-" + uuid.NewString()
	refresh := "refresh-" + uuid.NewString()
	b.access[access] = acc.Email
	b.refresh[refresh] = acc.Email
	return map[string]any{
		"access_token":  access,
		"refresh_token": refresh,
		"token_type":    "bearer",
		"user":          userJSON(acc),
	}
}

func userJSON(acc *account) map[string]any {
	u := map[string]any{"id": acc.ID, "email": acc.Email, "username": nil}
	if acc.Username != nil {
		u["username"] = *acc.Username
	}
	return u
}

func bearer(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
