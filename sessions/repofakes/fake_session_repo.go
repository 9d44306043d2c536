package fakesessionrepo

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-auth-client/sessions"
)

var _ sessions.Repo = (*FakeSessionRepo)(nil)

// FakeSessionRepo is an in-memory sessions.Repo for tests.
type FakeSessionRepo struct {
	session *sessions.Session
	lock    sync.RWMutex

	// Err, when set, is returned by every call.
	Err error
}

func NewFakeSessionRepo() *FakeSessionRepo {
	return &FakeSessionRepo{}
}

func (sr *FakeSessionRepo) Get(_ context.Context) (*sessions.Session, error) {
	sr.lock.RLock()
	defer sr.lock.RUnlock()

	if sr.Err != nil {
		return nil, sr.Err
	}
	if sr.session == nil {
		return nil, nil
	}
	s := *sr.session
	return &s, nil
}

func (sr *FakeSessionRepo) Set(_ context.Context, session *sessions.Session) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	if sr.Err != nil {
		return sr.Err
	}
	if session == nil {
		sr.session = nil
		return nil
	}
	s := *session
	sr.session = &s
	return nil
}

func (sr *FakeSessionRepo) Clear(_ context.Context) error {
	sr.lock.Lock()
	defer sr.lock.Unlock()

	if sr.Err != nil {
		return sr.Err
	}
	sr.session = nil
	return nil
}
