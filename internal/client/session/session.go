// Package session tracks who is signed in. A Watcher wraps an identity
// Provider, keeps the current Identity in memory only, and notifies a single
// registered observer of every change.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/gophnotes/internal/logging"
)

// ErrAlreadyRegistered is returned by OnChange while another observer is
// registered.
var ErrAlreadyRegistered = errors.New("session observer already registered")

// Identity is the signed-in user.
type Identity struct {
	ID    string
	Email string
}

// Provider is the identity backend.
type Provider interface {
	SignUp(ctx context.Context, email, password string) (*Identity, error)
	SignIn(ctx context.Context, email, password string) (*Identity, error)
	SignOut(ctx context.Context) error
}

type Watcher struct {
	provider Provider
	logger   logging.Logger

	mu       sync.Mutex
	current  *Identity
	resolved bool
	observer *registration

	// deliveries are serialized so an observer never sees states out of order
	deliver sync.Mutex
}

type registration struct {
	cb     func(*Identity)
	active bool
}

func NewWatcher(p Provider, l logging.Logger) *Watcher {
	return &Watcher{provider: p, logger: l.With("module", "session")}
}

// OnChange registers cb. It receives the current state as soon as it is
// known (immediately if Start already ran), then every change. The returned
// func deregisters and is idempotent.
func (w *Watcher) OnChange(cb func(*Identity)) (func(), error) {
	w.mu.Lock()
	if w.observer != nil {
		w.mu.Unlock()
		return nil, ErrAlreadyRegistered
	}
	reg := &registration{cb: cb, active: true}
	w.observer = reg
	resolved := w.resolved
	w.mu.Unlock()

	if resolved {
		w.notify()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			w.deliver.Lock()
			defer w.deliver.Unlock()

			w.mu.Lock()
			reg.active = false
			if w.observer == reg {
				w.observer = nil
			}
			w.mu.Unlock()
		})
	}, nil
}

// Start reports the initial state: no identity, since sessions are never
// persisted locally.
func (w *Watcher) Start() {
	w.set(nil)
}

// Current returns a copy of the signed-in identity or nil.
func (w *Watcher) Current() *Identity {
	w.mu.Lock()
	defer w.mu.Unlock()
	return copyIdentity(w.current)
}

func (w *Watcher) SignUp(ctx context.Context, email, password string) error {
	id, err := w.provider.SignUp(ctx, email, password)
	if err != nil {
		w.logger.Warn(ctx, "sign up failed", "error", err)
		return err
	}
	w.logger.Info(ctx, "signed up", "user", id.ID)
	w.set(id)
	return nil
}

func (w *Watcher) SignIn(ctx context.Context, email, password string) error {
	id, err := w.provider.SignIn(ctx, email, password)
	if err != nil {
		w.logger.Warn(ctx, "sign in failed", "error", err)
		return err
	}
	w.logger.Info(ctx, "signed in", "user", id.ID)
	w.set(id)
	return nil
}

// SignOut always ends the local session; a provider error is returned after
// the transition.
func (w *Watcher) SignOut(ctx context.Context) error {
	err := w.provider.SignOut(ctx)
	if err != nil {
		w.logger.Warn(ctx, "sign out failed", "error", err)
	}
	w.set(nil)
	return err
}

func (w *Watcher) set(id *Identity) {
	w.mu.Lock()
	w.current = copyIdentity(id)
	w.resolved = true
	w.mu.Unlock()

	w.notify()
}

// notify delivers the state current at delivery time, so a burst of
// transitions can never leave the observer on a stale identity.
func (w *Watcher) notify() {
	w.deliver.Lock()
	defer w.deliver.Unlock()

	w.mu.Lock()
	reg := w.observer
	id := copyIdentity(w.current)
	w.mu.Unlock()

	if reg != nil && reg.active {
		reg.cb(id)
	}
}

func copyIdentity(id *Identity) *Identity {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}
