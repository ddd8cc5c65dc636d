// Package session owns the authentication session lifecycle: credential
// persistence, hydration of a logged-in session from a persisted token,
// and the teardown that ends one.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/freshmart/storefront/internal/api"
)

// Store is the session state machine. All operations are serialized by an
// internal mutex, held across their network calls, so overlapping calls
// cannot interleave against the persisted credential pair.
type Store struct {
	mu      sync.Mutex
	client  *api.Client
	storage Storage
	cart    CartClearer
	logger  *slog.Logger

	state   State
	user    *api.User
	profile *api.Customer

	subs    map[int]func()
	nextSub int
}

// NewStore creates a session store. The cart may be nil when no cart is
// attached; when present it is cleared on logout along with its persisted
// storage. The store starts unauthenticated; call Hydrate to restore a
// session from persisted credentials.
func NewStore(client *api.Client, storage Storage, cart CartClearer, logger *slog.Logger) *Store {
	return &Store{
		client:  client,
		storage: storage,
		cart:    cart,
		logger:  logger,
		state:   StateUnauthenticated,
		subs:    make(map[int]func()),
	}
}

// Login exchanges credentials for a token pair, persists it, and hydrates
// the session before returning, so callers never observe a half-hydrated
// state. Expected rejections (bad credentials) fold into the Result with a
// message extracted from the error body; only transport-level failures
// return an error.
func (s *Store) Login(ctx context.Context, username, password string) (Result, error) {
	s.mu.Lock()
	pair, err := s.client.Login(ctx, api.LoginRequest{Username: username, Password: password})
	if err != nil {
		s.mu.Unlock()
		if isNetwork(err) {
			return Result{}, err
		}
		return Result{Message: api.ErrorMessage(err, "login failed")}, nil
	}

	s.persistTokensLocked(pair.Access, pair.Refresh)
	hydErr := s.hydrateLocked(ctx)
	s.mu.Unlock()
	s.notify()

	if hydErr != nil {
		return Result{Message: api.ErrorMessage(hydErr, "login failed")}, nil
	}
	return Result{OK: true}, nil
}

// Register creates an account. The API auto-logs-in on registration, so a
// successful call also persists the returned credential pair and hydrates.
// On rejection the Result carries the server payload unchanged in Fields
// for field-level rendering.
func (s *Store) Register(ctx context.Context, req api.RegisterRequest) (Result, error) {
	s.mu.Lock()
	resp, err := s.client.Register(ctx, req)
	if err != nil {
		s.mu.Unlock()
		if isNetwork(err) {
			return Result{}, err
		}
		return Result{
			Message: api.ErrorMessage(err, "registration failed"),
			Fields:  api.ErrorBody(err),
		}, nil
	}

	s.persistTokensLocked(resp.Access, resp.Refresh)
	hydErr := s.hydrateLocked(ctx)
	s.mu.Unlock()
	s.notify()

	if hydErr != nil {
		return Result{Message: api.ErrorMessage(hydErr, "registration failed")}, nil
	}
	return Result{OK: true}, nil
}

// Hydrate reconstructs the session from a persisted access token. With no
// token persisted it is a no-op and the store stays unauthenticated. On
// any failure fetching the user record the credential is treated as
// invalid: both persisted tokens are cleared and the store transitions to
// unauthenticated. The best-effort profile fetch runs to completion before
// Hydrate returns, so IsAuthenticated is stable afterwards.
func (s *Store) Hydrate(ctx context.Context) error {
	s.mu.Lock()
	err := s.hydrateLocked(ctx)
	s.mu.Unlock()
	s.notify()
	return err
}

// hydrateLocked implements Hydrate. Caller must hold s.mu.
func (s *Store) hydrateLocked(ctx context.Context) error {
	token, ok := s.storage.Get(KeyAccessToken)
	if !ok || token == "" {
		s.resetLocked()
		return nil
	}

	s.state = StateHydrating
	user, err := s.client.CurrentUser(ctx)
	if err != nil {
		// Invalid or expired credential: clear it rather than retry.
		s.clearTokensLocked()
		s.resetLocked()
		return err
	}

	s.user = user
	s.state = StateAuthenticated

	// Best-effort: a missing profile never invalidates the session.
	profile, err := s.client.Profile(ctx)
	if err != nil {
		s.logger.Warn("profile fetch failed, session remains valid", "error", err)
	} else {
		s.profile = profile
	}

	return nil
}

// Logout ends the session. The remote logout call is best-effort (a dead
// network still logs the user out locally); the persisted credential pair
// is always cleared and the attached cart is emptied, storage included.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	if refresh, ok := s.storage.Get(KeyRefreshToken); ok && refresh != "" {
		if err := s.client.Logout(ctx, refresh); err != nil {
			s.logger.Warn("remote logout failed, clearing session anyway", "error", err)
		}
	}
	s.clearTokensLocked()
	s.resetLocked()
	s.mu.Unlock()

	if s.cart != nil {
		s.cart.Clear()
	}
	s.notify()
}

// UpdateProfile applies a partial profile update. On success the cached
// profile is replaced. On rejection the server payload passes through
// unchanged in Result.Fields so the caller can render field messages.
func (s *Store) UpdateProfile(ctx context.Context, update api.ProfileUpdate) (Result, error) {
	s.mu.Lock()
	profile, err := s.client.UpdateProfile(ctx, update)
	if err != nil {
		s.mu.Unlock()
		if isNetwork(err) {
			return Result{}, err
		}
		return Result{
			Message: api.ErrorMessage(err, "profile update failed"),
			Fields:  api.ErrorBody(err),
		}, nil
	}
	s.profile = profile
	s.mu.Unlock()
	s.notify()
	return Result{OK: true}, nil
}

// CurrentUser returns a copy of the hydrated user record, or nil.
func (s *Store) CurrentUser() *api.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Profile returns a copy of the fetched profile record, or nil.
func (s *Store) Profile() *api.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return nil
	}
	p := *s.profile
	return &p
}

// IsAuthenticated reports whether a persisted credential exists and the
// user record was hydrated. It is false whenever CurrentUser is nil.
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateAuthenticated && s.user != nil
}

// SessionState returns the current lifecycle state.
func (s *Store) SessionState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// AccessToken returns the persisted access token, or "".
func (s *Store) AccessToken() string {
	token, _ := s.storage.Get(KeyAccessToken)
	return token
}

// Subscribe registers a change notification callback and returns its
// cancel function. Callbacks fire after every state change, outside the
// store lock.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// persistTokensLocked writes the credential pair to storage. A write
// failure is logged but does not abort the login; the in-memory session
// still hydrates, it just will not survive a restart.
func (s *Store) persistTokensLocked(access, refresh string) {
	if err := s.storage.Set(KeyAccessToken, access); err != nil {
		s.logger.Warn("persist access token failed", "error", err)
	}
	if err := s.storage.Set(KeyRefreshToken, refresh); err != nil {
		s.logger.Warn("persist refresh token failed", "error", err)
	}
}

// clearTokensLocked removes the persisted credential pair.
func (s *Store) clearTokensLocked() {
	if err := s.storage.Delete(KeyAccessToken); err != nil {
		s.logger.Warn("clear access token failed", "error", err)
	}
	if err := s.storage.Delete(KeyRefreshToken); err != nil {
		s.logger.Warn("clear refresh token failed", "error", err)
	}
}

// resetLocked returns the in-memory session to the empty state.
func (s *Store) resetLocked() {
	s.user = nil
	s.profile = nil
	s.state = StateUnauthenticated
}

// notify invokes subscriber callbacks. Must be called without s.mu held.
func (s *Store) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// isNetwork reports whether err is a transport-level failure rather than
// a server rejection.
func isNetwork(err error) bool {
	return errors.Is(err, api.ErrUnavailable)
}
