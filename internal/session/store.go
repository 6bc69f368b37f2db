package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/anurag9179/smartcashbook.client/internal/backend"
	"github.com/anurag9179/smartcashbook.client/internal/config"
	"github.com/anurag9179/smartcashbook.client/internal/permissions"
	"github.com/anurag9179/smartcashbook.client/internal/storage"
	"github.com/anurag9179/smartcashbook.client/internal/token"
)

// storageTimeout bounds durable-store calls made outside a caller context
// (logout, watchdog purge).
const storageTimeout = 5 * time.Second

// Store is the sole owner of authentication state. Construct one per
// process and hand it to consumers; there is no package-level instance.
type Store struct {
	api    AuthAPI
	tokens storage.TokenStore
	logger *zap.Logger

	warningMinutes    int
	watchdogInterval  time.Duration
	countdownInterval time.Duration

	mu      sync.Mutex
	state   State
	subs    map[int]chan State
	nextSub int
	wd      *watchdog
	closed  bool
}

// New builds the store and restores any durable session: a stored token
// that still has life left resumes the session, an expired one is purged.
func New(ctx context.Context, cfg config.AuthConfig, api AuthAPI, tokens storage.TokenStore, logger *zap.Logger) (*Store, error) {
	s := &Store{
		api:               api,
		tokens:            tokens,
		logger:            logger.Named("session"),
		warningMinutes:    int(cfg.WarningWindow() / time.Minute),
		watchdogInterval:  cfg.WatchdogInterval(),
		countdownInterval: cfg.CountdownInterval(),
		subs:              map[int]chan State{},
	}

	stored, err := tokens.Load(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if stored == "" {
		return s, nil
	}
	if token.IsExpired(stored) {
		s.logger.Info("stored token expired, purging")
		if err := s.clearWithTimeout(); err != nil {
			s.logger.Warn("purge stored token", zap.Error(err))
		}
		return s, nil
	}
	s.state = s.deriveState(stored)
	s.startWatchdogLocked()
	s.logger.Info("session restored",
		zap.String("username", s.state.User.Username),
		zap.Int("minutes_remaining", s.state.MinutesRemaining))
	return s, nil
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyStateLocked()
}

// Subscribe registers an observer. Each state change is delivered as a
// snapshot; slow observers miss intermediate states rather than block the
// store. The returned func cancels the subscription.
func (s *Store) Subscribe() (<-chan State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		ch := make(chan State)
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	ch := make(chan State, 8)
	s.subs[id] = ch
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}
}

// Login authenticates against the backend. On failure the session is left
// exactly as it was and the result carries the server's message when one
// was provided.
func (s *Store) Login(ctx context.Context, identifier, password string) Result {
	tok, err := s.api.Login(ctx, identifier, password)
	if err != nil {
		s.logger.Info("login rejected", zap.Error(err))
		return Result{Err: resultMessage(err)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.adoptTokenLocked(ctx, tok); err != nil {
		s.logger.Error("persist token", zap.Error(err))
		return Result{Err: "could not establish the session"}
	}
	s.logger.Info("login succeeded", zap.String("username", s.state.User.Username))
	return Result{OK: true}
}

// Logout purges the durable token and clears all derived state. Safe to
// call repeatedly and in any state.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logoutLocked()
}

// RefreshToken asks the backend for a freshly signed token on behalf of the
// current session.
func (s *Store) RefreshToken(ctx context.Context) Result {
	s.mu.Lock()
	current := s.state.Token
	s.mu.Unlock()

	if current == "" {
		return Result{Err: "no active session"}
	}
	if token.Decode(current) == nil {
		return Result{Err: "stored token is unreadable"}
	}

	fresh, err := s.api.Refresh(ctx, current)
	if err != nil {
		s.logger.Warn("token refresh failed", zap.Error(err))
		return Result{Err: resultMessage(err)}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Token != current {
		// Session moved on while the call was in flight; discard.
		return Result{Err: "session changed during refresh"}
	}
	if err := s.adoptTokenLocked(ctx, fresh); err != nil {
		s.logger.Error("persist refreshed token", zap.Error(err))
		return Result{Err: "could not establish the session"}
	}
	s.logger.Info("token refreshed", zap.Int("minutes_remaining", s.state.MinutesRemaining))
	return Result{OK: true}
}

// Close stops the watchdog and closes subscriber channels without touching
// the durable token, so the session survives a process restart.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	wd := s.wd
	s.stopWatchdogLocked()
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
	s.mu.Unlock()

	if wd != nil {
		<-wd.done
	}
}

// adoptTokenLocked is the single mutation primitive: persist, re-derive,
// publish, and make sure the watchdog is running. A token the codec cannot
// read, or that is already expired, is rejected before anything is
// persisted — a session that could never authenticate must not replace the
// current state.
func (s *Store) adoptTokenLocked(ctx context.Context, raw string) error {
	st := s.deriveState(raw)
	if st.User == nil {
		return errors.New("received an unreadable token")
	}
	if !st.Authenticated {
		return errors.New("received an expired token")
	}
	if err := s.tokens.Save(ctx, raw); err != nil {
		return err
	}
	s.state = st
	s.startWatchdogLocked()
	s.publishLocked()
	return nil
}

// logoutLocked clears durable and derived state and tears the watchdog down.
func (s *Store) logoutLocked() {
	s.stopWatchdogLocked()
	if err := s.clearWithTimeout(); err != nil {
		s.logger.Warn("purge stored token", zap.Error(err))
	}
	s.state = State{}
	s.publishLocked()
	s.logger.Info("logged out")
}

func (s *Store) clearWithTimeout() error {
	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()
	return s.tokens.Clear(ctx)
}

// deriveState recomputes the full snapshot from the raw token. The user is
// always rebuilt from the claims so it cannot diverge from the token.
func (s *Store) deriveState(raw string) State {
	p := token.Decode(raw)
	if p == nil {
		return State{}
	}
	st := State{
		Token:            raw,
		Authenticated:    !token.IsExpired(raw),
		ExpiringSoon:     token.WillExpireWithin(raw, s.warningMinutes),
		MinutesRemaining: token.MinutesRemaining(raw),
		User: &User{
			ID:       p.UserID,
			Username: p.Username,
			Email:    p.Email,
			Role:     permissions.Role(p.Role),
		},
	}
	if !st.Authenticated {
		st.ExpiringSoon = false
	}
	return st
}

func (s *Store) copyStateLocked() State {
	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

func (s *Store) publishLocked() {
	snap := s.copyStateLocked()
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}

func resultMessage(err error) string {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if errors.Is(err, backend.ErrConnectivity) {
		return "cannot reach the server, check your connection"
	}
	return "request failed"
}
