package session

import (
	"time"

	"go.uber.org/zap"

	"github.com/anurag9179/smartcashbook.client/internal/token"
)

// watchdog is the single recurring expiration check. The store starts at
// most one per active session and cancels it whenever the token goes away;
// observers never own timers.
type watchdog struct {
	stop chan struct{}
	done chan struct{}
}

// startWatchdogLocked launches the watchdog if none is running. Caller
// holds the store mutex.
func (s *Store) startWatchdogLocked() {
	if s.wd != nil || s.closed {
		return
	}
	wd := &watchdog{stop: make(chan struct{}), done: make(chan struct{})}
	s.wd = wd
	go s.runWatchdog(wd)
}

// stopWatchdogLocked signals the current watchdog to exit. It does not wait:
// the watchdog itself calls into the store on expiry, so waiting here would
// deadlock when the tick is the caller.
func (s *Store) stopWatchdogLocked() {
	if s.wd == nil {
		return
	}
	close(s.wd.stop)
	s.wd = nil
}

func (s *Store) runWatchdog(wd *watchdog) {
	defer close(wd.done)

	// First check runs immediately; interval 0 means the session ended.
	interval := s.tick(wd)
	if interval == 0 {
		return
	}

	timer := time.NewTimer(interval)
	defer timer.Stop()
	for {
		select {
		case <-wd.stop:
			return
		case <-timer.C:
			interval = s.tick(wd)
			if interval == 0 {
				return
			}
			timer.Reset(interval)
		}
	}
}

// tick re-evaluates expiration. It returns the delay until the next check,
// or 0 when the watchdog should exit: session gone, superseded, or expiry
// just forced a logout.
func (s *Store) tick(wd *watchdog) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A newer login may have replaced this watchdog while the tick was
	// waiting on the mutex.
	if s.wd != wd {
		return 0
	}
	raw := s.state.Token
	if raw == "" {
		return 0
	}

	if token.IsExpired(raw) {
		s.logger.Info("token expired, forcing logout")
		s.logoutLocked()
		return 0
	}

	expiringSoon := token.WillExpireWithin(raw, s.warningMinutes)
	remaining := token.MinutesRemaining(raw)
	if expiringSoon != s.state.ExpiringSoon || remaining != s.state.MinutesRemaining {
		s.state.ExpiringSoon = expiringSoon
		s.state.MinutesRemaining = remaining
		s.publishLocked()
		if expiringSoon {
			s.logger.Warn("session expiring soon", zap.Int("minutes_remaining", remaining))
		}
	}

	if expiringSoon {
		return s.countdownInterval
	}
	return s.watchdogInterval
}
