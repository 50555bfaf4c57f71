package application

import (
	"sync"
	"time"

	"github.com/kurzickkrozz/GWPB/internal/domain"
	"github.com/kurzickkrozz/GWPB/internal/ports"
)

// DefaultPartyTimeout is how long a party lives after creation.
const DefaultPartyTimeout = 3 * time.Hour

// ExpiryScheduler arms one deadline per party, measured from the party's
// creation time rather than from when it was armed.
type ExpiryScheduler struct {
	clock   ports.Clock
	timeout time.Duration
	expire  func(domain.PartyID)

	mu     sync.Mutex
	timers map[domain.PartyID]*expiryEntry
}

type expiryEntry struct {
	timer ports.Timer
}

func NewExpiryScheduler(clock ports.Clock, timeout time.Duration, expire func(domain.PartyID)) *ExpiryScheduler {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if timeout <= 0 {
		timeout = DefaultPartyTimeout
	}

	return &ExpiryScheduler{
		clock:   clock,
		timeout: timeout,
		expire:  expire,
		timers:  make(map[domain.PartyID]*expiryEntry),
	}
}

func (s *ExpiryScheduler) Timeout() time.Duration {
	return s.timeout
}

// Remaining is max(0, timeout - (now - createdAt)).
func (s *ExpiryScheduler) Remaining(createdAt time.Time) time.Duration {
	remaining := s.timeout - s.clock.Now().Sub(createdAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Arm schedules the expiry of id, replacing any earlier timer for it. A
// deadline already in the past fires right away.
func (s *ExpiryScheduler) Arm(id domain.PartyID, createdAt time.Time) {
	s.Cancel(id)

	entry := &expiryEntry{}
	s.mu.Lock()
	s.timers[id] = entry
	s.mu.Unlock()

	// The clock may run the callback before AfterFunc returns, so the
	// handle is recorded only if the entry is still current.
	timer := s.clock.AfterFunc(s.Remaining(createdAt), func() { s.fire(id, entry) })

	s.mu.Lock()
	if s.timers[id] == entry {
		entry.timer = timer
	}
	s.mu.Unlock()
}

// Cancel stops the pending timer for id, if any.
func (s *ExpiryScheduler) Cancel(id domain.PartyID) {
	s.mu.Lock()
	entry, ok := s.timers[id]
	delete(s.timers, id)
	s.mu.Unlock()

	if ok && entry.timer != nil {
		entry.timer.Stop()
	}
}

// Stop cancels every pending timer.
func (s *ExpiryScheduler) Stop() {
	s.mu.Lock()
	timers := s.timers
	s.timers = make(map[domain.PartyID]*expiryEntry)
	s.mu.Unlock()

	for _, entry := range timers {
		if entry.timer != nil {
			entry.timer.Stop()
		}
	}
}

func (s *ExpiryScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *ExpiryScheduler) fire(id domain.PartyID, entry *expiryEntry) {
	s.mu.Lock()
	if s.timers[id] == entry {
		delete(s.timers, id)
	}
	s.mu.Unlock()

	s.expire(id)
}
