// Package session holds short-lived payment intents between initiation
// and token registration. Intents live only in process memory; a restart
// intentionally forgets every pending payment.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound indicates the session id is unknown or already swept.
var ErrNotFound = errors.New("session: not found")

// Intent is a payment session: the caller's promise to pay for a
// package, and later the record of the verified settlement.
type Intent struct {
	ID               string
	PackageID        string
	PackageLabel     string
	ExpectedLamports int64
	Wallet           string
	CreatedAt        time.Time

	// Verified flips once when the on-chain payment checks out.
	// Signature is the settling transaction, recorded at that moment.
	Verified  bool
	Signature string
}

// Store is an in-memory session store with a fixed TTL.
// Expired entries are swept lazily on Create; there is no background
// goroutine to leak.
type Store struct {
	mu      sync.Mutex
	intents map[string]*Intent
	ttl     time.Duration
	clock   func() time.Time
}

// NewStore creates a session store with the given TTL.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		intents: make(map[string]*Intent),
		ttl:     ttl,
		clock:   time.Now,
	}
}

// WithClock overrides the time source for tests.
func (s *Store) WithClock(clock func() time.Time) *Store {
	s.clock = clock
	return s
}

// TTL returns the configured session lifetime.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Create sweeps expired sessions, then inserts a new pending intent and
// returns a copy of it.
func (s *Store) Create(packageID, packageLabel string, expectedLamports int64, wallet string) Intent {
	now := s.clock()

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, intent := range s.intents {
		if now.Sub(intent.CreatedAt) > s.ttl {
			delete(s.intents, id)
		}
	}

	intent := &Intent{
		ID:               uuid.NewString(),
		PackageID:        packageID,
		PackageLabel:     packageLabel,
		ExpectedLamports: expectedLamports,
		Wallet:           wallet,
		CreatedAt:        now,
	}
	s.intents[intent.ID] = intent

	return *intent
}

// Get returns a copy of the intent for id. It performs no TTL check;
// callers that care about freshness combine it with IsExpired.
func (s *Store) Get(id string) (Intent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	intent, ok := s.intents[id]
	if !ok {
		return Intent{}, ErrNotFound
	}
	return *intent, nil
}

// IsExpired reports whether the intent's age exceeds the store TTL.
func (s *Store) IsExpired(intent Intent) bool {
	return s.clock().Sub(intent.CreatedAt) > s.ttl
}

// MarkVerified records a successful settlement. The transition is
// monotonic: once verified, the original signature is kept even if a
// different one is offered later.
func (s *Store) MarkVerified(id, signature string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	intent, ok := s.intents[id]
	if !ok {
		return ErrNotFound
	}
	if intent.Verified {
		return nil
	}
	intent.Verified = true
	intent.Signature = signature
	return nil
}

// Consume deletes the session, ending its single use. Deleting an
// absent id is a no-op so concurrent consumers settle cleanly.
func (s *Store) Consume(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.intents, id)
}

// Len returns the number of held sessions, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.intents)
}
