// Package tokens records launched SPL tokens for the public recent list.
package tokens

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Token is a registered token launch.
type Token struct {
	ID        string    `json:"id"`
	Mint      string    `json:"mint"`
	Name      string    `json:"name"`
	Symbol    string    `json:"symbol"`
	Decimals  uint8     `json:"decimals"`
	Supply    uint64    `json:"supply"`
	Creator   string    `json:"creator"`
	Signature string    `json:"txSignature"`
	PackageID string    `json:"packageId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Registry is a bounded, newest-first list of launched tokens.
// When the cap is reached the oldest entry is dropped.
type Registry struct {
	mu     sync.Mutex
	tokens []Token
	cap    int
	clock  func() time.Time
}

// NewRegistry creates a registry holding at most capacity tokens.
func NewRegistry(capacity int) *Registry {
	if capacity <= 0 {
		capacity = 50
	}
	return &Registry{
		tokens: make([]Token, 0, capacity),
		cap:    capacity,
		clock:  time.Now,
	}
}

// WithClock overrides the time source for tests.
func (r *Registry) WithClock(clock func() time.Time) *Registry {
	r.clock = clock
	return r
}

// Add stores a token, assigning its id and creation time, and returns
// the stored value.
func (r *Registry) Add(token Token) Token {
	token.ID = uuid.NewString()
	token.CreatedAt = r.clock()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.tokens = append([]Token{token}, r.tokens...)
	if len(r.tokens) > r.cap {
		r.tokens = r.tokens[:r.cap]
	}

	return token
}

// Recent returns up to limit tokens, newest first. A non-positive limit
// returns everything held.
func (r *Registry) Recent(limit int) []Token {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit <= 0 || limit > len(r.tokens) {
		limit = len(r.tokens)
	}
	out := make([]Token, limit)
	copy(out, r.tokens[:limit])
	return out
}

// Len returns the number of held tokens.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tokens)
}
