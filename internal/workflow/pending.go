package workflow

import (
	"sync"
	"time"

	"github.com/coder/quartz"
)

type Kind int

const (
	TransferFlow Kind = iota + 1
	BuyInFlow
	FinalChipsFlow
)

func (k Kind) String() string {
	switch k {
	case TransferFlow:
		return "transfer"
	case BuyInFlow:
		return "buy_in"
	case FinalChipsFlow:
		return "final_chips"
	}
	return "unknown"
}

type Step int

const (
	SelectingRecipient Step = iota + 1
	AwaitingAmount
	AwaitingValue
)

func (s Step) String() string {
	switch s {
	case SelectingRecipient:
		return "selecting_recipient"
	case AwaitingAmount:
		return "awaiting_amount"
	case AwaitingValue:
		return "awaiting_value"
	}
	return "idle"
}

// Pending is the unfinished step a user is in. Users without a record are idle.
type Pending struct {
	Kind          Kind
	Step          Step
	RecipientID   string
	RecipientName string
	Round         uint64
	StartedAt     time.Time
}

// Store keeps one pending record per user. Records older than ttl are
// treated as absent; a zero ttl disables expiry.
type Store struct {
	mu      sync.Mutex
	clock   quartz.Clock
	ttl     time.Duration
	pending map[string]Pending
}

func NewStore(clock quartz.Clock, ttl time.Duration) *Store {
	return &Store{
		clock:   clock,
		ttl:     ttl,
		pending: make(map[string]Pending),
	}
}

func (s *Store) Get(userID string) (Pending, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(userID)
}

func (s *Store) get(userID string) (Pending, bool) {
	p, ok := s.pending[userID]
	if !ok {
		return Pending{}, false
	}
	if s.expired(p) {
		delete(s.pending, userID)
		return Pending{}, false
	}
	return p, true
}

// Put replaces the user's record and restarts its ttl.
func (s *Store) Put(userID string, p Pending) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.StartedAt = s.clock.Now()
	s.pending[userID] = p
}

// Advance replaces the record only if the user is still at step from.
func (s *Store) Advance(userID string, from Step, next Pending) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.get(userID)
	if !ok || cur.Step != from {
		return false
	}
	next.StartedAt = s.clock.Now()
	s.pending[userID] = next
	return true
}

// Take removes and returns the record if the user is at kind/step.
func (s *Store) Take(userID string, kind Kind, step Step) (Pending, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.get(userID)
	if !ok || cur.Kind != kind || cur.Step != step {
		return Pending{}, false
	}
	delete(s.pending, userID)
	return cur, true
}

// Clear drops the user's record and reports whether one was active.
func (s *Store) Clear(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.get(userID)
	delete(s.pending, userID)
	return ok
}

// Sweep removes expired records and returns how many were dropped.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, p := range s.pending {
		if s.expired(p) {
			delete(s.pending, id)
			n++
		}
	}
	return n
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *Store) expired(p Pending) bool {
	return s.ttl > 0 && s.clock.Since(p.StartedAt) >= s.ttl
}
