// Package conversation holds the exchange log shared by the
// interactive sessions. Chat, doc-QA and the knowledge-base panel all
// follow the same shape: append a turn the moment it is submitted,
// resolve it when the backend answers, and either keep or drop it on
// failure. The feature packages parameterize this log with their own
// turn type and completion policy instead of each keeping a bespoke
// state container.
package conversation

import (
	"sync"

	"github.com/offlinellm/client-go/internal/entity"
)

// Config selects the completion policy for a Log.
type Config struct {
	// SingleFlight allows at most one unresolved exchange at a time.
	SingleFlight bool
	// DropOnError removes a failed exchange's turn entirely instead of
	// leaving it in the log.
	DropOnError bool
}

// Log is an append-only, insertion-ordered sequence of exchange turns.
// All methods are safe for concurrent use; resolution order between
// overlapping exchanges is whatever order the responses arrive in, and
// each response lands in the turn it was issued for.
type Log[T any] struct {
	mu       sync.Mutex
	cfg      Config
	turns    []*T
	inFlight int
}

func New[T any](cfg Config) *Log[T] {
	return &Log[T]{cfg: cfg}
}

// Begin appends the turn and marks an exchange outstanding. Under
// SingleFlight it fails with entity.ErrExchangeInFlight when an
// exchange is already pending; the turn is then not appended.
func (l *Log[T]) Begin(turn *T) (*Pending[T], error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cfg.SingleFlight && l.inFlight > 0 {
		return nil, entity.ErrExchangeInFlight
	}

	l.turns = append(l.turns, turn)
	l.inFlight++

	return &Pending[T]{log: l, turn: turn}, nil
}

// Snapshot returns a copy of the current turns in insertion order.
func (l *Log[T]) Snapshot() []T {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]T, len(l.turns))
	for i, t := range l.turns {
		out[i] = *t
	}
	return out
}

// Mutate applies fn to the turn at index under the log's lock. It
// reports whether the index was valid.
func (l *Log[T]) Mutate(index int, fn func(*T)) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if index < 0 || index >= len(l.turns) {
		return false
	}
	fn(l.turns[index])
	return true
}

// Len returns the number of turns currently in the log.
func (l *Log[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.turns)
}

// InFlight reports whether any exchange is still unresolved.
func (l *Log[T]) InFlight() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inFlight > 0
}

// Pending is the completion handle for one outstanding exchange. It
// resolves exactly once with either Succeed or Fail.
type Pending[T any] struct {
	log  *Log[T]
	turn *T
	done bool
}

// Succeed applies the resolution to the pending turn in place.
func (p *Pending[T]) Succeed(update func(*T)) {
	p.log.mu.Lock()
	defer p.log.mu.Unlock()

	if p.done {
		return
	}
	p.done = true
	p.log.inFlight--

	update(p.turn)
}

// Fail resolves the exchange as failed. Under DropOnError the turn is
// removed from the log; otherwise it stays as appended.
func (p *Pending[T]) Fail() {
	p.log.mu.Lock()
	defer p.log.mu.Unlock()

	if p.done {
		return
	}
	p.done = true
	p.log.inFlight--

	if !p.log.cfg.DropOnError {
		return
	}
	for i, t := range p.log.turns {
		if t == p.turn {
			p.log.turns = append(p.log.turns[:i], p.log.turns[i+1:]...)
			return
		}
	}
}
