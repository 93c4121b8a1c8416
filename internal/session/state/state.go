package state

import (
	"sync"

	"carddemo/internal/session/models"
)

// Status enumerates the auth lifecycle states. The only legal transitions
// are Anonymous -> Authenticating -> Authenticated -> Anonymous, plus the
// in-place Authenticated -> Authenticated token update on silent refresh.
type Status string

const (
	StatusAnonymous      Status = "anonymous"
	StatusAuthenticating Status = "authenticating"
	StatusAuthenticated  Status = "authenticated"
	StatusError          Status = "error"
)

// Snapshot is an immutable view of the auth state handed to subscribers.
type Snapshot struct {
	Status Status
	User   *models.Identity
	Token  string
	Err    error
}

// IsAuthenticated holds iff the state machine is authenticated with both a
// user and a token present.
func (s Snapshot) IsAuthenticated() bool {
	return s.Status == StatusAuthenticated && s.User != nil && s.Token != ""
}

// Store is the process-wide auth state container. It is created at startup
// and lives for the process lifetime. Screens read it through Current and
// Subscribe; only the session manager's lifecycle operations mutate it.
type Store struct {
	mu   sync.RWMutex
	snap Snapshot

	// gen increments every time the state returns to anonymous. In-flight
	// validate/refresh results dispatched under an older generation must be
	// discarded instead of applied.
	gen uint64

	subs    map[int]chan Snapshot
	nextSub int
}

// NewStore constructs a store in the anonymous state.
func NewStore() *Store {
	return &Store{
		snap: Snapshot{Status: StatusAnonymous},
		subs: make(map[int]chan Snapshot),
	}
}

// Current returns the latest snapshot.
func (s *Store) Current() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Generation returns the current logout generation.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

// Subscribe returns a channel that receives every state change, starting
// with the current snapshot, and a cancel function. The channel never
// blocks publishers: when a subscriber lags, older snapshots are dropped in
// favor of the latest.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan Snapshot, 1)
	ch <- s.snap
	s.subs[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

func (s *Store) publishLocked() {
	for _, ch := range s.subs {
		select {
		case ch <- s.snap:
		default:
			// Latest-wins: drop the stale snapshot, then deliver.
			select {
			case <-ch:
			default:
			}
			ch <- s.snap
		}
	}
}

// SetAuthenticating marks a credential exchange or validation in flight.
func (s *Store) SetAuthenticating() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = Snapshot{Status: StatusAuthenticating}
	s.publishLocked()
}

// SetAuthenticated transitions to authenticated with the given identity and
// token.
func (s *Store) SetAuthenticated(user *models.Identity, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = Snapshot{Status: StatusAuthenticated, User: user, Token: token}
	s.publishLocked()
}

// UpdateToken replaces the token in place during silent refresh. It is a
// no-op unless currently authenticated.
func (s *Store) UpdateToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap.Status != StatusAuthenticated {
		return
	}
	s.snap.Token = token
	s.publishLocked()
}

// UpdateUser rehydrates the identity after a fresh-process validation. It is
// a no-op unless currently authenticated.
func (s *Store) UpdateUser(user *models.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap.Status != StatusAuthenticated {
		return
	}
	s.snap.User = user
	s.publishLocked()
}

// SetAnonymous clears the state and bumps the generation so stale in-flight
// results are discarded.
func (s *Store) SetAnonymous() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.snap = Snapshot{Status: StatusAnonymous}
	s.publishLocked()
}

// SetError records a failed login attempt. The user stays anonymous; the
// error is a transient UI-facing flag, not a distinct lifecycle stage.
func (s *Store) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = Snapshot{Status: StatusError, Err: err}
	s.publishLocked()
}
