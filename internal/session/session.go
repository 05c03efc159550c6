package session

import (
	"slices"
	"sync"

	"github.com/iMallco/iMall/internal/model"
)

// State is the client's view of the current auth session.
type State struct {
	IsAuthenticated        bool
	HasCompletedOnboarding bool
	User                   *model.UserResponse
	Token                  string
}

// Ticket identifies the session generation an operation started in. Results
// carrying a stale ticket are discarded.
type Ticket uint64

// Session holds the client auth state. It is safe for concurrent use.
//
// Every mutation re-evaluates the Gate and notifies subscribers synchronously.
// Deliveries are serialized and each carries the route for the state current
// at delivery time, so the last route a subscriber sees always matches the
// session. Subscribers must not mutate the session from the callback.
type Session struct {
	mu          sync.Mutex
	state       State
	generation  uint64
	subscribers []func(Route)

	notifyMu sync.Mutex
}

// New returns a signed-out session.
func New() *Session {
	return &Session{}
}

// State returns a copy of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// Route returns the gate result for the current state.
func (s *Session) Route() Route {
	return Gate(s.State())
}

// Subscribe registers fn to be called with the new route after each change.
func (s *Session) Subscribe(fn func(Route)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Begin returns a ticket for an operation about to start.
func (s *Session) Begin() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Ticket(s.generation)
}

// Authenticate records a successful sign-up or sign-in. A user that already
// has a type goes straight to onboarded. It returns false, changing nothing,
// if the session moved on since t was issued.
func (s *Session) Authenticate(t Ticket, user model.UserResponse, token string) bool {
	return s.commit(t, func(st *State) bool {
		sameUser := st.User != nil && st.User.ID == user.ID
		st.IsAuthenticated = true
		st.HasCompletedOnboarding = user.Onboarded() || (sameUser && st.HasCompletedOnboarding)
		st.User = &user
		st.Token = token
		return true
	})
}

// CompleteOnboarding records a user type selection on an authenticated session.
// Once onboarded the session never returns to pending, even if the user record
// changes type again.
func (s *Session) CompleteOnboarding(t Ticket, user model.UserResponse) bool {
	return s.commit(t, func(st *State) bool {
		if !st.IsAuthenticated {
			return false
		}
		st.HasCompletedOnboarding = true
		st.User = &user
		return true
	})
}

// SignOut clears the session unconditionally and invalidates outstanding tickets.
func (s *Session) SignOut() {
	s.mu.Lock()
	s.generation++
	s.state = State{}
	s.mu.Unlock()

	s.publish()
}

func (s *Session) commit(t Ticket, apply func(*State) bool) bool {
	s.mu.Lock()
	if Ticket(s.generation) != t || !apply(&s.state) {
		s.mu.Unlock()
		return false
	}
	s.mu.Unlock()

	s.publish()
	return true
}

// publish delivers the current route to every subscriber. A change that lands
// while an earlier delivery is running is picked up by its own publish, which
// waits for notifyMu and re-reads the state.
func (s *Session) publish() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	route := Gate(s.state)
	subs := slices.Clone(s.subscribers)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(route)
	}
}

func (s *Session) snapshot() State {
	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}
