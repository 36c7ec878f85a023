// Package store holds the viewer's in-memory domain state: the three fetched
// collections, the current selection and the loading/error flags.
package store

import (
	"sync"

	"partyplanner/internal/domain"
)

// Snapshot is a consistent view of the store at one instant. Collections are
// never nil and are replaced wholesale, so a Snapshot may be shared freely.
type Snapshot struct {
	Parties       []domain.Party `json:"parties"`
	SelectedParty *domain.Party  `json:"selectedParty"`
	Guests        []domain.Guest `json:"guests"`
	Rsvps         []domain.Rsvp  `json:"rsvps"`
	Loading       bool           `json:"loading"`
	ErrorMessage  string         `json:"errorMessage"`
}

// Change overwrites one key of the state.
type Change func(*Snapshot)

// WithParties replaces the party list.
func WithParties(parties []domain.Party) Change {
	return func(s *Snapshot) { s.Parties = orEmpty(parties) }
}

// WithSelectedParty sets the selection; nil means none.
func WithSelectedParty(p *domain.Party) Change {
	return func(s *Snapshot) { s.SelectedParty = p }
}

// WithGuests replaces the guest list.
func WithGuests(guests []domain.Guest) Change {
	return func(s *Snapshot) { s.Guests = orEmpty(guests) }
}

// WithRsvps replaces the rsvp list.
func WithRsvps(rsvps []domain.Rsvp) Change {
	return func(s *Snapshot) { s.Rsvps = orEmpty(rsvps) }
}

// WithLoading sets the loading flag.
func WithLoading(loading bool) Change {
	return func(s *Snapshot) { s.Loading = loading }
}

// WithErrorMessage sets the banner message; "" hides the banner.
func WithErrorMessage(msg string) Change {
	return func(s *Snapshot) { s.ErrorMessage = msg }
}

// Store is the single source of truth for the viewer.
type Store struct {
	mu          sync.Mutex
	state       Snapshot
	subscribers []func(Snapshot)
}

// New returns a store in the initial Idle state: empty collections, no selection.
func New() *Store {
	return &Store{state: Snapshot{
		Parties: []domain.Party{},
		Guests:  []domain.Guest{},
		Rsvps:   []domain.Rsvp{},
	}}
}

// SetState applies changes in order and then calls every subscriber with the
// resulting snapshot before returning. Subscribers run under the store lock
// and must not call SetState.
func (s *Store) SetState(changes ...Change) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state
	for _, apply := range changes {
		apply(&next)
	}
	s.state = next
	for _, fn := range s.subscribers {
		fn(next)
	}
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to run after every mutation and runs it once right
// away with the current state.
func (s *Store) Subscribe(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
	fn(s.state)
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
