// Package broadcast holds the single authoritative playback state of the
// station and every transition allowed on it.
package broadcast

import (
	"fmt"
	"slices"
	"sync"
)

// Event names a committed transition.
type Event string

const (
	EventModeratorLogin  Event = "moderator_login"
	EventModeratorLogout Event = "moderator_logout"
	EventEnqueue         Event = "enqueue"
	EventPlayNow         Event = "play_now"
	EventAdvance         Event = "advance"
	EventStop            Event = "stop"
	EventRemove          Event = "remove"
)

// Observer is called after every committed transition with the new public
// snapshot. Observers run while the station is locked, in commit order, so
// they must not block and must not call back into the Station.
type Observer func(ev Event, s PublicState)

// Identity is the station branding used in the ticker line.
type Identity struct {
	Name      string
	Frequency string
}

func (id Identity) ticker(trackName string) string {
	if id.Frequency == "" {
		return fmt.Sprintf("▶ %s ◀ %s ◀", trackName, id.Name)
	}
	return fmt.Sprintf("▶ %s ◀ %s ▶ %s ◀", trackName, id.Name, id.Frequency)
}

// Station is the broadcast state machine. All mutations serialize on one
// mutex and finish with a single commit that notifies observers.
type Station struct {
	mu        sync.Mutex
	state     State
	identity  Identity
	observers []Observer
}

// NewStation returns a station in the offline phase.
func NewStation(identity Identity) *Station {
	return &Station{
		identity: identity,
		state:    State{Phase: PhaseOffline},
	}
}

// Observe registers an observer for future commits.
func (s *Station) Observe(o Observer) {
	s.mu.Lock()
	s.observers = append(s.observers, o)
	s.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (s *Station) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// PublicSnapshot returns the sanitized current state.
func (s *Station) PublicSnapshot() PublicState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Public(s.state)
}

// ModeratorLogin marks the moderator present and leaves offline.
func (s *Station) ModeratorLogin() {
	s.apply(EventModeratorLogin, func(st *State) {
		st.ModeratorOnline = true
		if st.Phase == PhaseOffline {
			st.Phase = PhaseChoosing
		}
	})
}

// ModeratorLogout takes the station offline. The queue is kept.
func (s *Station) ModeratorLogout() {
	s.apply(EventModeratorLogout, func(st *State) {
		st.ModeratorOnline = false
		st.Phase = PhaseOffline
		st.Current = nil
		st.ThoughtText = ""
		st.TickerText = ""
	})
}

// Enqueue appends an item to the tail of the queue.
func (s *Station) Enqueue(it Item) error {
	if err := check(it); err != nil {
		return err
	}
	s.apply(EventEnqueue, func(st *State) {
		st.Queue = append(st.Queue, it)
		if st.Phase == PhaseOffline {
			st.Phase = PhaseChoosing
		}
	})
	return nil
}

// PlayNow makes it current immediately, bypassing the queue.
func (s *Station) PlayNow(it Item) error {
	if err := check(it); err != nil {
		return err
	}
	s.apply(EventPlayNow, func(st *State) {
		s.present(st, it)
	})
	return nil
}

// Advance moves the queue head to current. With an empty queue it clears
// current and returns false.
func (s *Station) Advance() (Item, bool) {
	var next Item
	s.apply(EventAdvance, func(st *State) {
		if len(st.Queue) == 0 {
			idle(st)
			return
		}
		next = st.Queue[0]
		st.Queue = slices.Delete(st.Queue, 0, 1)
		s.present(st, next)
	})
	return next, next != nil
}

// Stop clears current without touching the queue.
func (s *Station) Stop() {
	s.apply(EventStop, idle)
}

// Remove deletes the queued item with the given id. The current item is never
// affected. An unknown id still publishes, with an unchanged payload and
// version.
func (s *Station) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.state.Queue)
	s.state.Queue = slices.DeleteFunc(s.state.Queue, func(it Item) bool { return it.ItemID() == id })
	removed := len(s.state.Queue) != n
	s.commit(EventRemove, removed)
	return removed
}

// apply runs one transition to completion and commits it.
func (s *Station) apply(ev Event, fn func(st *State)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.state)
	s.commit(ev, true)
}

// commit publishes the state to observers. Must hold s.mu. The version moves
// only when the state changed.
func (s *Station) commit(ev Event, changed bool) {
	if changed {
		s.state.Version++
	}
	if len(s.observers) == 0 {
		return
	}
	snap := Public(s.state)
	for _, o := range s.observers {
		o(ev, snap)
	}
}

// present makes it the current item and derives the display texts.
func (s *Station) present(st *State, it Item) {
	st.Current = it
	switch v := it.(type) {
	case Audio:
		st.Phase = PhasePlaying
		st.ThoughtText = v.Name
		st.TickerText = s.identity.ticker(v.Name)
	case Text:
		st.Phase = PhaseText
		st.ThoughtText = v.Body
		st.TickerText = ""
	}
}

func idle(st *State) {
	st.Current = nil
	st.ThoughtText = ""
	st.TickerText = ""
	if st.ModeratorOnline {
		st.Phase = PhaseChoosing
	} else {
		st.Phase = PhaseOffline
	}
}

func check(it Item) error {
	if it == nil {
		return ErrNoItem
	}
	return it.validate()
}
