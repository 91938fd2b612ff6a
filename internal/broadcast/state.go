package broadcast

import "slices"

// Phase is the top-level mode of the broadcast.
type Phase string

const (
	PhaseOffline  Phase = "offline"
	PhaseChoosing Phase = "choosing"
	PhasePlaying  Phase = "playing"
	PhaseText     Phase = "text"
)

// State is the authoritative broadcast state. Values returned by Station are
// copies and may be read freely.
type State struct {
	Phase           Phase
	Current         Item
	Queue           []Item
	ThoughtText     string
	TickerText      string
	ModeratorOnline bool
	// Version increases by one with every committed transition.
	Version uint64
}

func (s State) clone() State {
	s.Queue = slices.Clone(s.Queue)
	return s
}

// StreamPath is the URL prefix under which audio tracks are served.
const StreamPath = "/stream/"

// PublicItem is the listener-facing form of an Item.
type PublicItem struct {
	ID       string `json:"id"`
	Type     Kind   `json:"type"`
	Name     string `json:"name"`
	Text     string `json:"text,omitempty"`
	AudioURL string `json:"audioUrl,omitempty"`
}

// PublicState is the snapshot sent to listeners. It carries stream URLs
// derived from track ids and no storage details.
type PublicState struct {
	State        Phase        `json:"state"`
	CurrentTrack *PublicItem  `json:"currentTrack"`
	ThoughtText  string       `json:"thoughtText"`
	TickerText   string       `json:"tickerText"`
	Queue        []PublicItem `json:"queue"`
	ModOnline    bool         `json:"modOnline"`
	Version      uint64       `json:"version"`
}

// Public sanitizes a state for publication.
func Public(s State) PublicState {
	ps := PublicState{
		State:       s.Phase,
		ThoughtText: s.ThoughtText,
		TickerText:  s.TickerText,
		Queue:       make([]PublicItem, 0, len(s.Queue)),
		ModOnline:   s.ModeratorOnline,
		Version:     s.Version,
	}
	if s.Current != nil {
		cur := PublicItemOf(s.Current)
		ps.CurrentTrack = &cur
	}
	for _, it := range s.Queue {
		ps.Queue = append(ps.Queue, PublicItemOf(it))
	}
	return ps
}

// PublicItemOf converts a single item.
func PublicItemOf(it Item) PublicItem {
	switch v := it.(type) {
	case Audio:
		return PublicItem{ID: v.ID, Type: KindAudio, Name: v.Name, AudioURL: StreamPath + string(v.Track)}
	case Text:
		return PublicItem{ID: v.ID, Type: KindText, Name: v.Name, Text: v.Body}
	default:
		return PublicItem{}
	}
}
