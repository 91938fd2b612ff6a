package broadcast

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"radio-broadcast/internal/track"
)

// MaxNameLen is the display-name limit in runes, applied when an item is created.
const MaxNameLen = 80

var (
	// ErrEmptyText is returned for a text item whose text is blank.
	ErrEmptyText = errors.New("text is empty")

	// ErrNoTrack is returned for an audio item without a registered track.
	ErrNoTrack = errors.New("audio item has no track")

	// ErrNoItem is returned when a nil item is handed to the station.
	ErrNoItem = errors.New("no item")
)

// Kind tells the two item variants apart on the wire.
type Kind string

const (
	KindAudio Kind = "audio"
	KindText  Kind = "text"
)

// Item is either an Audio or a Text. The interface is sealed.
type Item interface {
	ItemID() string
	DisplayName() string
	Kind() Kind
	validate() error
}

// Audio is an uploaded track. Filename is internal and never published.
type Audio struct {
	ID       string
	Name     string
	Track    track.ID
	Filename string
}

// NewAudio builds an audio item for a registered track. The title falls back to
// fallbackName when blank.
func NewAudio(id track.ID, filename, title, fallbackName string) (Audio, error) {
	if id == "" {
		return Audio{}, ErrNoTrack
	}
	name := strings.TrimSpace(title)
	if name == "" {
		name = strings.TrimSpace(fallbackName)
	}
	if name == "" {
		name = filename
	}
	return Audio{
		ID:       uuid.NewString(),
		Name:     truncate(name, MaxNameLen),
		Track:    id,
		Filename: filename,
	}, nil
}

func (a Audio) ItemID() string      { return a.ID }
func (a Audio) DisplayName() string { return a.Name }
func (a Audio) Kind() Kind          { return KindAudio }

func (a Audio) validate() error {
	if a.Track == "" {
		return ErrNoTrack
	}
	return nil
}

// Text is an announcement shown instead of audio.
type Text struct {
	ID   string
	Name string
	Body string
}

// NewText trims text and builds a text item; blank text is rejected.
func NewText(text string) (Text, error) {
	body := strings.TrimSpace(text)
	if body == "" {
		return Text{}, ErrEmptyText
	}
	return Text{
		ID:   uuid.NewString(),
		Name: truncate(body, MaxNameLen),
		Body: body,
	}, nil
}

func (t Text) ItemID() string      { return t.ID }
func (t Text) DisplayName() string { return t.Name }
func (t Text) Kind() Kind          { return KindText }

func (t Text) validate() error {
	if strings.TrimSpace(t.Body) == "" {
		return ErrEmptyText
	}
	return nil
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
