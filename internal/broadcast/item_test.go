package broadcast

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNewAudio_title_fallback_and_truncation(t *testing.T) {
	a, err := NewAudio("t1", "1_song.mp3", "  ", "Original Name.mp3")
	if err != nil {
		t.Fatal(err)
	}
	if a.Name != "Original Name.mp3" {
		t.Errorf("Name = %q", a.Name)
	}

	long := strings.Repeat("ж", 120)
	a, err = NewAudio("t1", "1_song.mp3", long, "")
	if err != nil {
		t.Fatal(err)
	}
	if n := utf8.RuneCountInString(a.Name); n != MaxNameLen {
		t.Errorf("name has %d runes, want %d", n, MaxNameLen)
	}
	if a.ID == "" || a.ID == string(a.Track) {
		t.Errorf("item id should be fresh, got %q", a.ID)
	}
}

func TestNewAudio_requires_track(t *testing.T) {
	if _, err := NewAudio("", "f.mp3", "t", ""); !errors.Is(err, ErrNoTrack) {
		t.Errorf("got %v, want ErrNoTrack", err)
	}
}

func TestNewText(t *testing.T) {
	if _, err := NewText(" \n\t "); !errors.Is(err, ErrEmptyText) {
		t.Errorf("blank text: got %v", err)
	}

	body := strings.Repeat("a", 200)
	tx, err := NewText(body)
	if err != nil {
		t.Fatal(err)
	}
	if tx.Body != body {
		t.Error("text body must not be truncated")
	}
	if len(tx.Name) != MaxNameLen {
		t.Errorf("preview length %d, want %d", len(tx.Name), MaxNameLen)
	}
}

func TestPublicItemOf(t *testing.T) {
	tx, _ := NewText("hello")
	pi := PublicItemOf(tx)
	if pi.Type != KindText || pi.Text != "hello" || pi.AudioURL != "" {
		t.Errorf("text item: %+v", pi)
	}

	a, _ := NewAudio("abc", "1_x.mp3", "X", "")
	pi = PublicItemOf(a)
	if pi.Type != KindAudio || pi.AudioURL != "/stream/abc" || pi.Text != "" {
		t.Errorf("audio item: %+v", pi)
	}
}
