package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		size    int64
		want    Range
		ok      bool
		wantErr error
	}{
		{"absent", "", 1000, Range{}, false, nil},
		{"closed", "bytes=100-199", 1000, Range{100, 199}, true, nil},
		{"open_end", "bytes=500-", 1000, Range{500, 999}, true, nil},
		{"end_clamped", "bytes=900-5000", 1000, Range{900, 999}, true, nil},
		{"suffix", "bytes=-100", 1000, Range{900, 999}, true, nil},
		{"suffix_larger_than_size", "bytes=-5000", 1000, Range{0, 999}, true, nil},
		{"single_byte", "bytes=0-0", 1000, Range{0, 0}, true, nil},
		{"start_past_end", "bytes=1000-", 1000, Range{}, false, ErrUnsatisfiable},
		{"empty_resource", "bytes=0-", 0, Range{}, false, ErrUnsatisfiable},
		{"zero_suffix", "bytes=-0", 1000, Range{}, false, ErrUnsatisfiable},
		{"multi_range_ignored", "bytes=0-1,5-6", 1000, Range{}, false, nil},
		{"wrong_unit", "items=0-1", 1000, Range{}, false, nil},
		{"garbage", "bytes=abc-def", 1000, Range{}, false, nil},
		{"inverted", "bytes=200-100", 1000, Range{}, false, nil},
		{"no_dash", "bytes=100", 1000, Range{}, false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := ParseRange(tt.header, tt.size)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRange_Length(t *testing.T) {
	assert.Equal(t, int64(100), Range{100, 199}.Length())
	assert.Equal(t, int64(1), Range{0, 0}.Length())
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "audio/mpeg", ContentType("/x/1_a.MP3"))
	assert.Equal(t, "audio/ogg", ContentType("a.ogg"))
	assert.Equal(t, "audio/mp4", ContentType("a.m4a"))
	assert.Equal(t, "audio/opus", ContentType("a.opus"))
	assert.Equal(t, DefaultContentType, ContentType("a.xyz"))
	assert.Equal(t, DefaultContentType, ContentType("noext"))

	assert.True(t, IsAudioExt("a.FLAC"))
	assert.False(t, IsAudioExt("a.exe"))
}
