package domain

import (
	"errors"
	"slices"
	"testing"
	"time"
)

func TestNewTrack(t *testing.T) {
	artwork := &Artwork{URL: "https://i.scdn.co/image/abc", Height: 640, Width: 640}
	input := TrackInput{
		ID:       " t1 ",
		Name:     "Song",
		URI:      "spotify:track:t1",
		Duration: 200 * time.Second,
		Artists:  []string{"A", "B"},
		Artwork:  artwork,
	}

	track, err := NewTrack(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if track.ID != "t1" {
		t.Errorf("expected trimmed ID t1, got %q", track.ID)
	}
	if track.ArtistLine() != "A, B" {
		t.Errorf("expected artist line 'A, B', got %q", track.ArtistLine())
	}

	input.Artists[0] = "changed"
	artwork.URL = "changed"
	if track.Artists[0] != "A" {
		t.Error("expected artists to be copied")
	}
	if track.Artwork.URL != "https://i.scdn.co/image/abc" {
		t.Error("expected artwork to be copied")
	}
}

func TestNewTrack_Validation(t *testing.T) {
	tests := []struct {
		name        string
		input       TrackInput
		wantMissing []string
		wantInvalid []string
	}{
		{
			name:        "everything missing",
			input:       TrackInput{},
			wantMissing: []string{"id", "name", "uri"},
		},
		{
			name:        "blank name",
			input:       TrackInput{ID: "t1", Name: "   ", URI: "u"},
			wantMissing: []string{"name"},
		},
		{
			name:        "artwork without url",
			input:       TrackInput{ID: "t1", Name: "n", URI: "u", Artwork: &Artwork{Height: 1}},
			wantMissing: []string{"artwork.url"},
		},
		{
			name:        "negative duration",
			input:       TrackInput{ID: "t1", Name: "n", URI: "u", Duration: -time.Second},
			wantInvalid: []string{"duration"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTrack(tt.input)

			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if !slices.Equal(verr.Missing, tt.wantMissing) {
				t.Errorf("expected missing %v, got %v", tt.wantMissing, verr.Missing)
			}
			if !slices.Equal(verr.Invalid, tt.wantInvalid) {
				t.Errorf("expected invalid %v, got %v", tt.wantInvalid, verr.Invalid)
			}
		})
	}
}

func TestTrack_FormattedDuration(t *testing.T) {
	tests := []struct {
		duration time.Duration
		want     string
	}{
		{0, "00:00"},
		{65 * time.Second, "01:05"},
		{time.Hour + 2*time.Minute + 3*time.Second, "01:02:03"},
	}

	for _, tt := range tests {
		track := Track{Duration: tt.duration}
		if got := track.FormattedDuration(); got != tt.want {
			t.Errorf("FormattedDuration(%v) = %q, want %q", tt.duration, got, tt.want)
		}
	}
}

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		err  error
		kind error
	}{
		{ErrQueueNotFound, ErrNotFound},
		{ErrTrackNotFound, ErrNotFound},
		{ErrParticipantNotFound, ErrNotFound},
		{ErrNotParticipant, ErrUnauthorized},
		{ErrNotCreator, ErrUnauthorized},
		{ErrCurrentTrackPlaying, ErrConflict},
		{ErrIndexOutOfRange, ErrConflict},
		{ErrCreatorCannotLeave, ErrConflict},
		{ErrCannotRemoveCreator, ErrConflict},
		{ErrQueueExists, ErrConflict},
		{ErrVersionConflict, ErrConflict},
		{&ValidationError{Subject: "track", Missing: []string{"id"}}, ErrValidation},
	}

	kinds := []error{ErrNotFound, ErrUnauthorized, ErrConflict, ErrValidation}
	for _, tt := range tests {
		for _, kind := range kinds {
			if got, want := errors.Is(tt.err, kind), kind == tt.kind; got != want {
				t.Errorf("errors.Is(%q, %q) = %v, want %v", tt.err, kind, got, want)
			}
		}
	}
}
