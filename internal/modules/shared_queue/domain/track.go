package domain

import (
	"slices"
	"strconv"
	"strings"
	"time"
)

// TrackID is an opaque, stable identifier for a track.
type TrackID string

// Artwork references a cover image for a track.
type Artwork struct {
	URL    string
	Height int
	Width  int
}

// Track is one playable item. Tracks are values: once built by NewTrack they
// are never modified, and accessors hand out copies.
type Track struct {
	ID       TrackID
	Name     string
	URI      string
	Duration time.Duration
	Artists  []string
	Artwork  *Artwork
}

// TrackInput is the caller-supplied payload for a track.
type TrackInput struct {
	ID       string
	Name     string
	URI      string
	Duration time.Duration
	Artists  []string
	Artwork  *Artwork
}

// NewTrack validates input and builds a Track.
// Returns a *ValidationError naming every missing required field.
func NewTrack(input TrackInput) (Track, error) {
	verr := &ValidationError{Subject: "track"}

	id := strings.TrimSpace(input.ID)
	name := strings.TrimSpace(input.Name)
	uri := strings.TrimSpace(input.URI)

	if id == "" {
		verr.Missing = append(verr.Missing, "id")
	}
	if name == "" {
		verr.Missing = append(verr.Missing, "name")
	}
	if uri == "" {
		verr.Missing = append(verr.Missing, "uri")
	}
	if input.Duration < 0 {
		verr.Invalid = append(verr.Invalid, "duration")
	}
	if input.Artwork != nil && strings.TrimSpace(input.Artwork.URL) == "" {
		verr.Missing = append(verr.Missing, "artwork.url")
	}
	if !verr.empty() {
		return Track{}, verr
	}

	track := Track{
		ID:       TrackID(id),
		Name:     name,
		URI:      uri,
		Duration: input.Duration,
		Artists:  slices.Clone(input.Artists),
	}
	if input.Artwork != nil {
		artwork := *input.Artwork
		track.Artwork = &artwork
	}
	return track, nil
}

// clone returns a deep copy so callers cannot reach shared slices.
func (t Track) clone() Track {
	t.Artists = slices.Clone(t.Artists)
	if t.Artwork != nil {
		artwork := *t.Artwork
		t.Artwork = &artwork
	}
	return t
}

// ArtistLine joins the artist list for display.
func (t Track) ArtistLine() string {
	return strings.Join(t.Artists, ", ")
}

// FormattedDuration returns the duration as mm:ss or hh:mm:ss.
func (t Track) FormattedDuration() string {
	totalSeconds := int(t.Duration.Seconds())
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return pad(hours) + ":" + pad(minutes) + ":" + pad(seconds)
	}
	return pad(minutes) + ":" + pad(seconds)
}

func pad(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
