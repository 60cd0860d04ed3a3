// package player produces now-playing snapshots by fanning out the
// Spotify player endpoints and merging them behind a rate-limited cache
package player

import (
	"strings"
	"time"

	"github.com/kvasen/spotnow/internal/spotify"
)

// Repeat is the player's repeat mode.
type Repeat string

const (
	RepeatOff     Repeat = "off"
	RepeatTrack   Repeat = "track"
	RepeatContext Repeat = "context"
)

// ParseRepeat maps an upstream repeat_state value to a [Repeat],
// defaulting to off for anything unrecognized.
func ParseRepeat(s string) Repeat {
	switch strings.ToLower(s) {
	case "track":
		return RepeatTrack
	case "context":
		return RepeatContext
	default:
		return RepeatOff
	}
}

// TrackInfo describes one track, either the playing one or a queued one.
type TrackInfo struct {
	Name        string   `json:"name"`
	AlbumName   string   `json:"album_name"`
	AlbumType   string   `json:"album_type"`
	Artists     []string `json:"artists"`
	DurationMS  int64    `json:"duration_ms"`
	ExternalURL string   `json:"external_url,omitempty"`
}

// PlaylistContext associates a snapshot with the container it plays
// from: a real playlist or the synthetic Liked Songs collection. A nil
// PlaylistContext on the snapshot means ad-hoc play with no container.
type PlaylistContext struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	URL   string `json:"url,omitempty"`
	Liked bool   `json:"liked,omitempty"`
}

// Snapshot is one immutable, fully merged view of playback state. It is
// never partially constructed: a refresh either yields a complete
// snapshot (with best-effort fields defaulted) or none at all.
type Snapshot struct {
	IsPlaying  bool             `json:"is_playing"`
	Track      TrackInfo        `json:"track"`
	ProgressMS int64            `json:"progress_ms"`
	DurationMS int64            `json:"duration_ms"`
	Playlist   *PlaylistContext `json:"playlist,omitempty"`
	Shuffle    bool             `json:"shuffle"`
	Repeat     Repeat           `json:"repeat"`
	Queue      []TrackInfo      `json:"queue"`
	CapturedAt time.Time        `json:"captured_at"`
}

// trackInfo flattens an upstream track into a [TrackInfo], substituting
// zero values for anything the upstream omitted.
func trackInfo(t *spotify.Track) TrackInfo {
	artists := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		artists = append(artists, a.Name)
	}

	return TrackInfo{
		Name:        t.Name,
		AlbumName:   t.Album.Name,
		AlbumType:   t.Album.AlbumType,
		Artists:     artists,
		DurationMS:  t.DurationMS,
		ExternalURL: t.ExternalURLs.Spotify,
	}
}
