package spotify

import "strings"

// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
//
// Fields are extracted defensively: anything the upstream omits decodes
// to its zero value instead of failing the request.

// LikedSongsID is the reserved context identifier for the user's Liked
// Songs collection, outside the real playlist identifier space.
const LikedSongsID = "collection:tracks"

// Artist represents a Spotify artist as embedded in a track.
type Artist struct {
	Name string `json:"name"`
}

// Album represents a Spotify album as embedded in a track.
type Album struct {
	Name      string `json:"name"`
	AlbumType string `json:"album_type"`
}

// ExternalURLs holds the public link for a resource.
type ExternalURLs struct {
	Spotify string `json:"spotify"`
}

// Track represents a Spotify track.
type Track struct {
	Name         string       `json:"name"`
	DurationMS   int64        `json:"duration_ms"`
	Album        Album        `json:"album"`
	Artists      []Artist     `json:"artists"`
	ExternalURLs ExternalURLs `json:"external_urls"`
}

// Context describes the container (playlist, album, collection) the
// current track is playing from.
type Context struct {
	Type string `json:"type"`
	URI  string `json:"uri"`
	Href string `json:"href"`
}

// PlaylistID extracts the playlist identifier from a playlist context's
// URI (spotify:playlist:<id>) or href path segment after /playlists/.
// It returns "" for non-playlist contexts and unresolvable identifiers.
func (c *Context) PlaylistID() string {
	if c == nil || !strings.EqualFold(c.Type, "playlist") {
		return ""
	}
	if id, ok := strings.CutPrefix(c.URI, "spotify:playlist:"); ok {
		return id
	}
	if i := strings.LastIndex(c.Href, "/playlists/"); i >= 0 {
		return c.Href[i+len("/playlists/"):]
	}
	return ""
}

// IsCollection reports whether the context is the Liked Songs collection.
func (c *Context) IsCollection() bool {
	if c == nil {
		return false
	}
	return strings.EqualFold(c.Type, "collection") || strings.Contains(c.URI, ":collection")
}

// CurrentlyPlaying represents the currently playing object.
//
// Item is a pointer because the upstream sends null when nothing
// playable is loaded (podcast gaps, private sessions).
type CurrentlyPlaying struct {
	IsPlaying  bool     `json:"is_playing"`
	ProgressMS int64    `json:"progress_ms"`
	Item       *Track   `json:"item"`
	Context    *Context `json:"context"`
}

// PlayerState represents the playback device state.
type PlayerState struct {
	ShuffleState bool   `json:"shuffle_state"`
	RepeatState  string `json:"repeat_state"`
}

// Queue represents the user's play queue in upstream order.
type Queue struct {
	Queue []Track `json:"queue"`
}

// Playlist represents the subset of a playlist object the player
// surface needs.
type Playlist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
