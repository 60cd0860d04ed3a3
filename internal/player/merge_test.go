package player

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/kvasen/spotnow/internal/spotify"
)

// fakeSpotify assembles an httptest server covering the player surface.
// Any endpoint left nil falls through to its default handler.
type fakeSpotify struct {
	currentlyPlaying http.HandlerFunc
	playerState      http.HandlerFunc
	queue            http.HandlerFunc
	playlist         http.HandlerFunc

	playlistCalls atomic.Int64
}

func (f *fakeSpotify) server(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/me/player/currently-playing", orDefault(f.currentlyPlaying, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"is_playing": true,
			"progress_ms": 5000,
			"item": {
				"name": "Song A",
				"duration_ms": 200000,
				"album": {"name": "Album X", "album_type": "album"},
				"artists": [{"name": "Artist 1"}],
				"external_urls": {"spotify": "https://open.spotify.com/track/abc"}
			},
			"context": {"type": "playlist", "uri": "spotify:playlist:pl1"}
		}`)
	}))
	mux.HandleFunc("/me/player", orDefault(f.playerState, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"shuffle_state": true, "repeat_state": "context"}`)
	}))
	mux.HandleFunc("/me/player/queue", orDefault(f.queue, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"queue": [{"name": "Song B", "duration_ms": 180000}]}`)
	}))
	mux.HandleFunc("/playlists/", func(w http.ResponseWriter, r *http.Request) {
		f.playlistCalls.Add(1)
		if f.playlist != nil {
			f.playlist(w, r)
			return
		}
		fmt.Fprint(w, `{"id": "pl1", "name": "Morning Mix"}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func orDefault(h, fallback http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return fallback
}

func newTestEngine(srv *httptest.Server) *Engine {
	client := spotify.NewClient(spotify.ClientOpts{HTTPClient: srv.Client(), BaseURL: srv.URL})
	return NewEngine(client, nil)
}

func TestEngine(t *testing.T) {
	t.Run("Full Snapshot", func(t *testing.T) {
		fake := &fakeSpotify{}
		engine := newTestEngine(fake.server(t))

		snap, err := engine.Fetch(context.Background(), "token123")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if snap == nil {
			t.Fatal("expected a snapshot")
		}

		if !snap.IsPlaying {
			t.Error("expected playing state")
		}
		if snap.Track.Name != "Song A" {
			t.Errorf("expected Song A, got %s", snap.Track.Name)
		}
		if snap.ProgressMS != 5000 || snap.DurationMS != 200000 {
			t.Errorf("unexpected progress %d/%d", snap.ProgressMS, snap.DurationMS)
		}
		if !snap.Shuffle || snap.Repeat != RepeatContext {
			t.Errorf("unexpected device state: shuffle=%v repeat=%v", snap.Shuffle, snap.Repeat)
		}
		if len(snap.Queue) != 1 || snap.Queue[0].Name != "Song B" {
			t.Errorf("unexpected queue: %+v", snap.Queue)
		}
		if snap.Playlist == nil {
			t.Fatal("expected a playlist association")
		}
		if snap.Playlist.ID != "pl1" || snap.Playlist.Name != "Morning Mix" {
			t.Errorf("unexpected playlist: %+v", snap.Playlist)
		}
		if snap.Playlist.URL != spotify.OpenPlaylistURL+"pl1" {
			t.Errorf("unexpected playlist URL: %s", snap.Playlist.URL)
		}
		if snap.CapturedAt.IsZero() {
			t.Error("expected capture timestamp")
		}
	})

	t.Run("Best-Effort Calls Degrade", func(t *testing.T) {
		fail := func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}
		fake := &fakeSpotify{playerState: fail, queue: fail, playlist: fail}
		engine := newTestEngine(fake.server(t))

		snap, err := engine.Fetch(context.Background(), "token123")
		if err != nil {
			t.Fatalf("secondary failures must not abort the refresh: %v", err)
		}
		if snap.Shuffle || snap.Repeat != RepeatOff {
			t.Errorf("expected default device state, got shuffle=%v repeat=%v", snap.Shuffle, snap.Repeat)
		}
		if len(snap.Queue) != 0 {
			t.Errorf("expected empty queue, got %+v", snap.Queue)
		}

		// The association survives without the display name.
		if snap.Playlist == nil || snap.Playlist.ID != "pl1" || snap.Playlist.Name != "" {
			t.Errorf("unexpected playlist: %+v", snap.Playlist)
		}
	})

	t.Run("Nothing Playing", func(t *testing.T) {
		fake := &fakeSpotify{
			currentlyPlaying: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			},
		}
		engine := newTestEngine(fake.server(t))

		snap, err := engine.Fetch(context.Background(), "token123")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if snap != nil {
			t.Errorf("expected nil snapshot, got %+v", snap)
		}
	})

	t.Run("Null Item", func(t *testing.T) {
		fake := &fakeSpotify{
			currentlyPlaying: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"is_playing": false, "item": null}`)
			},
		}
		engine := newTestEngine(fake.server(t))

		snap, err := engine.Fetch(context.Background(), "token123")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if snap != nil {
			t.Errorf("expected nil snapshot for null item, got %+v", snap)
		}
	})

	t.Run("Primary Failure Aborts", func(t *testing.T) {
		fake := &fakeSpotify{
			currentlyPlaying: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		}
		engine := newTestEngine(fake.server(t))

		if _, err := engine.Fetch(context.Background(), "token123"); err == nil {
			t.Fatal("expected an error when the primary call fails")
		}
	})

	t.Run("Liked Songs Collection", func(t *testing.T) {
		fake := &fakeSpotify{
			currentlyPlaying: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{
					"is_playing": true,
					"item": {"name": "Song A", "duration_ms": 200000},
					"context": {"type": "collection", "uri": "spotify:user:me:collection"}
				}`)
			},
		}
		engine := newTestEngine(fake.server(t))

		snap, err := engine.Fetch(context.Background(), "token123")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if snap.Playlist == nil {
			t.Fatal("expected a liked-songs association")
		}
		if !snap.Playlist.Liked || snap.Playlist.Name != "Liked Songs" {
			t.Errorf("unexpected association: %+v", snap.Playlist)
		}
		if snap.Playlist.ID != spotify.LikedSongsID {
			t.Errorf("expected reserved collection id, got %s", snap.Playlist.ID)
		}
		if got := fake.playlistCalls.Load(); got != 0 {
			t.Errorf("collection must resolve locally, saw %d playlist calls", got)
		}
	})

	t.Run("No Context", func(t *testing.T) {
		fake := &fakeSpotify{
			currentlyPlaying: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{
					"is_playing": true,
					"item": {"name": "Song A", "duration_ms": 200000},
					"context": null
				}`)
			},
		}
		engine := newTestEngine(fake.server(t))

		snap, err := engine.Fetch(context.Background(), "token123")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if snap.Playlist != nil {
			t.Errorf("expected no association, got %+v", snap.Playlist)
		}
	})
}
