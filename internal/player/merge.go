package player

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/kvasen/spotnow/internal/shared"
	"github.com/kvasen/spotnow/internal/spotify"
)

// Engine fans out the player endpoints concurrently and merges the
// results into one [Snapshot].
type Engine struct {
	client *spotify.Client
	logger *log.Logger
}

// NewEngine creates a merge engine over the given API client.
func NewEngine(client *spotify.Client, logger *log.Logger) *Engine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Engine{client: client, logger: logger}
}

// Fetch performs one refresh: currently-playing, player state, and the
// queue are requested concurrently, plus a dependent playlist-name call
// when the context resolves to a real playlist.
//
// The currently-playing call must succeed; its failure aborts the
// refresh. Player state and queue degrade to defaults (shuffle off,
// repeat off, empty queue) when they fail. A (nil, nil) return means
// nothing is playing, which is a normal outcome rather than an error.
func (e *Engine) Fetch(ctx context.Context, token string) (*Snapshot, error) {
	logger := e.logger.With("refresh_id", shared.GenerateID())

	stateCh := make(chan *spotify.PlayerState, 1)
	queueCh := make(chan *spotify.Queue, 1)

	go func() {
		state, err := e.client.PlayerState(ctx, token)
		if err != nil {
			logger.Debugf("player state fetch failed: %v", err)
			state = nil
		}
		stateCh <- state
	}()

	go func() {
		queue, err := e.client.Queue(ctx, token)
		if err != nil {
			logger.Debugf("queue fetch failed: %v", err)
			queue = nil
		}
		queueCh <- queue
	}()

	current, err := e.client.CurrentlyPlaying(ctx, token)
	if err != nil {
		return nil, err
	}
	if current == nil || current.Item == nil {
		return nil, nil
	}

	track := trackInfo(current.Item)
	playlist, nameCh := e.resolveContext(ctx, token, current.Context, logger)

	shuffle := false
	repeat := RepeatOff
	if state := <-stateCh; state != nil {
		shuffle = state.ShuffleState
		repeat = ParseRepeat(state.RepeatState)
	}

	queue := []TrackInfo{}
	if q := <-queueCh; q != nil {
		for i := range q.Queue {
			queue = append(queue, trackInfo(&q.Queue[i]))
		}
	}

	if nameCh != nil {
		if name := <-nameCh; name != "" {
			playlist.Name = name
		}
	}

	return &Snapshot{
		IsPlaying:  current.IsPlaying,
		Track:      track,
		ProgressMS: current.ProgressMS,
		DurationMS: track.DurationMS,
		Playlist:   playlist,
		Shuffle:    shuffle,
		Repeat:     repeat,
		Queue:      queue,
		CapturedAt: time.Now(),
	}, nil
}

// resolveContext maps the primary response's context onto a playlist
// association. Real playlists get a best-effort name fetch whose result
// arrives on the returned channel; the Liked Songs collection resolves
// locally to the reserved sentinel with no network call.
func (e *Engine) resolveContext(ctx context.Context, token string, c *spotify.Context, logger *log.Logger) (*PlaylistContext, <-chan string) {
	if id := c.PlaylistID(); id != "" {
		playlist := &PlaylistContext{ID: id, URL: spotify.OpenPlaylistURL + id}

		nameCh := make(chan string, 1)
		go func() {
			pl, err := e.client.Playlist(ctx, token, id)
			if err != nil || pl == nil {
				if err != nil {
					logger.Debugf("playlist name fetch failed: %v", err)
				}
				nameCh <- ""
				return
			}
			nameCh <- pl.Name
		}()

		return playlist, nameCh
	}

	if c.IsCollection() {
		return &PlaylistContext{
			ID:    spotify.LikedSongsID,
			Name:  "Liked Songs",
			URL:   spotify.OpenLikedURL,
			Liked: true,
		}, nil
	}

	return nil, nil
}
