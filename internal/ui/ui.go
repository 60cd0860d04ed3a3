// Package ui renders the live now-playing view for the watch command.
//
// The model polls the snapshot cache on a tick; the cache getter never
// blocks, so the view stays responsive regardless of upstream latency.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/kvasen/spotnow/internal/player"
)

const maxBarWidth = 50

// tickMsg drives the poll loop.
type tickMsg time.Time

// Model represents the watch view state.
type Model struct {
	cache    *player.Cache
	snap     *player.Snapshot
	interval time.Duration
	bar      progress.Model
	help     help.Model
	keys     keyMap
	width    int
}

// NewModel creates a watch view polling the given cache every interval.
func NewModel(cache *player.Cache, interval time.Duration) Model {
	if interval <= 0 {
		interval = player.DefaultInterval
	}

	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = maxBarWidth

	return Model{
		cache:    cache,
		interval: interval,
		bar:      bar,
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if w := msg.Width - 10; w > 0 && w < maxBarWidth {
			m.bar.Width = w
		} else {
			m.bar.Width = maxBarWidth
		}
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}
	case tickMsg:
		m.snap = m.cache.Get()
		return m, m.tick()
	}

	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(styles.accent.Render("spotnow") + "\n\n")

	snap := m.snap
	if snap == nil {
		b.WriteString(styles.dim.Render("Nothing playing.") + "\n\n")
		b.WriteString(m.help.View(m.keys))
		return b.String()
	}

	state := "▶"
	if !snap.IsPlaying {
		state = "⏸"
	}
	b.WriteString(fmt.Sprintf("%s %s\n", state, styles.track.Render(snap.Track.Name)))
	b.WriteString(styles.meta.Render(strings.Join(snap.Track.Artists, ", ")) + "\n")

	album := snap.Track.AlbumName
	if snap.Track.AlbumType != "" {
		album = fmt.Sprintf("%s (%s)", album, snap.Track.AlbumType)
	}
	b.WriteString(styles.meta.Render(album) + "\n")

	if snap.Playlist != nil {
		b.WriteString(styles.dim.Render("from "+playlistLabel(snap.Playlist)) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(m.bar.ViewAs(percent(snap.ProgressMS, snap.DurationMS)))
	b.WriteString(fmt.Sprintf("  %s / %s", clock(snap.ProgressMS), clock(snap.DurationMS)))
	b.WriteString("\n\n")

	b.WriteString(styles.dim.Render(fmt.Sprintf("shuffle %s  repeat %s", onOff(snap.Shuffle), snap.Repeat)) + "\n")

	if len(snap.Queue) > 0 {
		b.WriteString("\n" + styles.accent.Render("Up next") + "\n")
		for i, t := range snap.Queue {
			if i >= 5 {
				b.WriteString(styles.dim.Render(fmt.Sprintf("  … and %d more", len(snap.Queue)-i)) + "\n")
				break
			}
			b.WriteString(fmt.Sprintf("  %s %s\n",
				styles.meta.Render(t.Name),
				styles.dim.Render("— "+strings.Join(t.Artists, ", "))))
		}
	}

	b.WriteString("\n" + m.help.View(m.keys))
	return b.String()
}

func playlistLabel(p *player.PlaylistContext) string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}

func percent(progress, duration int64) float64 {
	if duration <= 0 {
		return 0
	}
	p := float64(progress) / float64(duration)
	if p > 1 {
		p = 1
	}
	return p
}

func clock(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
