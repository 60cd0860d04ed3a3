package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var styles = NewPalette("#1DB954", "#FFFFFF", "#B3B3B3", "#535353", "#FF5555")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	accent lipgloss.Style
	track  lipgloss.Style
	meta   lipgloss.Style
	dim    lipgloss.Style
	err    lipgloss.Style
}

func NewPalette(accent, track, meta, dim, err string) *Palette {
	return &Palette{
		accent: NewBold(accent),
		track:  NewBold(track),
		meta:   NewStyle(meta),
		dim:    NewStyle(dim),
		err:    NewBold(err),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}
