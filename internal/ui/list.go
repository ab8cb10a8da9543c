package ui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/playsync/internal/models"
	"github.com/desertthunder/playsync/internal/tasks"
)

var (
	_ list.Item = playlistItem{}
	_ list.Item = resultItem{}
)

// playlistItem is a configured playlist name waiting to be synced.
type playlistItem struct {
	name string
}

func (i playlistItem) FilterValue() string { return i.name }
func (i playlistItem) Title() string       { return i.name }
func (i playlistItem) Description() string { return "configured" }

// resultItem wraps a finished [tasks.ReconcileResult] to implement [list.Item].
type resultItem struct {
	result *tasks.ReconcileResult
}

func (i resultItem) FilterValue() string { return i.result.Playlist }
func (i resultItem) Title() string {
	switch i.result.Status {
	case models.StatusSkipped, models.StatusEmpty:
		return styles.help.Render(i.result.Playlist)
	}
	if len(i.result.Unresolved) > 0 {
		return styles.warn.Render(i.result.Playlist)
	}
	return styles.ok.Render(i.result.Playlist)
}
func (i resultItem) Description() string { return i.result.Summary() }
