package ui

import (
	"github.com/desertthunder/playsync/internal/tasks"
)

// progressMsg carries one update read from the engine's progress channel.
type progressMsg tasks.ProgressUpdate

// syncDoneMsg is delivered once the engine returns.
type syncDoneMsg struct {
	result *tasks.SyncResult
	err    error
}
