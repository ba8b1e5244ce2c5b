// Package notify delivers short user-facing notifications (toasts).
package notify

import (
	"log/slog"
	"sync"
)

// Level is the severity of a toast.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Toast is one notification shown to the user.
type Toast struct {
	Level   Level
	Message string
}

// Notifier shows toasts.
type Notifier interface {
	Notify(t Toast)
}

// Log writes toasts to the default slog logger.
type Log struct{}

func (Log) Notify(t Toast) {
	switch t.Level {
	case LevelError:
		slog.Warn("Toast", "level", t.Level, "message", t.Message)
	default:
		slog.Info("Toast", "level", t.Level, "message", t.Message)
	}
}

// Recorder keeps every toast in memory.
type Recorder struct {
	mu     sync.Mutex
	toasts []Toast
}

func (r *Recorder) Notify(t Toast) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, t)
}

// Toasts returns a copy of everything recorded so far.
func (r *Recorder) Toasts() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Toast, len(r.toasts))
	copy(out, r.toasts)
	return out
}

// Last returns the most recent toast, if any.
func (r *Recorder) Last() (Toast, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.toasts) == 0 {
		return Toast{}, false
	}
	return r.toasts[len(r.toasts)-1], true
}
