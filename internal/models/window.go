package models

import (
	"errors"
	"time"
)

// ErrInvalidWindow is returned when a window starts after it ends.
var ErrInvalidWindow = errors.New("invalid time window: from must be <= to")

// Window is an inclusive [From, To] timestamp range.
type Window struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// NewWindow builds a window, rejecting from > to.
func NewWindow(from, to time.Time) (Window, error) {
	if from.After(to) {
		return Window{}, ErrInvalidWindow
	}
	return Window{From: from, To: to}, nil
}

// Contains reports whether t lies inside the window, bounds included.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && !t.After(w.To)
}

// IsZero reports whether the window has not been set.
func (w Window) IsZero() bool {
	return w.From.IsZero() && w.To.IsZero()
}
