package service

import (
	"time"

	"beacon_analyzer/internal/models"
)

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// resolveWindow fills zero bounds from the dataset span and validates the result.
func resolveWindow(w models.Window, span models.Window) (models.Window, error) {
	from := normalizeToUTC(w.From)
	to := normalizeToUTC(w.To)
	if from.IsZero() {
		from = span.From
	}
	if to.IsZero() {
		to = span.To
	}
	return models.NewWindow(from, to)
}
