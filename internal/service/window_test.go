package service

import (
	"errors"
	"testing"
	"time"

	"beacon_analyzer/internal/models"
)

func fixedZone(name string, offsetSec int) *time.Location {
	return time.FixedZone(name, offsetSec)
}

func at(hh, mm int) time.Time {
	return time.Date(2024, time.January, 1, hh, mm, 0, 0, time.UTC)
}

func Test_normalizeToUTC(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   time.Time
		want func(time.Time) bool
	}{
		{
			name: "zero time remains zero",
			in:   time.Time{},
			want: func(out time.Time) bool { return out.IsZero() },
		},
		{
			name: "non-UTC converted to UTC preserving instant",
			in:   time.Date(2024, time.January, 1, 13, 0, 0, 0, fixedZone("UTC+3", 3*3600)),
			want: func(out time.Time) bool {
				return out.Location() == time.UTC && out.Equal(at(10, 0))
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := normalizeToUTC(tt.in); !tt.want(got) {
				t.Fatalf("unexpected result: %v", got)
			}
		})
	}
}

func Test_resolveWindow(t *testing.T) {
	t.Parallel()

	span := models.Window{From: at(8, 0), To: at(18, 0)}

	tests := []struct {
		name     string
		in       models.Window
		wantFrom time.Time
		wantTo   time.Time
		wantErr  error
	}{
		{name: "both zero uses span", in: models.Window{}, wantFrom: span.From, wantTo: span.To},
		{name: "open start", in: models.Window{To: at(12, 0)}, wantFrom: span.From, wantTo: at(12, 0)},
		{name: "open end", in: models.Window{From: at(9, 0)}, wantFrom: at(9, 0), wantTo: span.To},
		{name: "explicit bounds outside span kept", in: models.Window{From: at(1, 0), To: at(23, 0)}, wantFrom: at(1, 0), wantTo: at(23, 0)},
		{name: "single instant", in: models.Window{From: at(10, 0), To: at(10, 0)}, wantFrom: at(10, 0), wantTo: at(10, 0)},
		{name: "inverted rejected", in: models.Window{From: at(11, 0), To: at(10, 0)}, wantErr: models.ErrInvalidWindow},
		{name: "open end before span start rejected", in: models.Window{To: at(7, 0)}, wantErr: models.ErrInvalidWindow},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := resolveWindow(tt.in, span)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("want %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.From.Equal(tt.wantFrom) || !got.To.Equal(tt.wantTo) {
				t.Fatalf("got %+v", got)
			}
		})
	}
}
