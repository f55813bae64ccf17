package render

import (
	"errors"
	"sort"
	"strings"
	"time"
)

// ErrInvalidResample is returned for an interval outside the supported set.
var ErrInvalidResample = errors.New("invalid resample interval: use 1m, 5m, 10m, 30m or 1h")

var resampleSteps = map[string]time.Duration{
	"1m":  time.Minute,
	"5m":  5 * time.Minute,
	"10m": 10 * time.Minute,
	"30m": 30 * time.Minute,
	"1h":  time.Hour,
}

// resampleAliases maps alternate spellings onto supported keys.
var resampleAliases = map[string]string{
	"1min":  "1m",
	"5min":  "5m",
	"10min": "10m",
	"30min": "30m",
	"60m":   "1h",
	"60min": "1h",
}

// ParseResample validates an interval name and returns its canonical key and duration.
func ParseResample(s string) (string, time.Duration, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if alias, ok := resampleAliases[key]; ok {
		key = alias
	}
	step, ok := resampleSteps[key]
	if !ok {
		return "", 0, ErrInvalidResample
	}
	return key, step, nil
}

// reducer collapses the values of one bucket into a single value.
type reducer func([]float64) float64

func mean(vs []float64) float64 {
	sum := 0.0
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

func median(vs []float64) float64 {
	s := append([]float64(nil), vs...)
	sort.Float64s(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}

// resample groups points into step-wide buckets labelled by their start and reduces each
// non-empty bucket. Empty buckets are omitted.
func resample(points []Point, step time.Duration, reduce reducer) []Point {
	if len(points) == 0 {
		return []Point{}
	}
	buckets := make(map[int64][]float64)
	for _, p := range points {
		key := p.T.UTC().Truncate(step).UnixNano()
		buckets[key] = append(buckets[key], p.V)
	}

	keys := make([]int64, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	out := make([]Point, 0, len(keys))
	for _, k := range keys {
		out = append(out, Point{T: time.Unix(0, k).UTC(), V: reduce(buckets[k])})
	}
	return out
}
