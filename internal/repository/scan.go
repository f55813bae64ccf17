package repository

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Timestamp layouts accepted for text DateTime values; naive values are UTC.
var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04",
	"2006-01-02",
}

// sqliteTimeFormat is how window bounds are passed to datetime().
const sqliteTimeFormat = "2006-01-02 15:04:05"

// parseTimestamp converts a raw DateTime column value into UTC.
func parseTimestamp(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		return parseTimestampString(t)
	case []byte:
		return parseTimestampString(string(t))
	case nil:
		return time.Time{}, fmt.Errorf("timestamp is NULL")
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp type %T", v)
	}
}

func parseTimestampString(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// parseNullableFloat converts a numeric column value; NULL, "" and NaN yield nil.
func parseNullableFloat(v any) (*float64, error) {
	var f float64
	switch n := v.(type) {
	case nil:
		return nil, nil
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int64:
		f = float64(n)
	case int:
		f = float64(n)
	case string:
		return parseFloatString(n)
	case []byte:
		return parseFloatString(string(n))
	default:
		return nil, fmt.Errorf("unsupported numeric type %T", v)
	}
	if math.IsNaN(f) {
		return nil, nil
	}
	return &f, nil
}

func parseFloatString(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("not a number: %q", s)
	}
	if math.IsNaN(f) {
		return nil, nil
	}
	return &f, nil
}
