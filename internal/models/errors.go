package models

import (
	"errors"
	"fmt"
)

// ErrEmptySelection is returned when aggregation is requested with nothing selected.
var ErrEmptySelection = errors.New("no beacon selected: select at least one beacon")

// DataSourceError reports an unreadable or malformed database file.
type DataSourceError struct {
	Path    string // file that was opened
	Element string // missing/invalid element, e.g. "column BeaconEvent.RSSI"
	Err     error
}

func (e *DataSourceError) Error() string {
	msg := fmt.Sprintf("data source %q: %s", e.Path, e.Element)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DataSourceError) Unwrap() error { return e.Err }

// FieldError reports a value of unexpected type/format in a result row.
type FieldError struct {
	Field    string // column name
	Row      int    // 1-based row number in the query result
	BeaconID string
	Value    any
	Err      error
}

func (e *FieldError) Error() string {
	msg := fmt.Sprintf("field %s in row %d (beacon %q): unexpected value %v (%T)", e.Field, e.Row, e.BeaconID, e.Value, e.Value)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FieldError) Unwrap() error { return e.Err }
