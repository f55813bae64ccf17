package service

import "errors"

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrNoDataset        = errors.New("no dataset loaded: upload a database file first")
	ErrNoResult         = errors.New("no analysis result: run analyze first")
	ErrInvalidSelection = errors.New("invalid selection request")
	ErrUnknownBeacon    = errors.New("beacon not in the current result")
	ErrUnsupportedFile  = errors.New("unsupported file type: use .db, .sqlite or .sqlite3")
	ErrUploadTooLarge   = errors.New("uploaded file exceeds the size limit")
)
