package services

import "errors"

// Dashboard service errors
var (
	ErrViewNotFound = errors.New("view not found")
	ErrPageNotFound = errors.New("page not found")

	// ErrSourceNotLoaded is captured into a view result when its table is
	// missing from the loaded sources.
	ErrSourceNotLoaded = errors.New("source table not loaded")
)
