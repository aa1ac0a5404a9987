package config

import "errors"

// Errors returned by config loading and watching.
var (
	ErrInvalidOption = errors.New("invalid option value")
	ErrWatcherClosed = errors.New("watcher closed")
	ErrNotWatching   = errors.New("path not watched")
)
