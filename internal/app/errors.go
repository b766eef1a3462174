package app

import "errors"

var (
	// ErrQuit signals that the application should exit normally.
	ErrQuit = errors.New("quit requested")

	// ErrNoFileName is returned when a write is requested for a scratch
	// buffer.
	ErrNoFileName = errors.New("no file name")
)
