package town

import "errors"

var (
	// ErrTownNotFound is returned when no town has the requested ID
	ErrTownNotFound = errors.New("town not found")

	// ErrInvalidPassword is returned when an update or delete uses the wrong password
	ErrInvalidPassword = errors.New("invalid town update password")

	// ErrTownFull is returned when a town is already at capacity
	ErrTownFull = errors.New("town is full")

	// ErrInvalidTownName is returned for an empty friendly name
	ErrInvalidTownName = errors.New("town name cannot be empty")

	// ErrInvalidSession is returned when a session token doesn't belong to the town
	ErrInvalidSession = errors.New("invalid session token")
)
