package models

import "errors"

var (
	// ErrMalformedVideoURL is returned when a submitted URL doesn't look like a video URL at all
	ErrMalformedVideoURL = errors.New("malformed video url")

	// ErrVideoLookupFailed is returned when a well-formed URL could not be resolved to video metadata
	ErrVideoLookupFailed = errors.New("video lookup failed")
)
