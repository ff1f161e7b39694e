package upload

import "errors"

var (
	// ErrJobNotFound is returned for unknown, expired or already confirmed jobs.
	ErrJobNotFound = errors.New("job not found")
	// ErrJobNotCompleted is returned when confirming a job that is still
	// pending, processing or failed.
	ErrJobNotCompleted = errors.New("job is not completed")
	// ErrUnknownCategory is returned when a correction names a category that
	// does not exist.
	ErrUnknownCategory = errors.New("unknown category")
)
