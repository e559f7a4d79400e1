package contest

import "errors"

var (
	ErrAlreadyRunning = errors.New("contest already running in channel")
	ErrSinkClosed     = errors.New("contest sink closed unexpectedly")
	ErrSessionPanic   = errors.New("contest session panic")
)
