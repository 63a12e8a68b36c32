package receiver

import "errors"

// Sentinel errors
var (
	ErrAlreadyRunning = errors.New("welcomebot/receiver: already running")
	ErrTooManyErrors  = errors.New("welcomebot/receiver: max consecutive errors exceeded")
)
