package errors

import "fmt"

var (
	ErrWorkerPanic    = fmt.Errorf("worker panic")
	ErrUnknownBackend = fmt.Errorf("unknown store backend")
	ErrBadRoomName    = fmt.Errorf("room name must match [a-zA-Z0-9_-]{1,64}")
)
