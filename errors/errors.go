package errors

import "fmt"

var (
	ErrWorkerPanic      = fmt.Errorf("worker panic")
	ErrEmptyWords       = fmt.Errorf("no words have been found")
	ErrInvalidCommand   = fmt.Errorf("invalid command")
	ErrSerialization    = fmt.Errorf("event cannot be serialized")
	ErrStorage          = fmt.Errorf("event store failure")
	ErrUnknownEventKind = fmt.Errorf("unknown event kind")
)
