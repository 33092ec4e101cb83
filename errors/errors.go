package errors

import "fmt"

var (
	ErrWorkerPanic        = fmt.Errorf("worker panic")
	ErrMalformedEvent     = fmt.Errorf("malformed event")
	ErrUnknownEventKind   = fmt.Errorf("unknown event kind")
	ErrDispatcherStopped  = fmt.Errorf("dispatcher stopped")
	ErrInvariantViolation = fmt.Errorf("registry invariant violated")
	ErrJournalDisabled    = fmt.Errorf("journal is disabled")
)
