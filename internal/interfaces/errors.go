package interfaces

import "errors"

// ErrBusy is returned when a phase is re-triggered while a request for the
// same phase is still in flight. The trigger is a no-op; callers do not
// queue or retry.
var ErrBusy = errors.New("request already in progress")
