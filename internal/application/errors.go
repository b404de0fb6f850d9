package application

import "errors"

// ErrConflict reports a write that reused an idempotency key.
var ErrConflict = errors.New("conflict")
