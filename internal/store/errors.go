package store

import "errors"

// ErrNotFound is returned when a record does not exist within the caller's
// scope. A row owned by another account is reported the same way.
var ErrNotFound = errors.New("not found")
