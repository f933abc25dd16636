package runs

import "errors"

// ErrNotFound indicates no run exists for the given identifier.
var ErrNotFound = errors.New("run not found")
