package store

import "errors"

// ErrNotFound reports that a required single-row lookup matched nothing.
// Callers distinguish it from store failures with errors.Is.
var ErrNotFound = errors.New("record not found")
