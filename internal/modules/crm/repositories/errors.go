package repositories

import "errors"

// ErrNotFound covers both a genuinely missing row and a row hidden by the
// tenant scope. Callers must not be able to tell the two apart, so existence
// is never confirmed across tenant boundaries.
var ErrNotFound = errors.New("not found")
