package database

import "errors"

// ErrNotFound marks lookups for records that do not exist. Repositories
// wrap it with context, so callers check with errors.Is and map it to a
// distinct error kind instead of treating every store failure the same.
var ErrNotFound = errors.New("not found")
