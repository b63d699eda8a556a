package tenancy

import "errors"

// ErrNotFound reports a property or lease that does not exist for the calling
// owner. An ownership mismatch reports identically to non-existence so the
// API never confirms that another owner's record exists.
var ErrNotFound = errors.New("not found")

// ErrInvalidInput reports a malformed request: an empty tenant set on attach,
// or referenced ids that do not belong to the calling owner.
var ErrInvalidInput = errors.New("invalid input")
