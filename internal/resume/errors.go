package resume

import "errors"

// ErrMissingFields is returned by Request.Validate when a required field is empty.
var ErrMissingFields = errors.New("name and email are required")
