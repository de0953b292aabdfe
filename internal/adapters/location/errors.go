package location

import "errors"

// Sentinel kinds for location lookups. Both degrade to configured defaults.
var (
	ErrLookupStatus = errors.New("location lookup returned non-200 status")
	ErrLookupEmpty  = errors.New("location lookup returned no usable data")
)
