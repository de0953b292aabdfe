package tickets

import "errors"

// Sentinel kinds for catalog search failures. The matcher recovers every
// one of them as "no match"; they exist so the recovery can differ (429
// backs off, 401 gives up for the call).
var (
	ErrNoAPIKey      = errors.New("no catalog api key configured")
	ErrSearch        = errors.New("catalog search failed")
	ErrRateLimited   = errors.New("catalog rate limit hit")
	ErrUnauthorized  = errors.New("catalog authentication failed")
	ErrCatalogStatus = errors.New("catalog returned non-200 status")
)
