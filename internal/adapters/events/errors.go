package events

import "errors"

// Sentinel kinds for provider fetch failures. None of these abort a
// pipeline run; they only name which stage of the fetch failed.
var (
	ErrRequest        = errors.New("build provider request failed")
	ErrTransport      = errors.New("provider request failed")
	ErrProviderStatus = errors.New("provider returned non-200 status")
	ErrDecode         = errors.New("decode provider response failed")
)
