package config

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrLoadConfig  = errors.New("load config failed")
	ErrInvalidDate = errors.New("invalid custom date window")
)

func wrapLoadError(err error) error {
	return fmt.Errorf("%w: %v", ErrLoadConfig, err)
}
