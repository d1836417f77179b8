package tracking

import "errors"

var (
	ErrSyncDisabled = errors.New("bulk sync is not configured")
	ErrEmptyID      = errors.New("package id is required")
)
