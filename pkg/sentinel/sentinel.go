package sentinel

import "errors"

// Sentinel dependency errors. Stores return these (optionally wrapped) so
// services can translate them into coded errors exactly once.
var (
	ErrNotFound    = errors.New("not found")
	ErrAlreadyUsed = errors.New("already used")
)
