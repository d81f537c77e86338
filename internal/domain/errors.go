package domain

import "errors"

// Domain errors.
var (
	ErrMissingKey     = errors.New("message key not found")
	ErrFormatMismatch = errors.New("message arguments do not match template")
	ErrLoadFailure    = errors.New("message bundle could not be loaded")
	ErrAlreadyLoaded  = errors.New("message bundle already loaded")
)
