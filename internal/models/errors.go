package models

import "errors"

// Input validation errors. These are rejected immediately at the API
// boundary and never silently clamped.
var (
	ErrInvalidLatitude  = errors.New("latitude must be between -90 and 90 degrees")
	ErrNonPositiveRange = errors.New("range value must be greater than zero")
	ErrUnknownUnit      = errors.New("unknown distance unit")
	ErrEmptyOrigin      = errors.New("origin geometry is empty")
	ErrInvalidDonut     = errors.New("inner radius must be less than outer radius")
)
