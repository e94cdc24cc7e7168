package skeleton

import "errors"

var (
	ErrMalformedHierarchy = errors.New("malformed bone hierarchy")
	ErrNotImplemented     = errors.New("bone mode not implemented")
)
