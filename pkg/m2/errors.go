package m2

import "errors"

var (
	ErrBadMagic           = errors.New("bad M2 magic")
	ErrUnsupportedVersion = errors.New("unsupported M2 version")
	ErrTruncated          = errors.New("truncated M2 file")
	ErrOutOfBounds        = errors.New("M2 array out of bounds")
	ErrOutOfRange         = errors.New("M2 array index out of range")
)
