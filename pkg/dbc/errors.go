package dbc

import "errors"

var (
	ErrBadMagic             = errors.New("bad table magic")
	ErrTruncated            = errors.New("truncated table")
	ErrUnsupportedFieldType = errors.New("unsupported field type")
	ErrLayoutMismatch       = errors.New("record layout mismatch")
	ErrCorrupt              = errors.New("corrupt table")
	ErrNotFound             = errors.New("record not found")
	ErrFieldType            = errors.New("field type mismatch")
)
