package source

import "errors"

// Sentinel errors of the table reader.
var (
	ErrOpen       = errors.New("open input table")
	ErrDecode     = errors.New("decode input table")
	ErrMisaligned = errors.New("input tables have different event counts")
	ErrWrite      = errors.New("write input table")
)
