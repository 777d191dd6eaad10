package field

import "errors"

var (
	ErrMissingName      = errors.New("field: missing field name")
	ErrUnrecognizedName = errors.New("field: unrecognized field name")
	ErrMissingTestArgs  = errors.New("field: missing arguments to test")
	ErrMissingThen      = errors.New("field: missing then-clause")
	ErrBadRange         = errors.New("field: range must be in format [lo]..[hi]")
	ErrBadNumber        = errors.New("field: cannot parse number")
	ErrUnrecognizedFmt  = errors.New("field: unrecognized format specifier")
)
