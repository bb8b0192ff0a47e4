package protocol

import "errors"

var (
	ErrInvalidDate    = errors.New("protocol: invalid calendar date")
	ErrInvalidTime    = errors.New("protocol: invalid time of day")
	ErrAmbiguousTime  = errors.New("protocol: ambiguous local time")
	ErrImpossibleTime = errors.New("protocol: impossible local time")
)
