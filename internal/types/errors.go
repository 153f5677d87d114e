package types

import "errors"

// Boundary validation failures. Fetchers wrap them with the offending record.
var (
	ErrInvalidStage    = errors.New("invalid stage")
	ErrInvalidTreasury = errors.New("invalid treasury")
	ErrInvalidNetwork  = errors.New("invalid network")
	ErrInvalidEvent    = errors.New("invalid event")
	ErrInvalidAddress  = errors.New("invalid address")
)
