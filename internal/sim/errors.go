package sim

import "errors"

var (
	ErrUnknownVehicle      = errors.New("unknown vehicle")
	ErrUnknownIntersection = errors.New("unknown intersection")
	ErrInvariant           = errors.New("invariant violated")
)
