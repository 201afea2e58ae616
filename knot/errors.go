package knot

import "errors"

// Errors
var (
	ErrIncompatibleClass  = errors.New("knots are not of the same parity class")
	ErrMalformedCatalogue = errors.New("malformed knot catalogue")
	ErrLengthMismatch     = errors.New("angle vectors differ in length")
	ErrBadAngleKey        = errors.New("bad angle key encoding")
	ErrBadRadius          = errors.New("bad exploration radius")
	ErrNodeLimit          = errors.New("exploration node limit reached")
	ErrBadExpr            = errors.New("bad knot expression")
)
