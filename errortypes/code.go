package errortypes

import "errors"

// Defines numeric codes for the failed outcomes of an exchange call.
const (
	UnknownErrorCode       = 999
	NoBidResponseErrorCode = iota
	InvalidBidRequestErrorCode
	UnexpectedErrorCode
)

// Coder provides an error code.
type Coder interface {
	Code() int
}

// ReadCode returns the error code of the first Coder in err's chain, or UnknownErrorCode if there is none.
func ReadCode(err error) int {
	var c Coder
	if errors.As(err, &c) {
		return c.Code()
	}
	return UnknownErrorCode
}
