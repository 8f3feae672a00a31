package errortypes

import "github.com/prebid/openrtb/v20/openrtb3"

// NoBidReason translates the outcome of an exchange call into the OpenRTB no-bid reason
// reported downstream.
func NoBidReason(err error) openrtb3.NoBidReason {
	switch ReadCode(err) {
	case InvalidBidRequestErrorCode:
		return openrtb3.NoBidInvalidRequest
	case UnexpectedErrorCode:
		return openrtb3.NoBidTechnicalError
	default:
		return openrtb3.NoBidUnknownError
	}
}
