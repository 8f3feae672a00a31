package errortypes

import "fmt"

const (
	noBidMessage      = "No bid response received from the auction."
	badRequestMessage = "Invalid bid request: required parameters are missing or malformed."
)

// NoBidResponse should be used when the exchange answered the call but declined to bid (HTTP 204).
//
// A no-bid is a normal auction outcome, not a fault of either side.
type NoBidResponse struct {
	Message string
}

// NewNoBidResponse returns a NoBidResponse carrying the standard message.
func NewNoBidResponse() *NoBidResponse {
	return &NoBidResponse{Message: noBidMessage}
}

func (err *NoBidResponse) Error() string {
	return err.Message
}

func (err *NoBidResponse) Code() int {
	return NoBidResponseErrorCode
}

// InvalidBidRequest should be used when the exchange rejected the bid request as malformed (HTTP 400).
//
// The message starts with a fixed prefix; any body text sent back by the exchange follows it.
type InvalidBidRequest struct {
	Message string
}

// NewInvalidBidRequest builds an InvalidBidRequest from the body of the exchange's 400 response.
func NewInvalidBidRequest(body string) *InvalidBidRequest {
	if body == "" {
		return &InvalidBidRequest{Message: badRequestMessage}
	}
	return &InvalidBidRequest{Message: badRequestMessage + " " + body}
}

func (err *InvalidBidRequest) Error() string {
	return err.Message
}

func (err *InvalidBidRequest) Code() int {
	return InvalidBidRequestErrorCode
}

// Unexpected covers everything that is neither a bid, a no-bid nor a rejected request:
//
//   - The exchange responded with a status other than 200, 204 or 400.
//   - The request could not be serialized or sent.
//   - The response body could not be read or decoded.
//
// StatusCode is zero when no response status was involved.
type Unexpected struct {
	Message    string
	StatusCode int
	Err        error
}

// NewUnexpectedStatus builds an Unexpected error for a response status outside the known set.
func NewUnexpectedStatus(statusCode int) *Unexpected {
	return &Unexpected{
		Message:    fmt.Sprintf("Unexpected HTTP response: received status code %d", statusCode),
		StatusCode: statusCode,
	}
}

// NewUnexpectedError wraps a fault raised while performing the exchange.
func NewUnexpectedError(context string, err error) *Unexpected {
	return &Unexpected{
		Message: fmt.Sprintf("Unexpected error: %s: %v", context, err),
		Err:     err,
	}
}

func (err *Unexpected) Error() string {
	return err.Message
}

func (err *Unexpected) Unwrap() error {
	return err.Err
}

func (err *Unexpected) Code() int {
	return UnexpectedErrorCode
}
