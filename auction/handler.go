// Package auction turns one inbound auction call into one exchange call and maps the
// outcome back to an HTTP answer.
package auction

import (
	"context"
	"fmt"
	"maps"
	"net/http"

	"github.com/buger/jsonparser"
	"github.com/golang/glog"
	"github.com/prebid/openrtb/v20/openrtb2"

	"openrtb-fastly-compute/config"
	"openrtb-fastly-compute/errortypes"
	"openrtb-fastly-compute/requester"
	"openrtb-fastly-compute/util/jsonutil"
)

// HeaderRequestID carries the id stamped on every forwarded call.
const HeaderRequestID = "x-request-id"

// Result is the answer written back to the caller.
type Result struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// SelectVersion picks the OpenRTB version of an inbound call. An explicit version header
// wins, then a body shaped like an OpenRTB 3.0 message, then fallback.
func SelectVersion(header string, body []byte, fallback string) (string, error) {
	if header != "" {
		if !config.IsSupportedVersion(header) {
			return "", fmt.Errorf("unsupported OpenRTB version %q", header)
		}
		return header, nil
	}
	if _, dataType, _, err := jsonparser.Get(body, "openrtb"); err == nil && dataType == jsonparser.Object {
		return requester.VersionV30, nil
	}
	return fallback, nil
}

// Handler forwards inbound bid requests to the configured exchange.
type Handler struct {
	requester requester.Requester
	exchange  config.Exchange
}

func NewHandler(r requester.Requester, exchange config.Exchange) *Handler {
	return &Handler{
		requester: r,
		exchange:  exchange,
	}
}

// Handle forwards body, an OpenRTB payload of the given version, and maps the outcome.
func (h *Handler) Handle(ctx context.Context, version string, body []byte, requestID string) Result {
	opts := &requester.Options{CustomHeaders: withRequestID(h.exchange.Defaults.CustomHeaders, requestID)}

	switch version {
	case requester.VersionV25, requester.VersionV26:
		var bidRequest openrtb2.BidRequest
		if err := jsonutil.Unmarshal(body, &bidRequest); err != nil {
			return badRequest(fmt.Sprintf("Failed to parse bid request: %v", err))
		}

		var resp *openrtb2.BidResponse
		var err error
		if version == requester.VersionV25 {
			resp, err = h.requester.RequestV25(ctx, h.exchange.Endpoint, &bidRequest, opts)
		} else {
			resp, err = h.requester.RequestV26(ctx, h.exchange.Endpoint, &bidRequest, opts)
		}
		if err != nil {
			return h.failure(requestID, err, func() any {
				return &openrtb2.BidResponse{ID: bidRequest.ID, NBR: errortypes.NoBidReason(err).Ptr()}
			})
		}
		return success(resp)

	case requester.VersionV30:
		var message requester.Message
		if err := jsonutil.Unmarshal(body, &message); err != nil {
			return badRequest(fmt.Sprintf("Failed to parse OpenRTB message: %v", err))
		}

		resp, err := h.requester.RequestV30(ctx, h.exchange.Endpoint, &message, opts)
		if err != nil {
			return h.failure(requestID, err, func() any {
				return noBidMessage(&message, err)
			})
		}
		return success(resp)

	default:
		return badRequest(fmt.Sprintf("unsupported OpenRTB version %q", version))
	}
}

func (h *Handler) failure(requestID string, err error, noBid func() any) Result {
	switch errortypes.ReadCode(err) {
	case errortypes.NoBidResponseErrorCode:
		glog.V(1).Infof("request %s: no bid", requestID)
		return Result{StatusCode: http.StatusNoContent}
	case errortypes.InvalidBidRequestErrorCode:
		glog.Warningf("request %s: exchange rejected bid request: %v", requestID, err)
		return badRequest(err.Error())
	default:
		glog.Errorf("request %s: exchange call to %s failed: %v", requestID, h.exchange.Endpoint, err)
		body, marshalErr := jsonutil.Marshal(noBid())
		if marshalErr != nil {
			return Result{StatusCode: http.StatusBadGateway}
		}
		return Result{StatusCode: http.StatusBadGateway, ContentType: "application/json", Body: body}
	}
}

func success(resp any) Result {
	body, err := jsonutil.Marshal(resp)
	if err != nil {
		return Result{StatusCode: http.StatusInternalServerError, ContentType: "text/plain", Body: []byte(err.Error())}
	}
	return Result{StatusCode: http.StatusOK, ContentType: "application/json", Body: body}
}

func badRequest(msg string) Result {
	return Result{StatusCode: http.StatusBadRequest, ContentType: "text/plain", Body: []byte(msg)}
}

// noBidMessage builds the OpenRTB 3.0 answer reporting a failed exchange call.
func noBidMessage(message *requester.Message, err error) map[string]any {
	response := map[string]any{"nbr": errortypes.NoBidReason(err)}
	if message.OpenRTB.Request != nil {
		response["id"] = message.OpenRTB.Request.ID
	}
	return map[string]any{
		"openrtb": map[string]any{
			"ver":      requester.VersionV30,
			"response": response,
		},
	}
}

func withRequestID(custom map[string]string, requestID string) map[string]string {
	headers := maps.Clone(custom)
	if headers == nil {
		headers = make(map[string]string, 1)
	}
	if requestID != "" {
		headers[HeaderRequestID] = requestID
	}
	return headers
}
