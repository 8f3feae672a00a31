package auction

import (
	"context"
	"net/http"
	"testing"

	"github.com/prebid/openrtb/v20/openrtb2"
	"github.com/prebid/openrtb/v20/openrtb3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"openrtb-fastly-compute/config"
	"openrtb-fastly-compute/errortypes"
	"openrtb-fastly-compute/requester"
	"openrtb-fastly-compute/util/jsonutil"
)

type mockRequester struct {
	version  string
	endpoint string
	opts     *requester.Options
	request  *openrtb2.BidRequest
	message  *requester.Message
	response *openrtb2.BidResponse
	reply    *requester.Message
	err      error
}

func (m *mockRequester) RequestV25(_ context.Context, endpoint string, bidRequest *openrtb2.BidRequest, opts *requester.Options) (*openrtb2.BidResponse, error) {
	m.version, m.endpoint, m.request, m.opts = requester.VersionV25, endpoint, bidRequest, opts
	return m.response, m.err
}

func (m *mockRequester) RequestV26(_ context.Context, endpoint string, bidRequest *openrtb2.BidRequest, opts *requester.Options) (*openrtb2.BidResponse, error) {
	m.version, m.endpoint, m.request, m.opts = requester.VersionV26, endpoint, bidRequest, opts
	return m.response, m.err
}

func (m *mockRequester) RequestV30(_ context.Context, endpoint string, message *requester.Message, opts *requester.Options) (*requester.Message, error) {
	m.version, m.endpoint, m.message, m.opts = requester.VersionV30, endpoint, message, opts
	return m.reply, m.err
}

func testExchange() config.Exchange {
	return config.Exchange{
		Endpoint: "https://exchange.example.com/openrtb2",
		Backend:  "exchange_backend",
		Version:  requester.VersionV26,
		Defaults: requester.Options{CustomHeaders: map[string]string{"x-auth": "123"}},
	}
}

func TestSelectVersion(t *testing.T) {
	testCases := []struct {
		description string
		header      string
		body        string
		expected    string
		expectErr   bool
	}{
		{"header", "2.5", `{"id":"1"}`, "2.5", false},
		{"header-beats-body", "2.6", `{"openrtb":{"ver":"3.0"}}`, "2.6", false},
		{"openrtb3-body", "", `{"openrtb":{"ver":"3.0","request":{"id":"1"}}}`, "3.0", false},
		{"openrtb-not-object", "", `{"openrtb":"3.0"}`, "2.6", false},
		{"fallback", "", `{"id":"1","imp":[]}`, "2.6", false},
		{"unsupported-header", "2.4", `{"id":"1"}`, "", true},
	}

	for _, test := range testCases {
		version, err := SelectVersion(test.header, []byte(test.body), requester.VersionV26)
		if test.expectErr {
			assert.Error(t, err, test.description)
			continue
		}
		require.NoError(t, err, test.description)
		assert.Equal(t, test.expected, version, test.description)
	}
}

func TestHandleForwardsV26(t *testing.T) {
	mock := &mockRequester{response: &openrtb2.BidResponse{ID: "req-1", Cur: "USD"}}
	sut := NewHandler(mock, testExchange())

	result := sut.Handle(context.Background(), requester.VersionV26, []byte(`{"id":"req-1","imp":[{"id":"1"}]}`), "rid-1")

	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, "application/json", result.ContentType)
	var decoded openrtb2.BidResponse
	require.NoError(t, jsonutil.Unmarshal(result.Body, &decoded))
	assert.Equal(t, openrtb2.BidResponse{ID: "req-1", Cur: "USD"}, decoded)

	assert.Equal(t, requester.VersionV26, mock.version)
	assert.Equal(t, "https://exchange.example.com/openrtb2", mock.endpoint)
	assert.Equal(t, "req-1", mock.request.ID)
	assert.Equal(t, map[string]string{"x-auth": "123", "x-request-id": "rid-1"}, mock.opts.CustomHeaders)
}

func TestHandleRequestIDDoesNotTouchDefaults(t *testing.T) {
	exchange := testExchange()
	sut := NewHandler(&mockRequester{response: &openrtb2.BidResponse{ID: "1"}}, exchange)

	sut.Handle(context.Background(), requester.VersionV25, []byte(`{"id":"1"}`), "rid-1")

	assert.Equal(t, map[string]string{"x-auth": "123"}, exchange.Defaults.CustomHeaders)
}

func TestHandleForwardsV25(t *testing.T) {
	mock := &mockRequester{response: &openrtb2.BidResponse{ID: "1"}}
	sut := NewHandler(mock, testExchange())

	result := sut.Handle(context.Background(), requester.VersionV25, []byte(`{"id":"1"}`), "")

	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, requester.VersionV25, mock.version)
	assert.NotContains(t, mock.opts.CustomHeaders, HeaderRequestID)
}

func TestHandleForwardsV30(t *testing.T) {
	reply := &requester.Message{OpenRTB: requester.OpenRTB{Ver: "3.0", Response: &openrtb3.Response{ID: "req-3"}}}
	mock := &mockRequester{reply: reply}
	sut := NewHandler(mock, testExchange())

	result := sut.Handle(context.Background(), requester.VersionV30, []byte(`{"openrtb":{"ver":"3.0","request":{"id":"req-3"}}}`), "rid")

	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, requester.VersionV30, mock.version)
	require.NotNil(t, mock.message.OpenRTB.Request)
	assert.Equal(t, "req-3", mock.message.OpenRTB.Request.ID)

	var decoded requester.Message
	require.NoError(t, jsonutil.Unmarshal(result.Body, &decoded))
	require.NotNil(t, decoded.OpenRTB.Response)
	assert.Equal(t, "req-3", decoded.OpenRTB.Response.ID)
}

func TestHandleMalformedBody(t *testing.T) {
	mock := &mockRequester{}
	sut := NewHandler(mock, testExchange())

	for _, version := range []string{requester.VersionV25, requester.VersionV26, requester.VersionV30} {
		result := sut.Handle(context.Background(), version, []byte(`{"id":`), "rid")

		assert.Equal(t, http.StatusBadRequest, result.StatusCode, version)
		assert.Empty(t, mock.version, version)
	}
}

func TestHandleUnsupportedVersion(t *testing.T) {
	result := NewHandler(&mockRequester{}, testExchange()).Handle(context.Background(), "1.0", []byte(`{}`), "rid")

	assert.Equal(t, http.StatusBadRequest, result.StatusCode)
}

func TestHandleFailures(t *testing.T) {
	testCases := []struct {
		description string
		err         error
		status      int
		body        string
		nbr         *openrtb3.NoBidReason
	}{
		{
			description: "no-bid",
			err:         errortypes.NewNoBidResponse(),
			status:      http.StatusNoContent,
		},
		{
			description: "invalid",
			err:         errortypes.NewInvalidBidRequest("{}"),
			status:      http.StatusBadRequest,
			body:        "Invalid bid request: required parameters are missing or malformed. {}",
		},
		{
			description: "unexpected",
			err:         errortypes.NewUnexpectedStatus(500),
			status:      http.StatusBadGateway,
			nbr:         openrtb3.NoBidTechnicalError.Ptr(),
		},
	}

	for _, test := range testCases {
		sut := NewHandler(&mockRequester{err: test.err}, testExchange())

		result := sut.Handle(context.Background(), requester.VersionV26, []byte(`{"id":"req-1"}`), "rid")

		assert.Equal(t, test.status, result.StatusCode, test.description)
		if test.nbr != nil {
			var decoded openrtb2.BidResponse
			require.NoError(t, jsonutil.Unmarshal(result.Body, &decoded), test.description)
			assert.Equal(t, "req-1", decoded.ID, test.description)
			assert.Equal(t, test.nbr, decoded.NBR, test.description)
			continue
		}
		assert.Equal(t, test.body, string(result.Body), test.description)
	}
}

func TestHandleV30Failure(t *testing.T) {
	sut := NewHandler(&mockRequester{err: errortypes.NewUnexpectedStatus(503)}, testExchange())

	result := sut.Handle(context.Background(), requester.VersionV30, []byte(`{"openrtb":{"ver":"3.0","request":{"id":"req-3"}}}`), "rid")

	assert.Equal(t, http.StatusBadGateway, result.StatusCode)
	assert.JSONEq(t, `{"openrtb":{"ver":"3.0","response":{"id":"req-3","nbr":1}}}`, string(result.Body))
}
