package requester

import (
	"encoding/json"

	"github.com/prebid/openrtb/v20/openrtb3"
)

// Message is the top-level OpenRTB 3.0 document: {"openrtb": {...}}.
type Message struct {
	OpenRTB OpenRTB `json:"openrtb"`
}

// OpenRTB is the OpenRTB 3.0 root object. A request message carries Request,
// the exchange's answer carries Response.
type OpenRTB struct {
	Ver        string             `json:"ver,omitempty"`
	DomainSpec string             `json:"domainspec,omitempty"`
	DomainVer  string             `json:"domainver,omitempty"`
	Request    *openrtb3.Request  `json:"request,omitempty"`
	Response   *openrtb3.Response `json:"response,omitempty"`
	Ext        json.RawMessage    `json:"ext,omitempty"`
}
