// Package jsonutil encodes and decodes OpenRTB payload bodies.
//
// It uses sonic configured to behave like encoding/json: map keys are sorted,
// HTML is escaped and numbers decode to float64 unless UseNumber is requested.
package jsonutil

import (
	"github.com/bytedance/sonic"
)

var api = sonic.ConfigStd

// Marshal returns the JSON encoding of v.
func Marshal(v any) ([]byte, error) {
	return api.Marshal(v)
}

// Unmarshal parses the JSON-encoded data and stores the result in v.
func Unmarshal(data []byte, v any) error {
	return api.Unmarshal(data, v)
}
