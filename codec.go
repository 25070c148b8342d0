// Copyright (C) 2016-2025, KBase. All rights reserved.
// See the file LICENSE for licensing terms.

package taxonapi

import (
	"encoding/json"
	"io"
)

// Codec encodes/decodes RPC messages
type Codec interface {
	Encode(v interface{}) ([]byte, error)
	Decode(data []byte, v interface{}) error
}

// StreamCodec is a Codec that can also write straight to a stream.
type StreamCodec interface {
	Codec
	EncodeTo(w io.Writer, v interface{}) error
}

// JSONCodec is a JSON-based codec
type JSONCodec struct{}

func (JSONCodec) Encode(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (JSONCodec) Decode(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (JSONCodec) EncodeTo(w io.Writer, v interface{}) error {
	return json.NewEncoder(w).Encode(v)
}

// defaultCodec is used when no codec is specified
var defaultCodec Codec = JSONCodec{}
