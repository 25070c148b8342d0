// Copyright (C) 2016-2025, KBase. All rights reserved.
// See the file LICENSE for licensing terms.

package taxonapi

import (
	"encoding/json"
	"errors"
	"fmt"
)

// unwrapSingleton extracts the sole return value from a result array.
// Every TaxonAPI method returns exactly one value wrapped in a list.
func unwrapSingleton(method string, results []json.RawMessage) (json.RawMessage, error) {
	if len(results) != 1 {
		return nil, &ProtocolError{
			Method: method,
			Reason: fmt.Sprintf("expected exactly one result, got %d", len(results)),
		}
	}
	return results[0], nil
}

// decodeAs decodes a single result value. Type mismatches surface as
// *SchemaViolation, as does a null inside a list of values; a record's own violation is passed through unchanged.
func decodeAs[R any](record string) func(json.RawMessage) (R, error) {
	return func(raw json.RawMessage) (R, error) {
		var v R
		if isNull(raw) {
			return v, &SchemaViolation{Record: record, Err: errors.New("unexpected null result")}
		}
		if err := rejectNulls(raw, &v); err != nil {
			return v, &SchemaViolation{Record: record, Err: err}
		}
		if err := json.Unmarshal(raw, &v); err != nil {
			var sv *SchemaViolation
			if errors.As(err, &sv) {
				return v, sv
			}
			return v, &SchemaViolation{Record: record, Err: err}
		}
		return v, nil
	}
}
