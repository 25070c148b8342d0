// Copyright (C) 2016-2025, KBase. All rights reserved.
// See the file LICENSE for licensing terms.

package taxonapi

import (
	"fmt"
	"strings"
)

// TransportError reports a network or IO failure, including timeouts.
type TransportError struct {
	Method string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Method == "" {
		return fmt.Sprintf("transport error: %v", e.Err)
	}
	return fmt.Sprintf("transport error calling %s: %v", e.Method, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// AuthError reports missing, invalid or expired credentials.
type AuthError struct {
	Method  string
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	var b strings.Builder
	b.WriteString("auth error")
	if e.Method != "" {
		b.WriteString(" calling ")
		b.WriteString(e.Method)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *AuthError) Unwrap() error { return e.Err }

// ProtocolError reports a reply that breaks the call contract: a result
// array of the wrong arity, a malformed envelope, or a JSON-RPC error object
// returned by the service.
type ProtocolError struct {
	Method string
	Reason string
	// Code and Data are copied from the server's error object, if any.
	Code int
	Data interface{}
	Err  error
}

func (e *ProtocolError) Error() string {
	msg := fmt.Sprintf("protocol error calling %s: %s", e.Method, e.Reason)
	if e.Code != 0 {
		msg = fmt.Sprintf("%s (code %d)", msg, e.Code)
	}
	if e.Data != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Data)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// SchemaViolation reports a JSON value whose type does not match the field
// it is decoded into.
type SchemaViolation struct {
	Record string
	Field  string
	Err    error
}

func (e *SchemaViolation) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("schema violation in %s: %v", e.Record, e.Err)
	}
	return fmt.Sprintf("schema violation in %s.%s: %v", e.Record, e.Field, e.Err)
}

func (e *SchemaViolation) Unwrap() error { return e.Err }
