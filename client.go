// Copyright (C) 2016-2025, KBase. All rights reserved.
// See the file LICENSE for licensing terms.

package taxonapi

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/kbase/taxon-api/internal/logging"
)

// ServiceName prefixes every method sent on the wire.
const ServiceName = "TaxonAPI"

//go:generate go run github.com/golang/mock/mockgen -destination mocks/caller_mock.go -package mocks github.com/kbase/taxon-api Caller

// Caller is the transport collaborator that carries one JSON-RPC call.
// Implementations must be safe for concurrent use.
type Caller interface {
	// Call sends method with the positional params and returns the raw
	// result array exactly as the server sent it.
	Call(ctx context.Context, method string, params []interface{}, opts CallOptions) ([]json.RawMessage, error)

	// Close releases the transport's resources
	Close() error
}

// CallOptions are the per-call flags passed to a Caller.
type CallOptions struct {
	// AuthRequired asks the caller to attach credentials.
	AuthRequired bool
	// ServiceVersion pins the call to a service version; empty means the
	// server default.
	ServiceVersion string
}

// Client is a typed TaxonAPI client. It holds only immutable configuration
// and can be shared between goroutines.
type Client struct {
	caller         Caller
	serviceVersion string
	log            *logging.Logger
}

// ClientOption configures a Client
type ClientOption func(*clientOptions)

type clientOptions struct {
	serviceVersion string
	logger         *zap.Logger
}

// WithServiceVersion pins every call to the given service version
func WithServiceVersion(v string) ClientOption {
	return func(o *clientOptions) { o.serviceVersion = v }
}

// WithLogger sets the logger used for per-call debug output
func WithLogger(l *zap.Logger) ClientOption {
	return func(o *clientOptions) { o.logger = l }
}

// New wraps caller in a typed client.
func New(caller Caller, opts ...ClientOption) *Client {
	o := &clientOptions{}
	for _, opt := range opts {
		opt(o)
	}
	log := logging.NewNop()
	if o.logger != nil {
		log = logging.Wrap(o.logger)
	}
	return &Client{
		caller:         caller,
		serviceVersion: o.serviceVersion,
		log:            log.Named("taxonapi"),
	}
}

// ServiceVersion returns the pinned service version, or "" for the server default.
func (c *Client) ServiceVersion() string {
	return c.serviceVersion
}

// WithServiceVersion returns a copy of c pinned to v. The copy shares the
// underlying caller.
func (c *Client) WithServiceVersion(v string) *Client {
	cp := *c
	cp.serviceVersion = v
	return &cp
}

// Caller returns the transport the client sends calls through.
func (c *Client) Caller() Caller {
	return c.caller
}

// Close closes the underlying caller.
func (c *Client) Close() error {
	return c.caller.Close()
}
