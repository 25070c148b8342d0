// Copyright (C) 2016-2025, KBase. All rights reserved.
// See the file LICENSE for licensing terms.

package taxonapi

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Transport types
const (
	TransportJSON = "json" // JSON-RPC 1.1 over HTTP, default
	TransportGRPC = "grpc" // same envelope over gRPC, requires build tag
)

// DefaultTransport is the default transport type (JSON)
const DefaultTransport = TransportJSON

// dialFunc builds a Caller from a validated config whose token, if any, is
// already resolved.
type dialFunc func(ctx context.Context, cfg Config, log *zap.Logger) (Caller, error)

var (
	transportsMu sync.RWMutex
	transports   = map[string]dialFunc{
		TransportJSON: dialJSON,
	}
)

// registerTransport registers a new transport (used by build tags)
func registerTransport(name string, dial dialFunc) {
	transportsMu.Lock()
	defer transportsMu.Unlock()
	transports[name] = dial
}

func lookupTransport(name string) (dialFunc, bool) {
	transportsMu.RLock()
	defer transportsMu.RUnlock()
	dial, ok := transports[name]
	return dial, ok
}

// AvailableTransports returns the sorted list of available transport types
func AvailableTransports() []string {
	transportsMu.RLock()
	defer transportsMu.RUnlock()
	result := make([]string, 0, len(transports))
	for name := range transports {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// HasTransport checks if a transport is available
func HasTransport(name string) bool {
	_, ok := lookupTransport(name)
	return ok
}
