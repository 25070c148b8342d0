// Copyright (C) 2016-2025, KBase. All rights reserved.
// See the file LICENSE for licensing terms.

// Package taxonapi is a typed client for the KBase TaxonAPI service, which
// answers questions about Taxon objects stored in a KBase workspace: their
// place in the taxonomy tree, names, codes, aliases and object metadata.
//
// # Transport Selection
//
// JSON-RPC 1.1 over HTTP is the default transport. Use build tags to enable
// alternative transports:
//
//	go build              # JSON-RPC over HTTP only (default)
//	go build -tags grpc   # Enable gRPC transport
//
// # Usage
//
//	cfg, err := taxonapi.LoadConfig("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client, err := taxonapi.Dial(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	parent, err := client.GetParent(ctx, "ws/12/3/1")
//
//	data, err := client.GetAllData(ctx, taxonapi.GetAllDataParams{
//	    Ref:                               "ws/12/3/1",
//	    IncludeDecoratedScientificLineage: taxonapi.Flag(true),
//	})
//
// A Client can also wrap any Caller directly, which is how tests inject a
// fake transport:
//
//	client := taxonapi.New(caller, taxonapi.WithServiceVersion("dev"))
//
// # Errors
//
// Every failure is one of *TransportError, *AuthError, *ProtocolError or
// *SchemaViolation; use errors.As to tell them apart. Calls are never
// retried unless max_retries is set, and then only for transient network
// errors.
//
// # Architecture
//
// The package separates concerns:
//
//   - client.go, operations.go: Client and the TaxonAPI operations
//   - records.go, workspace.go, extra.go: wire records with extension fields
//   - codec.go: Codec interface for message encoding
//   - transport.go: Transport registry for build-tag extensibility
//   - dial.go, config.go, auth.go: Dial from a viper-loaded Config
//   - json.go: HTTP JSON-RPC transport (default)
//   - dial_grpc.go: gRPC transport (requires -tags grpc)
package taxonapi
