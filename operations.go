// Copyright (C) 2016-2025, KBase. All rights reserved.
// See the file LICENSE for licensing terms.

package taxonapi

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("taxonapi")

// operation binds a TaxonAPI method name to its argument encoder and
// result decoder.
type operation[A, R any] struct {
	name         string
	authRequired bool
	encode       func(A) []interface{}
	decode       func(json.RawMessage) (R, error)
}

func single[A any](a A) []interface{} { return []interface{}{a} }

func none(struct{}) []interface{} { return []interface{}{} }

func refOp[R any](name, record string) operation[ObjectReference, R] {
	return operation[ObjectReference, R]{
		name:         name,
		authRequired: true,
		encode:       single[ObjectReference],
		decode:       decodeAs[R](record),
	}
}

func paramsOp[A, R any](name, record string) operation[A, R] {
	return operation[A, R]{
		name:         name,
		authRequired: true,
		encode:       single[A],
		decode:       decodeAs[R](record),
	}
}

var (
	opGetParent                     = refOp[ObjectReference]("get_parent", "ObjectReference")
	opGetChildren                   = refOp[[]ObjectReference]("get_children", "list<ObjectReference>")
	opGetGenomeAnnotations          = refOp[[]ObjectReference]("get_genome_annotations", "list<ObjectReference>")
	opGetScientificLineage          = refOp[[]string]("get_scientific_lineage", "list<string>")
	opGetScientificName             = refOp[string]("get_scientific_name", "string")
	opGetTaxonomicID                = refOp[int64]("get_taxonomic_id", "int")
	opGetKingdom                    = refOp[string]("get_kingdom", "string")
	opGetDomain                     = refOp[string]("get_domain", "string")
	opGetGeneticCode                = refOp[int64]("get_genetic_code", "int")
	opGetAliases                    = refOp[[]string]("get_aliases", "list<string>")
	opGetInfo                       = refOp[ObjectInfo]("get_info", "ObjectInfo")
	opGetHistory                    = refOp[[]ObjectInfo]("get_history", "list<ObjectInfo>")
	opGetProvenance                 = refOp[[]ObjectProvenanceAction]("get_provenance", "list<ObjectProvenanceAction>")
	opGetID                         = refOp[int64]("get_id", "int")
	opGetName                       = refOp[string]("get_name", "string")
	opGetVersion                    = refOp[string]("get_version", "string")
	opGetAllData                    = paramsOp[GetAllDataParams, TaxonData]("get_all_data", "TaxonData")
	opGetDecoratedScientificLineage = paramsOp[GetDecoratedScientificLineageParams, DecoratedScientificLineage]("get_decorated_scientific_lineage", "DecoratedScientificLineage")
	opGetDecoratedChildren          = paramsOp[GetDecoratedChildrenParams, DecoratedChildren]("get_decorated_children", "DecoratedChildren")
	opStatus                        = operation[struct{}, map[string]interface{}]{
		name:   "status",
		encode: none,
		decode: decodeAs[map[string]interface{}]("status"),
	}
)

// invoke runs one operation: encode, call, unwrap, decode.
func invoke[A, R any](ctx context.Context, c *Client, op operation[A, R], arg A) (R, error) {
	var zero R
	method := ServiceName + "." + op.name
	start := time.Now()

	ctx, span := tracer.Start(ctx, method)
	defer span.End()
	span.SetAttributes(
		attribute.Bool("taxonapi.auth_required", op.authRequired),
		attribute.String("taxonapi.service_version", c.serviceVersion),
	)

	results, err := c.caller.Call(ctx, method, op.encode(arg), CallOptions{
		AuthRequired:   op.authRequired,
		ServiceVersion: c.serviceVersion,
	})
	if err != nil {
		c.log.Debug("call failed",
			zap.String("method", method),
			zap.Duration("took", time.Since(start)),
			zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "call failed")
		return zero, err
	}

	raw, err := unwrapSingleton(method, results)
	if err != nil {
		c.log.Warn("malformed result", zap.String("method", method), zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "malformed result")
		return zero, err
	}

	v, err := op.decode(raw)
	if err != nil {
		c.log.Warn("result does not match schema", zap.String("method", method), zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "schema violation")
		return zero, err
	}
	c.log.Debug("call succeeded", zap.String("method", method), zap.Duration("took", time.Since(start)))
	return v, nil
}

// GetParent returns the reference of the parent taxon. The root taxon's
// parent is the empty reference.
func (c *Client) GetParent(ctx context.Context, ref ObjectReference) (ObjectReference, error) {
	return invoke(ctx, c, opGetParent, ref)
}

// GetChildren returns references to the direct child taxa.
func (c *Client) GetChildren(ctx context.Context, ref ObjectReference) ([]ObjectReference, error) {
	return invoke(ctx, c, opGetChildren, ref)
}

// GetGenomeAnnotations returns the GenomeAnnotation objects that refer to
// this taxon. The list is empty for object types that carry no such link.
func (c *Client) GetGenomeAnnotations(ctx context.Context, ref ObjectReference) ([]ObjectReference, error) {
	return invoke(ctx, c, opGetGenomeAnnotations, ref)
}

// GetScientificLineage returns the lineage units ordered from domain down
// through kingdom, phylum and so on.
func (c *Client) GetScientificLineage(ctx context.Context, ref ObjectReference) ([]string, error) {
	return invoke(ctx, c, opGetScientificLineage, ref)
}

// GetScientificName returns e.g. "Escherichia coli K-12 substr. MG1655".
func (c *Client) GetScientificName(ctx context.Context, ref ObjectReference) (string, error) {
	return invoke(ctx, c, opGetScientificName, ref)
}

// GetTaxonomicID returns the NCBI taxonomy id. Legacy genome objects report
// their source id instead.
func (c *Client) GetTaxonomicID(ctx context.Context, ref ObjectReference) (int64, error) {
	return invoke(ctx, c, opGetTaxonomicID, ref)
}

func (c *Client) GetKingdom(ctx context.Context, ref ObjectReference) (string, error) {
	return invoke(ctx, c, opGetKingdom, ref)
}

func (c *Client) GetDomain(ctx context.Context, ref ObjectReference) (string, error) {
	return invoke(ctx, c, opGetDomain, ref)
}

func (c *Client) GetGeneticCode(ctx context.Context, ref ObjectReference) (int64, error) {
	return invoke(ctx, c, opGetGeneticCode, ref)
}

func (c *Client) GetAliases(ctx context.Context, ref ObjectReference) ([]string, error) {
	return invoke(ctx, c, opGetAliases, ref)
}

// GetInfo returns the workspace metadata of the taxon object.
func (c *Client) GetInfo(ctx context.Context, ref ObjectReference) (ObjectInfo, error) {
	return invoke(ctx, c, opGetInfo, ref)
}

// GetHistory returns the metadata of every saved version, oldest first.
func (c *Client) GetHistory(ctx context.Context, ref ObjectReference) ([]ObjectInfo, error) {
	return invoke(ctx, c, opGetHistory, ref)
}

func (c *Client) GetProvenance(ctx context.Context, ref ObjectReference) ([]ObjectProvenanceAction, error) {
	return invoke(ctx, c, opGetProvenance, ref)
}

// GetID returns the numeric object id within its workspace.
func (c *Client) GetID(ctx context.Context, ref ObjectReference) (int64, error) {
	return invoke(ctx, c, opGetID, ref)
}

func (c *Client) GetName(ctx context.Context, ref ObjectReference) (string, error) {
	return invoke(ctx, c, opGetName, ref)
}

func (c *Client) GetVersion(ctx context.Context, ref ObjectReference) (string, error) {
	return invoke(ctx, c, opGetVersion, ref)
}

// GetAllData fetches everything about one taxon in a single round trip.
func (c *Client) GetAllData(ctx context.Context, params GetAllDataParams) (TaxonData, error) {
	return invoke(ctx, c, opGetAllData, params)
}

// GetDecoratedScientificLineage returns the named ancestors, root first.
func (c *Client) GetDecoratedScientificLineage(ctx context.Context, params GetDecoratedScientificLineageParams) (DecoratedScientificLineage, error) {
	return invoke(ctx, c, opGetDecoratedScientificLineage, params)
}

// GetDecoratedChildren returns the named direct children.
func (c *Client) GetDecoratedChildren(ctx context.Context, params GetDecoratedChildrenParams) (DecoratedChildren, error) {
	return invoke(ctx, c, opGetDecoratedChildren, params)
}

// Status reports the service state. It needs no credentials.
func (c *Client) Status(ctx context.Context) (map[string]interface{}, error) {
	return invoke(ctx, c, opStatus, struct{}{})
}
