// Copyright (C) 2016-2025, KBase. All rights reserved.
// See the file LICENSE for licensing terms.

package taxonapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// fakeTaxon is one node of the in-memory taxonomy tree.
type fakeTaxon struct {
	name   string
	parent ObjectReference
	taxID  int64
}

// fakeTaxonomy is root -> Bacteria -> Proteobacteria -> {Escherichia coli, Salmonella enterica}.
var fakeTaxonomy = map[ObjectReference]fakeTaxon{
	"1/1/1": {name: "root", taxID: 1},
	"1/2/1": {name: "Bacteria", parent: "1/1/1", taxID: 2},
	"1/3/1": {name: "Proteobacteria", parent: "1/2/1", taxID: 1224},
	"1/4/1": {name: "Escherichia coli", parent: "1/3/1", taxID: 562},
	"1/5/1": {name: "Salmonella enterica", parent: "1/3/1", taxID: 28901},
}

func fakeChildren(ref ObjectReference) []ObjectReference {
	children := []ObjectReference{}
	for _, candidate := range []ObjectReference{"1/1/1", "1/2/1", "1/3/1", "1/4/1", "1/5/1"} {
		if fakeTaxonomy[candidate].parent == ref && candidate != ref {
			children = append(children, candidate)
		}
	}
	return children
}

// fakeAncestors walks from ref's parent up to the root.
func fakeAncestors(ref ObjectReference) []TaxonInfo {
	var out []TaxonInfo
	for p := fakeTaxonomy[ref].parent; p != ""; p = fakeTaxonomy[p].parent {
		out = append(out, TaxonInfo{Ref: p, ScientificName: String(fakeTaxonomy[p].name)})
	}
	return out
}

type fakeRequest struct {
	Version string            `json:"version"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
	ID      string            `json:"id"`
	Context *struct {
		ServiceVersion string `json:"service_ver"`
	} `json:"context"`
}

type seenRequest struct {
	body          fakeRequest
	authorization string
	header        http.Header
	query         string
	contentLength int64
}

// fakeTaxonAPI serves the TaxonAPI methods the tests use over JSON-RPC 1.1.
type fakeTaxonAPI struct {
	token string

	mu   sync.Mutex
	seen []seenRequest
}

func newFakeTaxonAPI(t *testing.T, token string) (*fakeTaxonAPI, *httptest.Server) {
	t.Helper()
	f := &fakeTaxonAPI{token: token}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeTaxonAPI) requests() []seenRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]seenRequest(nil), f.seen...)
}

func (f *fakeTaxonAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req fakeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	f.seen = append(f.seen, seenRequest{
		body:          req,
		authorization: r.Header.Get("Authorization"),
		header:        r.Header.Clone(),
		query:         r.URL.RawQuery,
		contentLength: r.ContentLength,
	})
	f.mu.Unlock()

	method := strings.TrimPrefix(req.Method, "TaxonAPI.")
	if method != "status" && r.Header.Get("Authorization") != f.token {
		writeRPCError(w, req.ID, -32400, "Token validation failed: Invalid token")
		return
	}
	if method == "status" {
		writeRPCResult(w, req.ID, map[string]string{"state": "OK"})
		return
	}
	if len(req.Params) != 1 {
		writeRPCError(w, req.ID, -32602, "Wrong number of arguments")
		return
	}

	var ref ObjectReference
	if err := json.Unmarshal(req.Params[0], &ref); err != nil {
		var p struct {
			Ref ObjectReference `json:"ref"`
		}
		_ = json.Unmarshal(req.Params[0], &p)
		ref = p.Ref
	}
	taxon, ok := fakeTaxonomy[ref]
	if !ok {
		writeRPCError(w, req.ID, -32500, "No object with reference "+string(ref))
		return
	}

	switch method {
	case "get_parent":
		writeRPCResult(w, req.ID, taxon.parent)
	case "get_children":
		writeRPCResult(w, req.ID, fakeChildren(ref))
	case "get_scientific_name":
		writeRPCResult(w, req.ID, taxon.name)
	case "get_taxonomic_id":
		writeRPCResult(w, req.ID, taxon.taxID)
	case "get_scientific_lineage":
		names := []string{}
		ancestors := fakeAncestors(ref)
		for i := len(ancestors) - 1; i >= 0; i-- {
			names = append(names, *ancestors[i].ScientificName)
		}
		writeRPCResult(w, req.ID, names)
	case "get_decorated_scientific_lineage":
		writeRPCResult(w, req.ID, DecoratedLineage{Lineage: fakeAncestors(ref)}.ScientificLineage())
	case "get_decorated_children":
		var infos []TaxonInfo
		for _, c := range fakeChildren(ref) {
			infos = append(infos, TaxonInfo{Ref: c, ScientificName: String(fakeTaxonomy[c].name)})
		}
		writeRPCResult(w, req.ID, DecoratedChildren{DecoratedChildren: infos})
	default:
		writeRPCError(w, req.ID, -32601, "Method not found")
	}
}

func writeRPCResult(w http.ResponseWriter, id string, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"version": "1.1",
		"id":      id,
		"result":  []interface{}{v},
	})
}

func writeRPCError(w http.ResponseWriter, id string, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"version": "1.1",
		"id":      id,
		"error": map[string]interface{}{
			"name":    "JSONRPCError",
			"code":    code,
			"message": message,
			"error":   "Traceback (most recent call last): ...",
		},
	})
}
